package collab

import (
	"errors"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/portfolios/:id/collab", authMW, h.request)

	collab := rg.Group("/collab", authMW)
	{
		collab.GET("/incoming", h.incoming)
		collab.GET("/sent", h.sent)
		collab.PATCH("/:id", h.resolve)
	}
}

func (h *Handler) request(c *gin.Context) {
	var dto RequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "message too long")
		return
	}

	req, err := h.service.Request(middleware.CurrentUserID(c), c.Param("id"), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFoundMsg(c, "portfolio not found")
		case errors.Is(err, ErrSelfRequest):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, ErrDuplicateOpen):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, req)
}

func (h *Handler) incoming(c *gin.Context) {
	requests, meta, err := h.service.Incoming(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, requests, meta)
}

func (h *Handler) sent(c *gin.Context) {
	requests, meta, err := h.service.Sent(middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, requests, meta)
}

func (h *Handler) resolve(c *gin.Context) {
	var dto ResolveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "status must be accepted or declined")
		return
	}

	req, err := h.service.Resolve(middleware.CurrentUserID(c), c.Param("id"), models.CollabStatus(dto.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFoundMsg(c, "collab request not found")
		case errors.Is(err, ErrAlreadyResolved):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, req)
}
