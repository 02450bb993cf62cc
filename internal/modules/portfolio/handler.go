package portfolio

import (
	"errors"
	"net/http"

	"github.com/folio-space/core/internal/middleware"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	portfolios := rg.Group("/portfolios")
	{
		portfolios.GET("", h.browse)
		portfolios.GET("/search", h.search)
		portfolios.GET("/:id", optionalAuthMW, h.get)
		portfolios.GET("/:id/about.html", optionalAuthMW, h.aboutHTML)

		portfolios.PUT("/mine", authMW, h.upsert)
		portfolios.GET("/mine", authMW, h.mine)
		portfolios.PATCH("/mine/publish", authMW, h.publish)
		portfolios.DELETE("/mine", authMW, h.remove)
	}
}

func (h *Handler) browse(c *gin.Context) {
	q := pagination.FromContext(c)
	portfolios, meta, err := h.service.Browse(q, c.Query("search"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, portfolios, meta)
}

func (h *Handler) search(c *gin.Context) {
	q := pagination.FromContext(c)
	portfolios, meta, err := h.service.Browse(q, c.Query("q"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, portfolios, meta)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.service.Get(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) aboutHTML(c *gin.Context) {
	html, err := h.service.RenderAbout(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) upsert(c *gin.Context) {
	var dto UpsertDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "title is required")
		return
	}

	p, err := h.service.Upsert(middleware.CurrentUserID(c), dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) mine(c *gin.Context) {
	p, err := h.service.Mine(middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) publish(c *gin.Context) {
	var dto PublishDTO
	if err := c.ShouldBindJSON(&dto); err != nil || dto.Published == nil {
		response.BadRequest(c, "published is required")
		return
	}

	p, err := h.service.SetPublished(middleware.CurrentUserID(c), *dto.Published)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.service.Delete(middleware.CurrentUserID(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		response.NotFoundMsg(c, "portfolio not found")
		return
	}
	response.InternalError(c, err)
}
