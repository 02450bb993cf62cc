package enrich

import (
	"errors"

	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the enrichment endpoints. Everything here requires a
// logged-in user; enrichment only ever runs against the caller's own editor.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	enrich := rg.Group("/enrich", authMW)
	{
		enrich.POST("/suggestions", h.suggestions)
		enrich.POST("/skills", h.skills)
		enrich.POST("/projects", h.projects)
		enrich.POST("/screenshot", h.screenshot)

		enrich.POST("/session", h.createSession)
		enrich.POST("/session/:id/event", h.sessionEvent)
		enrich.GET("/session/:id/results", h.sessionResults)
		enrich.DELETE("/session/:id", h.deleteSession)
	}
}

func (h *Handler) suggestions(c *gin.Context) {
	var req SuggestionsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "field_name is required")
		return
	}

	budget := h.service.BudgetFor(req.Session)
	got := h.service.Suggestions(c.Request.Context(), budget, req.FieldName, req.FieldType, req.Text)
	response.OK(c, gin.H{"suggestions": got})
}

func (h *Handler) skills(c *gin.Context) {
	var req SkillsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	budget := h.service.BudgetFor(req.Session)
	got := h.service.Skills(c.Request.Context(), budget, req.Text)
	response.OK(c, gin.H{"skills": got})
}

func (h *Handler) projects(c *gin.Context) {
	var req ProjectsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	budget := h.service.BudgetFor(req.Session)
	got := h.service.Projects(c.Request.Context(), budget, req.GitHubURL, req.WebsiteURL)
	response.OK(c, gin.H{"projects": got})
}

func (h *Handler) screenshot(c *gin.Context) {
	var req ScreenshotDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "url is required")
		return
	}

	budget := h.service.BudgetFor(req.Session)
	result, err := h.service.Screenshot(c.Request.Context(), budget, req.URL)
	if err != nil {
		if errors.Is(err, errInvalidWebsiteURL) {
			response.BadRequest(c, "url must be an absolute http or https address")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) createSession(c *gin.Context) {
	s := h.service.Sessions().Create()
	response.Created(c, gin.H{
		"session_id": s.ID,
		"remaining":  s.Budget().Remaining(),
	})
}

func (h *Handler) sessionEvent(c *gin.Context) {
	s := h.service.Sessions().Get(c.Param("id"))
	if s == nil {
		response.NotFoundMsg(c, "enrichment session not found")
		return
	}

	var event EventDTO
	if err := c.ShouldBindJSON(&event); err != nil {
		response.BadRequest(c, "kind is required")
		return
	}

	s.HandleEvent(event)
	response.OK(c, gin.H{
		"accepted":  true,
		"remaining": s.Budget().Remaining(),
	})
}

func (h *Handler) sessionResults(c *gin.Context) {
	s := h.service.Sessions().Get(c.Param("id"))
	if s == nil {
		response.NotFoundMsg(c, "enrichment session not found")
		return
	}

	response.OK(c, gin.H{
		"results":   s.Results(),
		"remaining": s.Budget().Remaining(),
	})
}

func (h *Handler) deleteSession(c *gin.Context) {
	h.service.Sessions().Delete(c.Param("id"))
	response.NoContent(c)
}
