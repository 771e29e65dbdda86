package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsecoach/adjustment-engine/internal/adapters/handler/http/middleware"
	"github.com/pulsecoach/adjustment-engine/internal/core/services"
)

const defaultDecisionLimit = 12

type DecisionHandler struct {
	svc *services.DecisionService
}

func NewDecisionHandler(svc *services.DecisionService) *DecisionHandler {
	return &DecisionHandler{svc: svc}
}

func (h *DecisionHandler) RegisterRoutes(r *gin.RouterGroup) {
	decisions := r.Group("/decisions")
	{
		decisions.GET("", h.ListByProgram)
		decisions.GET("/latest", h.Latest)
	}
}

func (h *DecisionHandler) ListByProgram(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	programID := c.Query("program_id")
	if programID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "program_id is required"})
		return
	}

	limit := defaultDecisionLimit
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
			return
		}
		limit = parsed
	}

	list, err := h.svc.ListByProgramID(c.Request.Context(), programID, userID, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *DecisionHandler) Latest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	programID := c.Query("program_id")
	if programID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "program_id is required"})
		return
	}

	decision, err := h.svc.Latest(c.Request.Context(), programID, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}
