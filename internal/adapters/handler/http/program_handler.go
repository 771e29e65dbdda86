package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulsecoach/adjustment-engine/internal/adapters/handler/http/middleware"
	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/engine"
	"github.com/pulsecoach/adjustment-engine/internal/core/services"
)

type ProgramHandler struct {
	svc *services.ProgramService
}

func NewProgramHandler(svc *services.ProgramService) *ProgramHandler {
	return &ProgramHandler{
		svc: svc,
	}
}

type createProgramRequest struct {
	Title string `json:"title" binding:"required"`

	GoalType            string     `json:"goal_type" binding:"required"`
	TargetRateKgPerWeek float64    `json:"target_rate_kg_per_week"`
	TargetDate          *time.Time `json:"target_date"`

	Age           int     `json:"age"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	Sex           string  `json:"sex"`
	ActivityLevel string  `json:"activity_level"`

	KcalTarget int `json:"kcal_target"`
	StepTarget int `json:"step_target"`
}

func (h *ProgramHandler) RegisterRoutes(router *gin.RouterGroup) {
	programs := router.Group("/programs")
	{
		programs.POST("", h.Create)
		programs.GET("", h.List)
		programs.GET("/:id", h.Get)
		programs.POST("/:id/complete", h.Complete)
		programs.DELETE("/:id", h.Delete)
	}
}

func (h *ProgramHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateProgramInput{
		UserID: userID,
		Title:  req.Title,
		Goal: domain.Goal{
			Type:                req.GoalType,
			TargetRateKgPerWeek: req.TargetRateKgPerWeek,
			TargetDate:          req.TargetDate,
		},
		Age:           req.Age,
		WeightKg:      req.WeightKg,
		HeightCm:      req.HeightCm,
		Sex:           req.Sex,
		ActivityLevel: req.ActivityLevel,
		KcalTarget:    req.KcalTarget,
		StepTarget:    req.StepTarget,
	}

	program, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidGoalType) || errors.Is(err, domain.ErrInvalidTargetRate) ||
			errors.Is(err, domain.ErrProgramTitleEmpty) || errors.Is(err, domain.ErrProgramTitleTooLong) ||
			errors.Is(err, domain.ErrInvalidKcalTarget) || errors.Is(err, domain.ErrInvalidStepTarget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, engine.ErrIncompleteProfile) || errors.Is(err, engine.ErrInvalidSex) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "cannot derive calorie baseline: provide a complete health profile or an explicit kcal_target",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, program)
}

func (h *ProgramHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *ProgramHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	program, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, program)
}

func (h *ProgramHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	program, err := h.svc.Complete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, program)
}

func (h *ProgramHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
