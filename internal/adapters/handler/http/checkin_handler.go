package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsecoach/adjustment-engine/internal/adapters/handler/http/middleware"
	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/services"
)

type CheckInHandler struct {
	svc *services.CheckInService
}

func NewCheckInHandler(svc *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{
		svc: svc,
	}
}

type submitCheckInRequest struct {
	ProgramID string `json:"program_id" binding:"required"`
	Week      int    `json:"week" binding:"required,min=1"`

	WeightKg   float64  `json:"weight_kg" binding:"required"`
	BodyFatPct *float64 `json:"body_fat_pct"`
	Sleep      int      `json:"sleep" binding:"required,min=1,max=10"`
	Stress     int      `json:"stress" binding:"required,min=1,max=10"`
	Energy     int      `json:"energy" binding:"required,min=1,max=10"`
	Notes      string   `json:"notes"`

	DailyWeightsKg     []float64 `json:"daily_weights_kg"`
	WorkoutAdherence   float64   `json:"workout_adherence"`
	NutritionAdherence float64   `json:"nutrition_adherence"`
	DailySteps         []int     `json:"daily_steps"`
	SessionRPEs        []float64 `json:"session_rpes"`
	VolumeIndex        float64   `json:"volume_index"`
}

func (h *CheckInHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkIns := router.Group("/checkins")
	{
		checkIns.POST("", h.Submit)
		checkIns.GET("", h.ListByProgram)
		checkIns.GET("/:id", h.Get)
	}
}

func (h *CheckInHandler) Submit(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req submitCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	input := services.SubmitCheckInInput{
		ProgramID:          req.ProgramID,
		UserID:             userID,
		Week:               req.Week,
		WeightKg:           req.WeightKg,
		BodyFatPct:         req.BodyFatPct,
		Sleep:              req.Sleep,
		Stress:             req.Stress,
		Energy:             req.Energy,
		Notes:              req.Notes,
		DailyWeightsKg:     req.DailyWeightsKg,
		WorkoutAdherence:   req.WorkoutAdherence,
		NutritionAdherence: req.NutritionAdherence,
		DailySteps:         req.DailySteps,
		SessionRPEs:        req.SessionRPEs,
		VolumeIndex:        req.VolumeIndex,
	}

	checkIn, decision, err := h.svc.Submit(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"check_in": checkIn,
		"decision": decision,
	})
}

func (h *CheckInHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	checkIn, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkIn)
}

func (h *CheckInHandler) ListByProgram(c *gin.Context) {
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

	fromWeek := 1
	toWeek := 1 << 30

	if f := c.Query("from"); f != "" {
		parsed, err := strconv.Atoi(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from week, expected an integer"})
			return
		}
		fromWeek = parsed
	}
	if t := c.Query("to"); t != "" {
		parsed, err := strconv.Atoi(t)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to week, expected an integer"})
			return
		}
		toWeek = parsed
	}

	list, err := h.svc.ListByProgramID(c.Request.Context(), programID, userID, fromWeek, toWeek)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrProgramNotFound) ||
		errors.Is(err, domain.ErrCheckInNotFound) ||
		errors.Is(err, domain.ErrDecisionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrCheckInWeekExists):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "week already reviewed",
			"message": "a check-in for this week was already submitted",
		})

	case errors.Is(err, domain.ErrProgramCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "program is completed"})

	case errors.Is(err, domain.ErrCheckInInvalidWeek) ||
		errors.Is(err, domain.ErrCheckInInvalidWeight) ||
		errors.Is(err, domain.ErrCheckInMissingProgram):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
