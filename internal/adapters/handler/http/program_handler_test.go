package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/pulsecoach/adjustment-engine/internal/adapters/handler/http"
	"github.com/pulsecoach/adjustment-engine/internal/adapters/handler/http/middleware"
	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/services"
)

// headerAuth stands in for the JWT middleware: it lifts the user id from the
// X-User-ID header into the gin context the way AuthMiddleware does after
// token validation.
func headerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-User-ID")
		if id == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Set(middleware.ContextUserIDKey, id)
		c.Next()
	}
}

type MockProgramRepo struct {
	store map[string]*domain.Program
}

func NewMockProgramRepo() *MockProgramRepo {
	return &MockProgramRepo{store: make(map[string]*domain.Program)}
}

func (m *MockProgramRepo) Create(ctx context.Context, p *domain.Program) error {
	m.store[p.ID] = p
	return nil
}

func (m *MockProgramRepo) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrProgramNotFound
	}
	return p, nil
}

func (m *MockProgramRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Program, error) {
	var list []*domain.Program
	for _, p := range m.store {
		if p.UserID == userID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (m *MockProgramRepo) Update(ctx context.Context, p *domain.Program) error {
	if _, ok := m.store[p.ID]; !ok {
		return domain.ErrProgramNotFound
	}
	m.store[p.ID] = p
	return nil
}

func (m *MockProgramRepo) UpdateReviewStats(ctx context.Context, programID string, stats domain.ReviewStats) error {
	p, ok := m.store[programID]
	if !ok {
		return domain.ErrProgramNotFound
	}
	p.WeeksOnTrack = stats.WeeksOnTrack
	p.PlateauWeeks = stats.PlateauWeeks
	p.LastReviewedWeek = stats.LastReviewedWeek
	reviewedAt := stats.LastReviewedAt
	p.LastReviewedAt = &reviewedAt
	return nil
}

func (m *MockProgramRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.store[id]; !ok {
		return domain.ErrProgramNotFound
	}
	delete(m.store, id)
	return nil
}

func setupProgramRouter() (*gin.Engine, *MockProgramRepo) {
	gin.SetMode(gin.TestMode)

	repo := NewMockProgramRepo()
	svc := services.NewProgramService(repo)
	handler := adapterHTTP.NewProgramHandler(svc)

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(headerAuth())
	handler.RegisterRoutes(group)
	return r, repo
}

func storedProgram(t *testing.T, repo *MockProgramRepo, userID string) *domain.Program {
	t.Helper()

	goal := domain.Goal{Type: domain.GoalWeightLoss, TargetRateKgPerWeek: -0.4}
	p, err := domain.NewProgram(userID, "Cut Block", goal, 2100, 8000, domain.MacroTargets{ProteinG: 150, CarbsG: 170, FatG: 60})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestCreateProgram(t *testing.T) {
	t.Run("Success: 201 with derived kcal baseline", func(t *testing.T) {
		router, _ := setupProgramRouter()

		body := `{
			"title": "Summer Cut",
			"goal_type": "weight_loss",
			"target_rate_kg_per_week": -0.5,
			"age": 30, "weight_kg": 80, "height_cm": 180,
			"sex": "male", "activity_level": "moderate"
		}`

		req, _ := http.NewRequest("POST", "/api/v1/programs", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created domain.Program
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "Summer Cut", created.Title)
		assert.Equal(t, 2259, created.BaselineKcalTarget)
		assert.Equal(t, created.BaselineKcalTarget, created.CurrentKcalTarget)
		assert.Greater(t, created.Macros.ProteinG, 0)
	})

	t.Run("Success: 201 with explicit kcal target and no profile", func(t *testing.T) {
		router, _ := setupProgramRouter()

		body := `{
			"title": "Coached Plan",
			"goal_type": "maintenance",
			"kcal_target": 2400,
			"weight_kg": 75
		}`

		req, _ := http.NewRequest("POST", "/api/v1/programs", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"baseline_kcal_target":2400`)
	})

	t.Run("Fail: 400 for incomplete profile without kcal target", func(t *testing.T) {
		router, _ := setupProgramRouter()

		body := `{"title": "No Profile", "goal_type": "maintenance"}`

		req, _ := http.NewRequest("POST", "/api/v1/programs", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 for wrong rate sign", func(t *testing.T) {
		router, _ := setupProgramRouter()

		body := `{
			"title": "Backwards",
			"goal_type": "weight_loss",
			"target_rate_kg_per_week": 0.5,
			"kcal_target": 2000
		}`

		req, _ := http.NewRequest("POST", "/api/v1/programs", bytes.NewBufferString(body))
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 401 without user", func(t *testing.T) {
		router, _ := setupProgramRouter()

		req, _ := http.NewRequest("POST", "/api/v1/programs", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetPrograms(t *testing.T) {
	t.Run("Success: 200 OK with list", func(t *testing.T) {
		router, repo := setupProgramRouter()
		storedProgram(t, repo, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/programs", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Cut Block")
	})

	t.Run("Success: 200 OK single program", func(t *testing.T) {
		router, repo := setupProgramRouter()
		p := storedProgram(t, repo, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/programs/"+p.ID, nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Fail: 403 for another user's program", func(t *testing.T) {
		router, repo := setupProgramRouter()
		p := storedProgram(t, repo, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/programs/"+p.ID, nil)
		req.Header.Set("X-User-ID", "user-2")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCompleteProgram(t *testing.T) {
	t.Run("Success: 200 and status flips", func(t *testing.T) {
		router, repo := setupProgramRouter()
		p := storedProgram(t, repo, "user-1")

		req, _ := http.NewRequest("POST", "/api/v1/programs/"+p.ID+"/complete", nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := repo.GetByID(context.Background(), p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ProgramStatusCompleted, stored.Status)
	})
}

func TestDeleteProgram(t *testing.T) {
	t.Run("Success: 204 No Content", func(t *testing.T) {
		router, repo := setupProgramRouter()
		p := storedProgram(t, repo, "user-1")

		req, _ := http.NewRequest("DELETE", "/api/v1/programs/"+p.ID, nil)
		req.Header.Set("X-User-ID", "user-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("Fail: 403 for another user's program", func(t *testing.T) {
		router, repo := setupProgramRouter()
		p := storedProgram(t, repo, "user-1")

		req, _ := http.NewRequest("DELETE", "/api/v1/programs/"+p.ID, nil)
		req.Header.Set("X-User-ID", "user-2")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
