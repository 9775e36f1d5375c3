package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvaldes/apptrack/internal/api/handler"
	"github.com/jvaldes/apptrack/internal/api/router"
	"github.com/jvaldes/apptrack/internal/tracker/domain"
	"github.com/jvaldes/apptrack/internal/tracker/stats"
	"github.com/jvaldes/apptrack/internal/tracker/storage"
)

func newTestServer(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(db, logger)
	require.NoError(t, store.EnsureSchema(context.Background()))

	deps := &handler.Dependencies{
		Logger: logger,
		Store:  store,
		Stats:  stats.NewEngine(store),
	}

	return router.SetupRouter(deps), store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

func TestCreateApplication(t *testing.T) {
	r, _ := newTestServer(t)

	t.Run("creates with defaults", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/applications", gin.H{
			"company": "Acme",
			"role":    "Backend Engineer",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]any
		decode(t, w, &resp)
		assert.Equal(t, "Acme", resp["company"])
		assert.Equal(t, "Applied", resp["status"])
		assert.Equal(t, time.Now().Format(domain.DateLayout), resp["applicationDate"])
		assert.NotZero(t, resp["id"])
	})

	t.Run("accepts full payload", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/applications", gin.H{
			"company":         "Initech",
			"role":            "SRE",
			"status":          "Interview",
			"applicationDate": "2026-08-01",
			"followUpDate":    "2026-09-05",
			"tags":            "go,remote",
			"location":        "Madrid",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]any
		decode(t, w, &resp)
		assert.Equal(t, "Interview", resp["status"])
		assert.Equal(t, "2026-08-01", resp["applicationDate"])
		assert.Equal(t, "2026-09-05", resp["followUpDate"])
	})

	t.Run("missing required fields", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/applications", gin.H{"company": "Acme"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/applications", gin.H{
			"company": "Acme", "role": "r", "status": "Ghosted",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid date format", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/applications", gin.H{
			"company": "Acme", "role": "r", "applicationDate": "01/08/2026",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetApplication(t *testing.T) {
	r, store := newTestServer(t)

	created, err := store.Create(context.Background(), &domain.Application{
		Company: "Acme", Role: "Backend Engineer",
	})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/applications/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decode(t, w, &resp)
	assert.Equal(t, "Acme", resp["company"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/applications/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/applications/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListApplications(t *testing.T) {
	r, store := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := store.Create(ctx, &domain.Application{
			Company:         fmt.Sprintf("Company %02d", i),
			Role:            "Backend Engineer",
			ApplicationDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, &domain.Application{
		Company: "Special", Role: "SRE", Status: domain.StatusInterview,
	})
	require.NoError(t, err)

	t.Run("default page size", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/applications", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Applications []map[string]any `json:"applications"`
			Total        int              `json:"total"`
			Page         int              `json:"page"`
			TotalPages   int              `json:"totalPages"`
		}
		decode(t, w, &resp)

		assert.Len(t, resp.Applications, 20)
		assert.Equal(t, 26, resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 2, resp.TotalPages)
	})

	t.Run("second page", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/applications?page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Applications []map[string]any `json:"applications"`
			Page         int              `json:"page"`
		}
		decode(t, w, &resp)
		assert.Len(t, resp.Applications, 6)
		assert.Equal(t, 2, resp.Page)
	})

	t.Run("status filter", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/applications?status=Interview", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Total int `json:"total"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/applications?status=Ghosted", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid order field", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/applications?order_by=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ordering ascending by company", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/applications?order_by=company&order=asc&page_size=5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Applications []map[string]any `json:"applications"`
		}
		decode(t, w, &resp)
		require.Len(t, resp.Applications, 5)
		assert.Equal(t, "Company 00", resp.Applications[0]["company"])
	})
}

func TestUpdateApplication(t *testing.T) {
	r, store := newTestServer(t)

	followUp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	created, err := store.Create(context.Background(), &domain.Application{
		Company: "Acme", Role: "Backend Engineer", FollowUpDate: &followUp,
	})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/v1/applications/%d", created.ID)

	t.Run("partial update", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{"status": "Interview"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]any
		decode(t, w, &resp)
		assert.Equal(t, "Interview", resp["status"])
		assert.Equal(t, "Acme", resp["company"])
	})

	t.Run("empty date string clears the field", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{"followUpDate": ""})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		decode(t, w, &resp)
		assert.Nil(t, resp["followUpDate"])
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/v1/applications/99999", gin.H{"status": "Offer"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, path, gin.H{"status": "Ghosted"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChangeStatus(t *testing.T) {
	r, store := newTestServer(t)

	created, err := store.Create(context.Background(), &domain.Application{
		Company: "Acme", Role: "Backend Engineer",
	})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/v1/applications/%d/status", created.ID)

	t.Run("plain transition leaves response date unset", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, path, gin.H{"status": "Interview"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		decode(t, w, &resp)
		assert.Equal(t, "Interview", resp["status"])
		assert.Nil(t, resp["responseDate"])
	})

	t.Run("terminal transition records today as response date", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, path, gin.H{"status": "Rejected"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		decode(t, w, &resp)
		assert.Equal(t, "Rejected", resp["status"])
		assert.Equal(t, time.Now().Format(domain.DateLayout), resp["responseDate"])
	})

	t.Run("invalid status", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, path, gin.H{"status": "Ghosted"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteApplication(t *testing.T) {
	r, store := newTestServer(t)

	created, err := store.Create(context.Background(), &domain.Application{
		Company: "Acme", Role: "Backend Engineer",
	})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/v1/applications/%d", created.ID)

	w := doJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardEndpoints(t *testing.T) {
	r, store := newTestServer(t)
	ctx := context.Background()

	due := domain.DateOnly(time.Now()).AddDate(0, 0, 2)
	_, err := store.Create(ctx, &domain.Application{
		Company: "Acme", Role: "r", FollowUpDate: &due,
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, &domain.Application{
		Company: "Initech", Role: "r", Status: domain.StatusRejected,
	})
	require.NoError(t, err)

	t.Run("dashboard", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/dashboard", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Stats struct {
				Total          int            `json:"total"`
				CountsByStatus map[string]int `json:"countsByStatus"`
				ResponseRate   float64        `json:"responseRate"`
			} `json:"stats"`
			UpcomingFollowUps []map[string]any `json:"upcomingFollowUps"`
		}
		decode(t, w, &resp)

		assert.Equal(t, 2, resp.Stats.Total)
		assert.Equal(t, 1, resp.Stats.CountsByStatus["Applied"])
		assert.Equal(t, 1, resp.Stats.CountsByStatus["Rejected"])
		assert.InDelta(t, 50.0, resp.Stats.ResponseRate, 0.001)
		assert.Len(t, resp.UpcomingFollowUps, 1)
	})

	t.Run("stats", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Total int `json:"total"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("followups default window", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/followups", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Count int              `json:"count"`
			Items []map[string]any `json:"items"`
		}
		decode(t, w, &resp)
		assert.Equal(t, 1, resp.Count)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Acme", resp.Items[0]["company"])
	})

	t.Run("followups rejects bad window", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/followups?within_days=0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, http.MethodGet, "/api/v1/followups?within_days=soon", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCSVTransfer(t *testing.T) {
	r, store := newTestServer(t)

	_, err := store.Create(context.Background(), &domain.Application{
		Company: "Acme", Role: "Backend Engineer",
		ApplicationDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	t.Run("export", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/export/csv", nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[1], "Acme")
		assert.Contains(t, lines[1], "2026-08-01")
	})

	t.Run("import", func(t *testing.T) {
		csv := "company,role,status\nGlobex,Data Engineer,Interview\nHooli,PM,Ghosted\n"
		req := httptest.NewRequest(http.MethodPost, "/api/v1/import/csv", strings.NewReader(csv))
		req.Header.Set("Content-Type", "text/csv")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Success  bool `json:"success"`
			Imported int  `json:"imported"`
		}
		decode(t, w, &resp)
		assert.True(t, resp.Success)
		// The row with the unknown status is skipped.
		assert.Equal(t, 1, resp.Imported)

		apps, err := store.List(context.Background(), storage.Filter{Company: "Globex"})
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, domain.StatusInterview, apps[0].Status)
	})

	t.Run("import rejects malformed csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/import/csv", strings.NewReader("company\n\"broken\n"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
