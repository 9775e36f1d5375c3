package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jvaldes/apptrack/internal/api/dto"
	"github.com/jvaldes/apptrack/internal/tracker/stats"
)

// Dashboard handles GET /api/v1/dashboard
// Returns the headline stats together with the next week of follow-ups, the
// same data the dashboard view renders.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.stats.Dashboard(ctx)
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute stats",
		})
		return
	}

	followUps, err := h.stats.UpcomingFollowUps(ctx, stats.DefaultFollowUpWindowDays)
	if err != nil {
		h.logger.Error("Failed to compute follow-ups", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute follow-ups",
		})
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Stats:             d,
		UpcomingFollowUps: dto.FollowUpItems(followUps),
	})
}

// Stats handles GET /api/v1/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	d, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute stats",
		})
		return
	}

	c.JSON(http.StatusOK, d)
}

// FollowUps handles GET /api/v1/followups?within_days=N
func (h *StatsHandler) FollowUps(c *gin.Context) {
	withinDays := stats.DefaultFollowUpWindowDays
	if raw := c.Query("within_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "within_days must be a positive integer",
			})
			return
		}
		withinDays = n
	}

	followUps, err := h.stats.UpcomingFollowUps(c.Request.Context(), withinDays)
	if err != nil {
		h.logger.Error("Failed to compute follow-ups", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute follow-ups",
		})
		return
	}

	items := dto.FollowUpItems(followUps)
	c.JSON(http.StatusOK, dto.FollowUpsResponse{
		Count: len(items),
		Items: items,
	})
}
