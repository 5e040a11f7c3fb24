package handler

import (
	"net/http"
	"strconv"
	"time"

	"pacetrack/internal/goals"
	"pacetrack/internal/models"
	"pacetrack/internal/stats"
	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetStats godoc
// @Summary      Weekly or monthly summary
// @Description  ?period=weekly|monthly (default weekly), ?offset=N windows back (default 0 = current).
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} stats.PeriodSummary
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/stats [get]
func GetStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	period := c.DefaultQuery("period", models.GoalPeriodWeekly)
	if !models.ValidGoalPeriod(period) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be weekly or monthly"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	start, end := goals.PeriodWindow(period, time.Now(), offset)
	activities, err := storage.ActivitiesBetween(user.ID, start, end)
	if err != nil {
		logrus.WithError(err).Error("failed to load stats window")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats.Summarize(period, offset, start, end, activities))
}
