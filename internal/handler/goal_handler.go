package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pacetrack/internal/goals"
	"pacetrack/internal/models"
	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type GoalRequest struct {
	Kind   string  `json:"kind" example:"distance"`
	Period string  `json:"period" example:"weekly"`
	Target float64 `json:"target" example:"20000"`
}

type GoalUpdateRequest struct {
	Target float64 `json:"target"`
	Active bool    `json:"active"`
}

type GoalListResponse struct {
	Goals []goals.Progress `json:"goals"`
}

// CreateGoal godoc
// @Summary      Create a goal
// @Description  Target is meters for distance goals, a count for frequency goals, seconds for duration goals.
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.GoalRequest true "goal definition"
// @Success      200 {object} models.Goal
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/goals [post]
func CreateGoal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !models.ValidGoalKind(req.Kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown goal kind"})
		return
	}
	if !models.ValidGoalPeriod(req.Period) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown goal period"})
		return
	}
	if req.Target <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target must be positive"})
		return
	}

	g := models.Goal{
		UserID:    user.ID,
		Kind:      req.Kind,
		Period:    req.Period,
		Target:    req.Target,
		Active:    true,
		CreatedAt: time.Now(),
	}
	id, err := storage.CreateGoal(g)
	if err != nil {
		logrus.WithError(err).Error("failed to create goal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}
	g.ID = id
	c.JSON(http.StatusOK, g)
}

// ListGoals godoc
// @Summary      List goals with progress
// @Description  Each goal is evaluated against the activities of its current period window.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.GoalListResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/goals [get]
func ListGoals(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := storage.ListGoals(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to list goals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
		return
	}

	now := time.Now()
	progress := make([]goals.Progress, 0, len(list))
	for _, g := range list {
		start, end := goals.PeriodWindow(g.Period, now, 0)
		activities, err := storage.ActivitiesBetween(user.ID, start, end)
		if err != nil {
			logrus.WithError(err).WithField("goal", g.ID).Error("failed to load goal window")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute progress"})
			return
		}
		progress = append(progress, goals.Evaluate(g, activities, start, end))
	}
	c.JSON(http.StatusOK, GoalListResponse{Goals: progress})
}

// UpdateGoal godoc
// @Summary      Update a goal's target or active flag
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "goal id"
// @Param        request body handler.GoalUpdateRequest true "new target / active"
// @Success      200 {object} handler.SuccessResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/goals/{id} [put]
func UpdateGoal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal id"})
		return
	}

	var req GoalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Target <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target must be positive"})
		return
	}

	if err := storage.UpdateGoal(user.ID, id, req.Target, req.Active); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		logrus.WithError(err).Error("failed to update goal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal updated"})
}

// DeleteGoal godoc
// @Summary      Delete a goal
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "goal id"
// @Success      200 {object} handler.SuccessResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/goals/{id} [delete]
func DeleteGoal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal id"})
		return
	}

	if err := storage.DeleteGoal(user.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		logrus.WithError(err).Error("failed to delete goal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete goal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}
