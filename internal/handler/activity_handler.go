package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"pacetrack/internal/export"
	"pacetrack/internal/importer"
	"pacetrack/internal/metrics"
	"pacetrack/internal/models"
	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	maxImportBytes   = 8 << 20
)

// ActivityRequest carries a client-recorded session. Metric fields are not
// accepted; the server recomputes everything from the route. DurationSec is
// only honored for route-less (manual) entries.
type ActivityRequest struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	StartedAt   time.Time           `json:"started_at"`
	DurationSec float64             `json:"duration_sec"`
	Route       []models.TrackPoint `json:"route"`
}

type SyncRequest struct {
	Activities []ActivityRequest `json:"activities"`
}

type SyncResult struct {
	ID     string `json:"id"`
	Status string `json:"status"` // created | updated | invalid
	Reason string `json:"reason,omitempty"`
}

type ActivityListResponse struct {
	Activities []models.Activity `json:"activities"`
}

// Validates and converts a request into a storable activity with computed
// metrics. Returns a client-facing reason on rejection.
func buildActivity(user models.User, req ActivityRequest) (models.Activity, string) {
	if _, exists := models.GetActivityType(req.Type); !exists {
		return models.Activity{}, "Unknown activity type"
	}

	startedAt := req.StartedAt
	if startedAt.IsZero() {
		if len(req.Route) == 0 {
			return models.Activity{}, "started_at is required"
		}
		startedAt = req.Route[0].Time
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	} else if _, err := uuid.Parse(id); err != nil {
		return models.Activity{}, "Activity id must be a UUID"
	}

	a := models.Activity{
		ID:        id,
		UserID:    user.ID,
		Type:      req.Type,
		StartedAt: startedAt,
		Route:     req.Route,
		CreatedAt: time.Now(),
	}

	if len(req.Route) > 0 {
		summary := metrics.Compute(req.Route, req.Type, user.Profile.WeightKg)
		a.DurationSec = summary.DurationSec
		a.DistanceM = summary.DistanceM
		a.AvgPaceSecKm = summary.AvgPaceSecPerKm
		a.Calories = summary.Calories
		a.ElevationGainM = summary.ElevationGainM
		return a, ""
	}

	// Manual entry: no route, duration from the client, calories from MET.
	if req.DurationSec <= 0 {
		return models.Activity{}, "duration_sec is required without a route"
	}
	a.DurationSec = req.DurationSec
	a.Calories = metrics.Calories(req.Type, user.Profile.WeightKg, req.DurationSec, 0)
	return a, ""
}

// CreateActivity godoc
// @Summary      Record an activity
// @Description  Stores one session; distance/pace/calories are computed server-side from the route.
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.ActivityRequest true "recorded session"
// @Success      200 {object} models.Activity
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/activities [post]
func CreateActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	a, reason := buildActivity(user, req)
	if reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	if _, err := storage.UpsertActivity(a); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Activity id already in use"})
			return
		}
		logrus.WithError(err).Error("failed to store activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store activity"})
		return
	}
	logrus.WithFields(logrus.Fields{"user": user.Username, "activity": a.ID}).Info("activity recorded")
	c.JSON(http.StatusOK, a)
}

// SyncActivities godoc
// @Summary      Sync a batch of activities
// @Description  Idempotent upsert keyed on client-generated activity ids; per-item status in the response.
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handler.SyncRequest true "locally recorded activities"
// @Success      200 {object} object{results=[]handler.SyncResult}
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/activities/sync [post]
func SyncActivities(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Activities) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No activities to sync"})
		return
	}

	results := make([]SyncResult, 0, len(req.Activities))
	for _, item := range req.Activities {
		a, reason := buildActivity(user, item)
		if reason != "" {
			results = append(results, SyncResult{ID: item.ID, Status: "invalid", Reason: reason})
			continue
		}
		created, err := storage.UpsertActivity(a)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			results = append(results, SyncResult{ID: a.ID, Status: "invalid", Reason: "Activity id already in use"})
		case err != nil:
			logrus.WithError(err).WithField("activity", a.ID).Error("sync upsert failed")
			results = append(results, SyncResult{ID: a.ID, Status: "invalid", Reason: "Database error"})
		case created:
			results = append(results, SyncResult{ID: a.ID, Status: "created"})
		default:
			results = append(results, SyncResult{ID: a.ID, Status: "updated"})
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ImportActivity godoc
// @Summary      Import a FIT file
// @Description  Multipart upload ("file" field) of a Garmin FIT activity; the route is decoded and metrics computed as usual.
// @Tags         API (Protected)
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "FIT activity file"
// @Success      200 {object} models.Activity
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/activities/import [post]
func ImportActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}
	if fileHeader.Size > maxImportBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}

	typeKey, points, startedAt, err := importer.ParseFIT(data)
	if err != nil {
		logrus.WithError(err).WithField("user", user.Username).Warn("fit import rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a valid FIT activity file"})
		return
	}

	a, reason := buildActivity(user, ActivityRequest{
		Type:      typeKey,
		StartedAt: startedAt,
		Route:     points,
	})
	if reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	if _, err := storage.UpsertActivity(a); err != nil {
		logrus.WithError(err).Error("failed to store imported activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store activity"})
		return
	}
	logrus.WithFields(logrus.Fields{"user": user.Username, "activity": a.ID, "points": len(points)}).Info("fit file imported")
	c.JSON(http.StatusOK, a)
}

// ListActivities godoc
// @Summary      List own activities
// @Description  Newest first, without routes. ?limit= and ?offset= page through.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.ActivityListResponse
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/activities [get]
func ListActivities(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	activities, err := storage.ListActivities(user.ID, limit, offset)
	if err != nil {
		logrus.WithError(err).Error("failed to list activities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, ActivityListResponse{Activities: activities})
}

// GetActivity godoc
// @Summary      One activity with route
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "activity id"
// @Success      200 {object} models.Activity
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/activities/{id} [get]
func GetActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	a, err := storage.GetActivityByID(user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		logrus.WithError(err).Error("failed to load activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// ExportGPX godoc
// @Summary      GPX export
// @Description  Renders the stored route as GPX 1.1. 404 for route-less activities.
// @Tags         API (Protected)
// @Produce      application/gpx+xml
// @Security     BearerAuth
// @Param        id path string true "activity id"
// @Success      200 {string} string "GPX document"
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/activities/{id}/gpx [get]
func ExportGPX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	a, err := storage.GetActivityByID(user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		logrus.WithError(err).Error("failed to load activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	gpx := export.GPX(a)
	if gpx == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity has no route"})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+a.ID+".gpx")
	c.Data(http.StatusOK, "application/gpx+xml", []byte(gpx))
}

// DeleteActivity godoc
// @Summary      Delete own activity
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "activity id"
// @Success      200 {object} handler.SuccessResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/activities/{id} [delete]
func DeleteActivity(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := storage.DeleteActivity(user.ID, c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
			return
		}
		logrus.WithError(err).Error("failed to delete activity")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted"})
}
