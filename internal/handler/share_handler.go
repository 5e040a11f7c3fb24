package handler

import (
	"errors"
	"net/http"
	"time"

	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const shareTTL = 24 * time.Hour

// Share tokens are ephemeral by design: a snapshot in process memory, not a
// table. A restart invalidates outstanding links, which is acceptable for
// "share my run" links.
var shareCache = cache.New(shareTTL, time.Hour)

// SharedSummary is the public, privacy-safe view behind a share link.
type SharedSummary struct {
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	StartedAt       time.Time `json:"started_at"`
	DistanceM       float64   `json:"distance_m"`
	DurationSec     float64   `json:"duration_sec"`
	AvgPaceSecPerKm float64   `json:"avg_pace_sec_per_km"`
	Calories        float64   `json:"calories"`
}

type ShareResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareActivity godoc
// @Summary      Create a share link
// @Description  Issues a 24h token whose public view carries summary numbers only, never the route or profile fields.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "activity id"
// @Success      200 {object} handler.ShareResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/activities/{id}/share [post]
func ShareActivity(c *gin.Context) {
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
		logrus.WithError(err).Error("failed to load activity for sharing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	displayName := user.Profile.DisplayName
	if displayName == "" {
		displayName = user.Username
	}

	token := uuid.New().String()
	shareCache.Set(token, SharedSummary{
		DisplayName:     displayName,
		Type:            a.Type,
		StartedAt:       a.StartedAt,
		DistanceM:       a.DistanceM,
		DurationSec:     a.DurationSec,
		AvgPaceSecPerKm: a.AvgPaceSecKm,
		Calories:        a.Calories,
	}, cache.DefaultExpiration)

	c.JSON(http.StatusOK, ShareResponse{
		Token:     token,
		URL:       "/share/" + token,
		ExpiresAt: time.Now().Add(shareTTL),
	})
}

// GetSharedSummary godoc
// @Summary      Public shared summary
// @Description  No authentication; 404 once the token expires.
// @Tags         Public
// @Produce      json
// @Param        token path string true "share token"
// @Success      200 {object} handler.SharedSummary
// @Failure      404 {object} handler.ErrorResponse
// @Router       /share/{token} [get]
func GetSharedSummary(c *gin.Context) {
	v, found := shareCache.Get(c.Param("token"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Share link not found or expired"})
		return
	}
	c.JSON(http.StatusOK, v.(SharedSummary))
}
