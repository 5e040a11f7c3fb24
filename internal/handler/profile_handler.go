package handler

import (
	"database/sql"
	"net/http"

	"pacetrack/internal/models"
	"pacetrack/internal/privacy"
	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Public view plus activity count; what GET /api/users/:username returns.
type PublicProfileResponse struct {
	Profile    privacy.PublicProfile `json:"profile"`
	Activities int                   `json:"activities"`
}

// Profile godoc
// @Summary      Own profile
// @Description  Full profile of the authenticated user, privacy flags included.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.User
// @Failure      401 {object} handler.ErrorResponse
// @Router       /api/profile [get]
func Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.UserProfile true "profile fields"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/profile [put]
func UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var profile models.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if profile.Age < 0 || profile.WeightKg < 0 || profile.HeightCm < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile values cannot be negative"})
		return
	}

	if err := storage.UpdateProfile(user.ID, profile); err != nil {
		logrus.WithError(err).Error("failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UpdatePrivacy godoc
// @Summary      Update privacy settings
// @Description  Per-field visibility flags for non-owner profile views.
// @Tags         API (Protected)
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.PrivacySettings true "visibility flags"
// @Success      200 {object} handler.SuccessResponse
// @Failure      400 {object} handler.ErrorResponse
// @Router       /api/profile/privacy [put]
func UpdatePrivacy(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var settings models.PrivacySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := storage.UpdatePrivacy(user.ID, settings); err != nil {
		logrus.WithError(err).Error("failed to update privacy settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update privacy settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Privacy settings updated"})
}

// ViewUser godoc
// @Summary      View another user's profile
// @Description  Applies the target user's privacy settings; hidden fields are omitted. Owners get their full profile.
// @Tags         API (Protected)
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "username"
// @Success      200 {object} handler.PublicProfileResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/users/{username} [get]
func ViewUser(c *gin.Context) {
	viewer := c.GetString("username")
	target := c.Param("username")

	user, err := storage.GetUserByUsername(target)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.WithError(err).Error("failed to load user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	count, err := storage.CountActivities(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to count activities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if viewer == target {
		c.JSON(http.StatusOK, gin.H{"profile": user, "activities": count})
		return
	}
	c.JSON(http.StatusOK, PublicProfileResponse{
		Profile:    privacy.Apply(user),
		Activities: count,
	})
}
