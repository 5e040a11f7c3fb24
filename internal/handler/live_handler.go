package handler

import (
	"net/http"
	"time"

	"pacetrack/internal/auth"
	"pacetrack/internal/metrics"
	"pacetrack/internal/models"
	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Upgrade HTTP connection to WebSocket
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const liveReadTimeout = 120 * time.Second

type liveMessage struct {
	Op    string             `json:"op"`
	Point *models.TrackPoint `json:"point,omitempty"`
}

type liveReply struct {
	Op      string          `json:"op"`
	ID      string          `json:"id,omitempty"`
	Summary metrics.Summary `json:"summary"`
}

// HandleLiveSession godoc
// @Summary      Live tracking WebSocket session
// @Description  Not a standard HTTP API; connect with ws:// or wss://. Auth is via the `token` query parameter, the activity type via `type`.
// @Description  Client sends {"op":"point"|"pause"|"resume"|"finish"}; each point is answered with the running summary; finish persists the activity.
// @Tags         WebSocket (Live)
// @Param        token query string true  "JWT issued at login"
// @Param        type  query string false "activity type key (default running)"
// @Success      101   {string} string "Switching Protocols"
// @Failure      400   {object} handler.ErrorResponse
// @Failure      401   {object} handler.ErrorResponse
// @Router       /ws/live [get]
func HandleLiveSession(c *gin.Context) {
	tokenString := c.Query("token")
	claims, err := auth.ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	username := claims.Username

	typeKey := c.DefaultQuery("type", "running")
	if _, exists := models.GetActivityType(typeKey); !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown activity type"})
		return
	}

	user, err := storage.GetUserByUsername(username)
	if err != nil {
		logrus.WithError(err).WithField("user", username).Error("failed to load user for live session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).WithField("user", username).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()
	logrus.WithFields(logrus.Fields{"user": username, "type": typeKey}).Info("live session started")

	tracker := metrics.NewTracker(typeKey, user.Profile.WeightKg)

	for {
		conn.SetReadDeadline(time.Now().Add(liveReadTimeout))

		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Connection dropped mid-session: nothing is persisted, the
			// client still holds the recording and can sync it later.
			logrus.WithError(err).WithField("user", username).Info("live session ended without finish")
			return
		}

		switch msg.Op {
		case "point":
			if msg.Point == nil {
				continue
			}
			summary := tracker.Add(*msg.Point)
			if err := conn.WriteJSON(liveReply{Op: "metrics", Summary: summary}); err != nil {
				logrus.WithError(err).WithField("user", username).Warn("failed to send live metrics")
				return
			}

		case "pause":
			tracker.Pause()

		case "resume":
			tracker.Resume()

		case "finish":
			summary := tracker.Summary()
			points := tracker.Points()

			startedAt := time.Now()
			if len(points) > 0 {
				startedAt = points[0].Time
			}
			a := models.Activity{
				ID:             uuid.New().String(),
				UserID:         user.ID,
				Type:           typeKey,
				StartedAt:      startedAt,
				DurationSec:    summary.DurationSec,
				DistanceM:      summary.DistanceM,
				AvgPaceSecKm:   summary.AvgPaceSecPerKm,
				Calories:       summary.Calories,
				ElevationGainM: summary.ElevationGainM,
				Route:          points,
				CreatedAt:      time.Now(),
			}
			if _, err := storage.UpsertActivity(a); err != nil {
				logrus.WithError(err).WithField("user", username).Error("failed to persist live session")
				conn.WriteJSON(gin.H{"op": "error", "error": "Failed to save activity"})
				return
			}
			logrus.WithFields(logrus.Fields{"user": username, "activity": a.ID, "distance_m": a.DistanceM}).Info("live session saved")
			conn.WriteJSON(liveReply{Op: "saved", ID: a.ID, Summary: summary})
			return

		default:
			conn.WriteJSON(gin.H{"op": "error", "error": "Unknown op"})
		}
	}
}
