package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pacetrack/internal/auth"
	"pacetrack/internal/goals"
	"pacetrack/internal/middleware"
	"pacetrack/internal/models"
	"pacetrack/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/filedef"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Configure("handler_test_secret", time.Hour)
	require.NoError(t, storage.InitDB(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(storage.CloseDB)

	router := gin.New()
	router.POST("/signup", Signup)
	router.POST("/login", Login)
	router.GET("/share/:token", GetSharedSummary)
	router.GET("/ws/live", HandleLiveSession)

	protected := router.Group("/api").Use(middleware.AuthMiddleware())
	{
		protected.GET("/profile", Profile)
		protected.PUT("/profile", UpdateProfile)
		protected.PUT("/profile/privacy", UpdatePrivacy)
		protected.GET("/users/:username", ViewUser)
		protected.POST("/activities", CreateActivity)
		protected.POST("/activities/sync", SyncActivities)
		protected.POST("/activities/import", ImportActivity)
		protected.GET("/activities", ListActivities)
		protected.GET("/activities/:id", GetActivity)
		protected.GET("/activities/:id/gpx", ExportGPX)
		protected.DELETE("/activities/:id", DeleteActivity)
		protected.POST("/activities/:id/share", ShareActivity)
		protected.GET("/stats", GetStats)
		protected.POST("/goals", CreateGoal)
		protected.GET("/goals", ListGoals)
		protected.PUT("/goals/:id", UpdateGoal)
		protected.DELETE("/goals/:id", DeleteGoal)
	}
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/signup", "", SignupRequest{
		Username: username,
		Password: "password123",
		Profile: models.UserProfile{
			DisplayName: "Test " + username,
			Age:         30,
			WeightKg:    70,
			HeightCm:    175,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/login", "", LoginRequest{Username: username, Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginSuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// A ~2 km run inside the current weekly window so stats and goal progress
// pick it up. 61 points heading east at ~3.3 m/s.
func testRoute() []models.TrackPoint {
	weekStart, _ := goals.PeriodWindow(models.GoalPeriodWeekly, time.Now(), 0)
	base := weekStart.Add(time.Hour)

	points := make([]models.TrackPoint, 61)
	for i := range points {
		points[i] = models.TrackPoint{
			Lat:  0,
			Lon:  float64(i) * 0.0003,
			Time: base.Add(time.Duration(i) * 10 * time.Second),
		}
	}
	return points
}

func TestAuthFlow(t *testing.T) {
	router := setupRouter(t)

	token := signupAndLogin(t, router, "alice")

	w := doJSON(router, http.MethodPost, "/signup", "", SignupRequest{Username: "alice", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/login", "", LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 70.0, user.Profile.WeightKg)
}

func TestActivityLifecycle(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	const id = "aaaaaaaa-0000-0000-0000-000000000001"
	route := testRoute()
	w := doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
		ID:    id,
		Type:  "running",
		Route: route,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, id, created.ID)
	// Omitted started_at falls back to the first route point.
	assert.True(t, created.StartedAt.Equal(route[0].Time))
	assert.InDelta(t, 2000, created.DistanceM, 30)
	assert.Equal(t, 600.0, created.DurationSec)
	assert.Greater(t, created.Calories, 0.0)
	assert.InDelta(t, 300, created.AvgPaceSecKm, 10)

	w = doJSON(router, http.MethodGet, "/api/activities", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ActivityListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Activities, 1)
	assert.Empty(t, list.Activities[0].Route)

	w = doJSON(router, http.MethodGet, "/api/activities/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var full models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &full))
	assert.Len(t, full.Route, 61)

	w = doJSON(router, http.MethodGet, "/api/activities/"+id+"/gpx", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<trkpt")

	// Another user cannot see or delete it.
	otherToken := signupAndLogin(t, router, "bob")
	w = doJSON(router, http.MethodGet, "/api/activities/"+id, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(router, http.MethodDelete, "/api/activities/"+id, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/activities/"+id, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodGet, "/api/activities/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivityValidation(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	w := doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
		Type:  "swimming",
		Route: testRoute(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
		Type:      "running",
		StartedAt: time.Now(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
		ID:        "not-a-uuid",
		Type:      "running",
		StartedAt: time.Now(),
		Route:     testRoute(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Manual treadmill entry: no route, explicit duration.
	w = doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
		Type:        "running",
		StartedAt:   time.Now(),
		DurationSec: 1800,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var manual models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &manual))
	assert.Equal(t, 0.0, manual.DistanceM)
	assert.Greater(t, manual.Calories, 0.0)
}

func TestSyncIdempotent(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	const id = "bbbbbbbb-0000-0000-0000-000000000001"
	batch := SyncRequest{Activities: []ActivityRequest{
		{ID: id, Type: "running", Route: testRoute()},
		{Type: "swimming", StartedAt: time.Now()},
	}}

	w := doJSON(router, http.MethodPost, "/api/activities/sync", token, batch)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Results []SyncResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "created", resp.Results[0].Status)
	assert.Equal(t, "invalid", resp.Results[1].Status)

	// Replaying the same batch updates instead of duplicating.
	w = doJSON(router, http.MethodPost, "/api/activities/sync", token, batch)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "updated", resp.Results[0].Status)

	w = doJSON(router, http.MethodGet, "/api/activities", token, nil)
	var list ActivityListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Activities, 1)
}

// A small FIT ride: one session with the sport, 10 fixed records a second
// apart heading east at ~6.8 m/s, plus one fixless record to be skipped.
func encodeTestRide(t *testing.T, start time.Time) []byte {
	t.Helper()
	toSemicircles := func(deg float64) int32 {
		return int32(deg * float64(int64(1)<<31) / 180)
	}

	activity := filedef.NewActivity()
	activity.FileId = *mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetTimeCreated(start)

	activity.Records = append(activity.Records,
		mesgdef.NewRecord(nil).SetTimestamp(start.Add(-time.Second)))
	for i := 0; i < 10; i++ {
		activity.Records = append(activity.Records,
			mesgdef.NewRecord(nil).
				SetTimestamp(start.Add(time.Duration(i)*time.Second)).
				SetPositionLat(toSemicircles(52.52)).
				SetPositionLong(toSemicircles(13.405+float64(i)*0.0001)))
	}
	activity.Sessions = append(activity.Sessions,
		mesgdef.NewSession(nil).SetSport(typedef.SportCycling))

	fit := activity.ToFIT(nil)
	var buf bytes.Buffer
	require.NoError(t, encoder.New(&buf).Encode(&fit))
	return buf.Bytes()
}

func uploadFile(router *gin.Engine, path, token, filename string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportFITActivity(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	start := time.Date(2026, 8, 19, 8, 0, 0, 0, time.UTC)
	w := uploadFile(router, "/api/activities/import", token, "morning-ride.fit",
		encodeTestRide(t, start))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var a models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, "cycling", a.Type)
	assert.True(t, a.StartedAt.Equal(start), "started_at = %v, want %v", a.StartedAt, start)
	// ~6.8 m per step over 9 segments; the fixless record is dropped.
	assert.InDelta(t, 61, a.DistanceM, 5)
	assert.Equal(t, 9.0, a.DurationSec)

	// The import is a regular activity afterwards, route included.
	w = doJSON(router, http.MethodGet, "/api/activities/"+a.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Len(t, stored.Route, 10)

	w = uploadFile(router, "/api/activities/import", token, "notes.txt",
		[]byte("not a fit file"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/activities/import", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrivacyFilteredProfileView(t *testing.T) {
	router := setupRouter(t)
	aliceToken := signupAndLogin(t, router, "alice")
	bobToken := signupAndLogin(t, router, "bob")

	w := doJSON(router, http.MethodPut, "/api/profile/privacy", aliceToken,
		models.PrivacySettings{ShowAge: true, ShowWeight: false, ShowHeight: false})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/users/alice", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		Profile map[string]interface{} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Contains(t, view.Profile, "age")
	assert.NotContains(t, view.Profile, "weight_kg")
	assert.NotContains(t, view.Profile, "height_cm")

	// The owner still sees everything.
	w = doJSON(router, http.MethodGet, "/api/users/alice", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var own struct {
		Profile struct {
			Profile models.UserProfile `json:"profile"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &own))
	assert.Equal(t, 70.0, own.Profile.Profile.WeightKg)

	w = doJSON(router, http.MethodGet, "/api/users/nobody", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsAndGoals(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	ids := []string{
		"cccccccc-0000-0000-0000-000000000001",
		"cccccccc-0000-0000-0000-000000000002",
	}
	for _, id := range ids {
		w := doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
			ID:    id,
			Type:  "running",
			Route: testRoute(),
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(router, http.MethodGet, "/api/stats?period=weekly", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		Activities int     `json:"activities"`
		DistanceM  float64 `json:"distance_m"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Activities)
	assert.InDelta(t, 4000, summary.DistanceM, 60)

	w = doJSON(router, http.MethodGet, "/api/stats?period=daily", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A 3 km weekly distance goal is already covered by the two runs.
	w = doJSON(router, http.MethodPost, "/api/goals", token, GoalRequest{
		Kind: models.GoalKindDistance, Period: models.GoalPeriodWeekly, Target: 3000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Five runs a week is not.
	w = doJSON(router, http.MethodPost, "/api/goals", token, GoalRequest{
		Kind: models.GoalKindFrequency, Period: models.GoalPeriodWeekly, Target: 5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/goals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var goalList GoalListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goalList))
	require.Len(t, goalList.Goals, 2)

	byKind := map[string]bool{}
	for _, p := range goalList.Goals {
		byKind[p.Goal.Kind] = p.Achieved
	}
	assert.True(t, byKind[models.GoalKindDistance])
	assert.False(t, byKind[models.GoalKindFrequency])

	w = doJSON(router, http.MethodPost, "/api/goals", token, GoalRequest{
		Kind: "streak", Period: models.GoalPeriodWeekly, Target: 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareLink(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	const id = "dddddddd-0000-0000-0000-000000000001"
	w := doJSON(router, http.MethodPost, "/api/activities", token, ActivityRequest{
		ID:    id,
		Type:  "running",
		Route: testRoute(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/activities/"+id+"/share", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var share ShareResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &share))
	require.NotEmpty(t, share.Token)

	// Public fetch, no auth.
	w = doJSON(router, http.MethodGet, "/share/"+share.Token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shared SharedSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shared))
	assert.Equal(t, "Test alice", shared.DisplayName)
	assert.InDelta(t, 2000, shared.DistanceM, 30)

	w = doJSON(router, http.MethodGet, "/share/unknown-token", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLiveSession(t *testing.T) {
	router := setupRouter(t)
	token := signupAndLogin(t, router, "alice")

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/ws/live?token=" + token + "&type=running"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	route := testRoute()[:10]
	var lastMetrics liveReply
	for _, p := range route {
		point := p
		require.NoError(t, conn.WriteJSON(liveMessage{Op: "point", Point: &point}))

		var reply liveReply
		require.NoError(t, conn.ReadJSON(&reply))
		require.Equal(t, "metrics", reply.Op)
		lastMetrics = reply
	}
	assert.InDelta(t, 300, lastMetrics.Summary.DistanceM, 10)
	assert.Equal(t, 90.0, lastMetrics.Summary.DurationSec)

	require.NoError(t, conn.WriteJSON(liveMessage{Op: "finish"}))
	var saved liveReply
	require.NoError(t, conn.ReadJSON(&saved))
	require.Equal(t, "saved", saved.Op)
	require.NotEmpty(t, saved.ID)

	// The finished session is now a regular activity.
	w := doJSON(router, http.MethodGet, "/api/activities/"+saved.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(router, http.MethodGet, "/api/activities/"+saved.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var a models.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Len(t, a.Route, 10)
	assert.InDelta(t, lastMetrics.Summary.DistanceM, a.DistanceM, 0.01)

	// Bad token never upgrades.
	_, resp, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(server.URL, "http")+"/ws/live?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
