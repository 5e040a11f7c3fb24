package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"pacetrack/internal/models"
)

// ErrNotFound covers both "no such row" and "row owned by someone else";
// handlers map it to 404 without leaking which one it was.
var ErrNotFound = errors.New("not found")

// UpsertActivity inserts or, when the caller already owns the id, replaces.
// Returns true on insert. An id owned by another user is ErrNotFound so sync
// replays cannot hijack foreign activities.
func UpsertActivity(a models.Activity) (bool, error) {
	routeJSON, err := json.Marshal(a.Route)
	if err != nil {
		return false, err
	}

	var owner int
	err = db.QueryRow("SELECT user_id FROM activities WHERE id = ?", a.ID).Scan(&owner)
	switch {
	case err == sql.ErrNoRows:
		_, err = db.Exec(`INSERT INTO activities(id, user_id, type, started_at, duration_sec,
			distance_m, avg_pace_sec_per_km, calories, elevation_gain_m, route_json, created_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.UserID, a.Type, a.StartedAt.UTC().Format(time.RFC3339),
			a.DurationSec, a.DistanceM, a.AvgPaceSecKm, a.Calories, a.ElevationGainM,
			string(routeJSON), a.CreatedAt.UTC().Format(time.RFC3339))
		return true, err
	case err != nil:
		return false, err
	case owner != a.UserID:
		return false, ErrNotFound
	}

	_, err = db.Exec(`UPDATE activities SET type = ?, started_at = ?, duration_sec = ?,
		distance_m = ?, avg_pace_sec_per_km = ?, calories = ?, elevation_gain_m = ?, route_json = ?
		WHERE id = ? AND user_id = ?`,
		a.Type, a.StartedAt.UTC().Format(time.RFC3339),
		a.DurationSec, a.DistanceM, a.AvgPaceSecKm, a.Calories, a.ElevationGainM,
		string(routeJSON), a.ID, a.UserID)
	return false, err
}

// ListActivities returns the newest-first page without routes.
func ListActivities(userID, limit, offset int) ([]models.Activity, error) {
	rows, err := db.Query(`SELECT id, user_id, type, started_at, duration_sec, distance_m,
		avg_pace_sec_per_km, calories, elevation_gain_m, created_at
		FROM activities WHERE user_id = ?
		ORDER BY started_at DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// ActivitiesBetween returns activities with started_at in [from, to), oldest
// first, without routes. Used by the stats and goal-progress paths.
func ActivitiesBetween(userID int, from, to time.Time) ([]models.Activity, error) {
	rows, err := db.Query(`SELECT id, user_id, type, started_at, duration_sec, distance_m,
		avg_pace_sec_per_km, calories, elevation_gain_m, created_at
		FROM activities WHERE user_id = ? AND started_at >= ? AND started_at < ?
		ORDER BY started_at ASC`,
		userID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

func GetActivityByID(userID int, id string) (models.Activity, error) {
	var a models.Activity
	var startedStr, createdStr string
	var routeJSON sql.NullString

	row := db.QueryRow(`SELECT id, user_id, type, started_at, duration_sec, distance_m,
		avg_pace_sec_per_km, calories, elevation_gain_m, route_json, created_at
		FROM activities WHERE id = ? AND user_id = ?`, id, userID)

	err := row.Scan(&a.ID, &a.UserID, &a.Type, &startedStr, &a.DurationSec, &a.DistanceM,
		&a.AvgPaceSecKm, &a.Calories, &a.ElevationGainM, &routeJSON, &createdStr)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}

	a.StartedAt, _ = time.Parse(time.RFC3339, startedStr)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if routeJSON.Valid && routeJSON.String != "" && routeJSON.String != "null" {
		if err := json.Unmarshal([]byte(routeJSON.String), &a.Route); err != nil {
			return a, err
		}
	}
	return a, nil
}

func DeleteActivity(userID int, id string) error {
	res, err := db.Exec("DELETE FROM activities WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func CountActivities(userID int) (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM activities WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

func scanActivities(rows *sql.Rows) ([]models.Activity, error) {
	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		var startedStr, createdStr string

		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &startedStr, &a.DurationSec,
			&a.DistanceM, &a.AvgPaceSecKm, &a.Calories, &a.ElevationGainM, &createdStr); err != nil {
			return nil, err
		}
		a.StartedAt, _ = time.Parse(time.RFC3339, startedStr)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
