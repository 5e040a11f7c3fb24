package storage

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var db *sql.DB

// InitDB opens the sqlite file and creates the schema. Timestamps are stored
// as RFC3339 strings so scanning does not depend on driver formats.
func InitDB(path string) error {
	var err error

	db, err = sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("InitDB(): failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return fmt.Errorf("InitDB(): failed to connect to database: %w", err)
	}

	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
			"id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"username" TEXT NOT NULL UNIQUE,
			"password_hash" TEXT NOT NULL,
			"display_name" TEXT,
			"gender" TEXT,
			"age" INTEGER NOT NULL DEFAULT 0,
			"weight_kg" REAL NOT NULL DEFAULT 0,
			"height_cm" REAL NOT NULL DEFAULT 0,
			"show_age" INTEGER NOT NULL DEFAULT 1,
			"show_weight" INTEGER NOT NULL DEFAULT 1,
			"show_height" INTEGER NOT NULL DEFAULT 1
	);`
	createActivitiesTable := `
	CREATE TABLE IF NOT EXISTS activities (
			"id" TEXT PRIMARY KEY,
			"user_id" INTEGER NOT NULL,
			"type" TEXT NOT NULL,
			"started_at" TEXT NOT NULL,
			"duration_sec" REAL NOT NULL DEFAULT 0,
			"distance_m" REAL NOT NULL DEFAULT 0,
			"avg_pace_sec_per_km" REAL NOT NULL DEFAULT 0,
			"calories" REAL NOT NULL DEFAULT 0,
			"elevation_gain_m" REAL NOT NULL DEFAULT 0,
			"route_json" TEXT,
			"created_at" TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
	);`
	createGoalsTable := `
	CREATE TABLE IF NOT EXISTS goals (
			"id" INTEGER PRIMARY KEY AUTOINCREMENT,
			"user_id" INTEGER NOT NULL,
			"kind" TEXT NOT NULL,
			"period" TEXT NOT NULL,
			"target" REAL NOT NULL,
			"active" INTEGER NOT NULL DEFAULT 1,
			"created_at" TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id)
	);`

	for _, stmt := range []string{createUsersTable, createActivitiesTable, createGoalsTable} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("InitDB(): failed to create schema: %w", err)
		}
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_activities_user_started ON activities(user_id, started_at)`); err != nil {
		return fmt.Errorf("InitDB(): failed to create index: %w", err)
	}

	logrus.WithField("path", path).Info("database initialized")
	return nil
}

func CloseDB() {
	if db != nil {
		db.Close()
	}
}
