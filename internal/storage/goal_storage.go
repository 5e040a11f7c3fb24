package storage

import (
	"database/sql"
	"time"

	"pacetrack/internal/models"
)

func CreateGoal(g models.Goal) (int, error) {
	res, err := db.Exec(`INSERT INTO goals(user_id, kind, period, target, active, created_at)
		VALUES(?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Kind, g.Period, g.Target, g.Active, g.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

func ListGoals(userID int) ([]models.Goal, error) {
	rows, err := db.Query(`SELECT id, user_id, kind, period, target, active, created_at
		FROM goals WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		var createdStr string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Kind, &g.Period, &g.Target, &g.Active, &createdStr); err != nil {
			return nil, err
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func GetGoal(userID, id int) (models.Goal, error) {
	var g models.Goal
	var createdStr string
	row := db.QueryRow(`SELECT id, user_id, kind, period, target, active, created_at
		FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	err := row.Scan(&g.ID, &g.UserID, &g.Kind, &g.Period, &g.Target, &g.Active, &createdStr)
	if err == sql.ErrNoRows {
		return g, ErrNotFound
	}
	if err != nil {
		return g, err
	}
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return g, nil
}

func UpdateGoal(userID, id int, target float64, active bool) error {
	res, err := db.Exec(`UPDATE goals SET target = ?, active = ? WHERE id = ? AND user_id = ?`,
		target, active, id, userID)
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

func DeleteGoal(userID, id int) error {
	res, err := db.Exec("DELETE FROM goals WHERE id = ? AND user_id = ?", id, userID)
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
