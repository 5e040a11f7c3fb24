package storage

import (
	"database/sql"
	"errors"

	"pacetrack/internal/models"

	"modernc.org/sqlite"
)

var ErrUsernameExists = errors.New("username already exists")

func CreateUser(username, passwordHash string, profile models.UserProfile) error {
	stmt, err := db.Prepare(`INSERT INTO users(username, password_hash, display_name, gender, age, weight_kg, height_cm)
		VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(username, passwordHash, profile.DisplayName, profile.Gender,
		profile.Age, profile.WeightKg, profile.HeightCm)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 { // SQLITE_CONSTRAINT_UNIQUE
				return ErrUsernameExists
			}
		}
		return err
	}
	return nil
}

func GetUserByUsername(username string) (models.User, error) {
	var user models.User

	row := db.QueryRow(`SELECT id, username, password_hash, display_name, gender, age,
		weight_kg, height_cm, show_age, show_weight, show_height
		FROM users WHERE username = ?`, username)

	var nullName, nullGender sql.NullString

	if err := row.Scan(
		&user.ID, &user.Username,
		&user.PasswordHash,
		&nullName,
		&nullGender,
		&user.Profile.Age,
		&user.Profile.WeightKg,
		&user.Profile.HeightCm,
		&user.Privacy.ShowAge,
		&user.Privacy.ShowWeight,
		&user.Privacy.ShowHeight,
	); err != nil {
		return user, err
	}

	if nullName.Valid {
		user.Profile.DisplayName = nullName.String
	}
	if nullGender.Valid {
		user.Profile.Gender = nullGender.String
	}

	return user, nil
}

func UpdateProfile(userID int, profile models.UserProfile) error {
	_, err := db.Exec(`UPDATE users SET display_name = ?, gender = ?, age = ?, weight_kg = ?, height_cm = ?
		WHERE id = ?`,
		profile.DisplayName, profile.Gender, profile.Age, profile.WeightKg, profile.HeightCm, userID)
	return err
}

func UpdatePrivacy(userID int, privacy models.PrivacySettings) error {
	_, err := db.Exec(`UPDATE users SET show_age = ?, show_weight = ?, show_height = ? WHERE id = ?`,
		privacy.ShowAge, privacy.ShowWeight, privacy.ShowHeight, userID)
	return err
}
