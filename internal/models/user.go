package models

// Registered account. PasswordHash never leaves the server.
type User struct {
	ID           int             `json:"-"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Profile      UserProfile     `json:"profile"`
	Privacy      PrivacySettings `json:"privacy"`
}

type UserProfile struct {
	DisplayName string  `json:"display_name"`
	Gender      string  `json:"gender"`
	Age         int     `json:"age"`
	WeightKg    float64 `json:"weight_kg"`
	HeightCm    float64 `json:"height_cm"`
}

// Per-field visibility flags applied when a non-owner views a profile.
// Everything is visible by default on signup.
type PrivacySettings struct {
	ShowAge    bool `json:"show_age"`
	ShowWeight bool `json:"show_weight"`
	ShowHeight bool `json:"show_height"`
}
