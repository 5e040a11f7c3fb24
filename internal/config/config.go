package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Addr          string
	DBPath        string
	JWTSecret     string
	TokenTTLHours int
}

// Load reads .env if present, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using environment only")
	}

	cfg := Config{
		Addr:          getenv("PACETRACK_ADDR", ":8080"),
		DBPath:        getenv("PACETRACK_DB", "./pacetrack.db"),
		JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
		TokenTTLHours: 24,
	}
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			logrus.WithField("value", v).Warn("invalid TOKEN_TTL_HOURS, keeping default")
		} else {
			cfg.TokenTTLHours = n
		}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default_secret_key"
		logrus.Warn("JWT_SECRET_KEY environment variable is not set. Using default key.")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
