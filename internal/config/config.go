package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string // sqlite|postgres
	DBDSN    string

	AuthHMACSecret string

	LogLevel  string
	LogPretty bool

	CORSOrigins []string

	// NumericTolerance < 0 keeps short answers on exact matching.
	NumericTolerance float64

	ShutdownTimeout time.Duration
}

// Load reads a .env file from the working directory, if there is one, and
// then builds the config from the environment. Variables already set in
// the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	tol := -1.0
	if v := os.Getenv("GRADING_NUMERIC_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, errors.New("config: GRADING_NUMERIC_TOLERANCE must be a non-negative number")
		}
		tol = f
	}
	shutdown, err := time.ParseDuration(envOr("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, errors.New("config: SHUTDOWN_TIMEOUT: " + err.Error())
	}
	return Config{
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		DBDriver:         envOr("DB_DRIVER", "sqlite"),
		DBDSN:            envOr("DB_DSN", ""),
		AuthHMACSecret:   envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		LogPretty:        envBool("LOG_PRETTY", true),
		CORSOrigins:      csvOr("CORS_ORIGINS", "http://localhost:3000"),
		NumericTolerance: tol,
		ShutdownTimeout:  shutdown,
	}, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
