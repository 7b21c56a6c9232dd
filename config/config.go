// Package config loads service settings from the environment, with
// development defaults. A .env file in the working directory is read
// first when present.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Port   string
	DBPath string
	Origin string // CORS
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:    getenv("APP_ENV", "dev"),
		Port:   getenv("API_PORT", "8080"),
		DBPath: getenv("DB_PATH", "hstore.db"),
		Origin: getenv("CORS_ORIGIN", "http://localhost:3000"),
	}
}
