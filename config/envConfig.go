package config

import (
	"os"

	"github.com/joho/godotenv"
)

var _ = godotenv.Load(".env")

// db variables
var (
	POSTGRES_DB       = getEnv("POSTGRES_DB", "postgres")
	POSTGRES_USER     = getEnv("POSTGRES_USER", "postgres")
	POSTGRES_PASSWORD = os.Getenv("POSTGRES_PASSWORD")
	POSTGRES_HOST     = getEnv("POSTGRES_HOST", "localhost")
)

// external API endpoints; none of these change ingestion behavior, only connectivity
var (
	NEWS_API_URL = getEnv("NEWS_API_URL", "https://newsapi.org/v2")
	SCORER_URL   = getEnv("SCORER_URL", "http://localhost:8000")
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
