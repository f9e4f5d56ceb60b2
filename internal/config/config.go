package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // Empty disables Postgres roots entirely
	CORSOrigins string
	RootsFile   string
	TablePrefix string
	// External search tooling
	GrepBin    string
	PDFGrepBin string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		RootsFile:   getEnv("ROOTS_FILE", "roots.yaml"),
		TablePrefix: getTablePrefix(env),
		GrepBin:     getEnv("GREP_BIN", "grep"),
		PDFGrepBin:  getEnv("PDFGREP_BIN", "pdfgrep"),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
