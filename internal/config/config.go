package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the backend origin used when ESTATLY_API_URL is unset
const DefaultAPIURL = "http://localhost:8080"

// Config holds all configuration for the application
type Config struct {
	// API Configuration
	API APIConfig

	// Session Configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig

	// Development backend configuration
	DevServer DevServerConfig
}

// APIConfig holds the backend origin
type APIConfig struct {
	URL string
}

// SessionConfig selects where the session credential is persisted
type SessionConfig struct {
	Store string // keyring, memory
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// DevServerConfig holds the local fake backend configuration
type DevServerConfig struct {
	Addr          string
	DatabaseURL   string
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	apiURL := strings.TrimRight(getenv("ESTATLY_API_URL", DefaultAPIURL), "/")

	return &Config{
		API: APIConfig{
			URL: apiURL,
		},
		Session: SessionConfig{
			Store: strings.ToLower(getenv("ESTATLY_SESSION_STORE", "keyring")),
		},
		Logging: LoggingConfig{
			// CLI output goes to the terminal, so stay quiet unless asked
			Level:  getenv("LOG_LEVEL", "warn"),
			Format: getenv("LOG_FORMAT", "console"),
		},
		DevServer: DevServerConfig{
			Addr:          getenv("DEVSERVER_ADDR", ":8080"),
			DatabaseURL:   getenv("DEVSERVER_DATABASE_URL", "file::memory:?cache=shared"),
			JWTSecret:     os.Getenv("DEVSERVER_JWT_SECRET"),
			AdminEmail:    getenv("DEVSERVER_ADMIN_EMAIL", "admin@estatly.local"),
			AdminPassword: getenv("DEVSERVER_ADMIN_PASSWORD", "admin123"),
		},
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
