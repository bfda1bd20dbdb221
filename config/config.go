package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// Database (optional for the CLI, required for the history server)
	DatabaseURL string

	// Server
	ServerPort string

	// Experiment layout
	WorkDir     string
	MetafileDir string

	// Artifact upload (disabled when empty)
	ArtifactBucket string

	// Remote execution
	RemoteUser    string
	RemotePort    int
	RemoteKeyPath string
	RemoteRoot    string

	// Logging
	LogPath string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		WorkDir:        getEnv("WORK_DIR", "work_dirs"),
		MetafileDir:    getEnv("METAFILE_DIR", "metafiles"),
		ArtifactBucket: getEnv("ARTIFACT_BUCKET", ""),
		RemoteUser:     getEnv("REMOTE_USER", "root"),
		RemotePort:     getEnvInt("REMOTE_PORT", 22),
		RemoteKeyPath:  getEnv("REMOTE_KEY_PATH", ""),
		RemoteRoot:     getEnv("REMOTE_ROOT", "."),
		LogPath:        getEnv("LOG_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
