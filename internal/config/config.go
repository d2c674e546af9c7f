package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGemini = "gemini"
	BackendClaude = "claude"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr        string
	DBPath            string
	EstimatorBackend  string
	EstimatorLanguage string
	GeminiAPIKey      string
	GeminiModel       string
	ClaudeAPIKey      string
	ClaudeModel       string
	OllamaHost        string
	OllamaModel       string
	PhotoPath         string
	TimeZone          string
	LogLevel          string
	LogFile           string
}

// Load reads the configuration from the environment. Variables missing from
// the environment are taken from envFiles when given, else from ./.env if it
// exists. Values already in the environment always win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "/data/nutriscan.db"),
		EstimatorBackend:  getEnv("ESTIMATOR_BACKEND", BackendGemini),
		EstimatorLanguage: getEnv("ESTIMATOR_LANGUAGE", "Polish"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llava"),
		PhotoPath:         getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		TimeZone:          getEnv("TZ", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}, nil
}

// Validate checks that the selected estimator backend can be built.
func (c *Config) Validate() error {
	switch c.EstimatorBackend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini backend")
		}
	case BackendClaude:
		if c.ClaudeAPIKey == "" {
			return errors.New("CLAUDE_API_KEY is required for the claude backend")
		}
	case BackendOllama:
		if c.OllamaHost == "" {
			return errors.New("OLLAMA_HOST is required for the ollama backend")
		}
	default:
		return fmt.Errorf("unknown ESTIMATOR_BACKEND %q", c.EstimatorBackend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the time zone that decides which calendar day "today" is.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
