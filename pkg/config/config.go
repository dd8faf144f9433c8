package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system.
// This should be called once at application startup.
func Init() error {
	once.Do(func() {
		// A local .env is convenient in development; ignore it when absent
		_ = godotenv.Load()

		setDefaults()

		viper.SetEnvPrefix("RECAPSULE")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			// Missing config file is fine, defaults and env vars apply
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct.
// Init() must be called before using this.
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	backend := viper.GetString("storage.backend")
	if backend != "local" && backend != "s3" {
		return fmt.Errorf("invalid storage backend: %q (must be local or s3)", backend)
	}
	if backend == "s3" && viper.GetString("storage.s3_bucket") == "" {
		return fmt.Errorf("storage.s3_bucket is required for the s3 backend")
	}

	if err := validateAPIKeys(); err != nil {
		return err
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	if viper.GetDuration("citations.min_interval") <= 0 {
		viper.Set("citations.min_interval", 500*time.Millisecond)
	}

	return nil
}

// validateAPIKeys validates that API keys are not using placeholder values
func validateAPIKeys() error {
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	placeholders := []string{
		"YOUR_KEY_HERE",
		"YOUR_API_KEY",
		"changeme",
		"CHANGEME",
		"",
	}

	keys := map[string]string{
		"Gemini":     viper.GetString("gemini.api_key"),
		"ElevenLabs": viper.GetString("elevenlabs.api_key"),
	}

	for name, value := range keys {
		for _, placeholder := range placeholders {
			if value == placeholder {
				if isProduction {
					return fmt.Errorf("invalid %s API key: cannot use placeholder values in production", name)
				}
				fmt.Printf("Warning: %s API key is using a placeholder value\n", name)
				break
			}
		}
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.Backend != "local" && c.Storage.Backend != "s3" {
		return fmt.Errorf("invalid storage backend: %q", c.Storage.Backend)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.public_url", "http://localhost:8080")

	// Database defaults
	viper.SetDefault("database.path", "./data/recapsule.db")
	viper.SetDefault("database.log_queries", false)

	// Storage defaults
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.audio_dir", "./data/audio")
	viper.SetDefault("storage.temp_dir", "./data/tmp")
	viper.SetDefault("storage.max_temp_age", 1*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 15*time.Minute)
	viper.SetDefault("storage.s3_region", "us-east-1")

	// Gemini defaults
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gemini.research_model", "gemini-2.5-pro")
	viper.SetDefault("gemini.script_model", "gemini-2.5-pro")
	viper.SetDefault("gemini.utility_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", 2*time.Minute)

	// ElevenLabs defaults
	viper.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io/v1")
	viper.SetDefault("elevenlabs.model_id", "eleven_multilingual_v2")
	viper.SetDefault("elevenlabs.output_format", "mp3_44100_128")
	viper.SetDefault("elevenlabs.voice_host_a", "JBFqnCBsd6RMkjVDRZzb")
	viper.SetDefault("elevenlabs.voice_host_b", "9BWtsMINqrJLrRacOk9x")
	viper.SetDefault("elevenlabs.timeout", 1*time.Minute)

	// Citation lookup defaults
	viper.SetDefault("citations.base_url", "https://www.googleapis.com/books/v1")
	viper.SetDefault("citations.timeout", 10*time.Second)
	viper.SetDefault("citations.min_interval", 500*time.Millisecond)
	viper.SetDefault("citations.source_name", "Google Books")

	// Processing defaults
	viper.SetDefault("processing.workers", 2)
	viper.SetDefault("processing.poll_interval", 2*time.Second)
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.ffmpeg_timeout", 5*time.Minute)

	// Cleanup defaults
	viper.SetDefault("cleanup.enabled", true)
	viper.SetDefault("cleanup.interval", 1*time.Hour)
	viper.SetDefault("cleanup.job_retention", 168*time.Hour)

	// Feed defaults
	viper.SetDefault("feed.title", "Recapsule")
	viper.SetDefault("feed.description", "Generated two-host audio episodes")
	viper.SetDefault("feed.link", "http://localhost:8080")
	viper.SetDefault("feed.author", "Recapsule")
}
