package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Gemini      GeminiConfig     `mapstructure:"gemini"`
	ElevenLabs  ElevenLabsConfig `mapstructure:"elevenlabs"`
	Citations   CitationsConfig  `mapstructure:"citations"`
	Processing  ProcessingConfig `mapstructure:"processing"`
	Cleanup     CleanupConfig    `mapstructure:"cleanup"`
	Feed        FeedConfig       `mapstructure:"feed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	PublicURL       string        `mapstructure:"public_url"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	LogQueries bool   `mapstructure:"log_queries"`
}

// StorageConfig contains stitched-audio storage settings.
// Backend is "local" (files under AudioDir, served at /audio) or "s3".
type StorageConfig struct {
	Backend         string        `mapstructure:"backend"`
	AudioDir        string        `mapstructure:"audio_dir"`
	TempDir         string        `mapstructure:"temp_dir"`
	MaxTempAge      time.Duration `mapstructure:"max_temp_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	S3Endpoint        string `mapstructure:"s3_endpoint"`
	S3Region          string `mapstructure:"s3_region"`
	S3Bucket          string `mapstructure:"s3_bucket"`
	S3AccessKeyID     string `mapstructure:"s3_access_key_id"`
	S3SecretAccessKey string `mapstructure:"s3_secret_access_key"`
	S3PublicURL       string `mapstructure:"s3_public_url"`
}

// GeminiConfig contains Gemini API settings for research and script generation
type GeminiConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	ResearchModel string        `mapstructure:"research_model"`
	ScriptModel   string        `mapstructure:"script_model"`
	UtilityModel  string        `mapstructure:"utility_model"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ElevenLabsConfig contains text-to-speech settings
type ElevenLabsConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	ModelID      string        `mapstructure:"model_id"`
	OutputFormat string        `mapstructure:"output_format"`
	VoiceHostA   string        `mapstructure:"voice_host_a"`
	VoiceHostB   string        `mapstructure:"voice_host_b"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CitationsConfig contains source lookup settings
type CitationsConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinInterval time.Duration `mapstructure:"min_interval"`
	SourceName  string        `mapstructure:"source_name"`
}

// ProcessingConfig contains pipeline worker settings
type ProcessingConfig struct {
	Workers       int           `mapstructure:"workers"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	FFmpegPath    string        `mapstructure:"ffmpeg_path"`
	FFprobePath   string        `mapstructure:"ffprobe_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout"`
}

// CleanupConfig contains maintenance scheduling settings
type CleanupConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	JobRetention time.Duration `mapstructure:"job_retention"`
}

// FeedConfig contains RSS feed settings
type FeedConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Link        string `mapstructure:"link"`
	Author      string `mapstructure:"author"`
}
