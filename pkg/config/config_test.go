package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	setDefaults()

	assert.Equal(t, 8080, GetInt("server.port"))
	assert.Equal(t, "local", GetString("storage.backend"))
	assert.Equal(t, 500*time.Millisecond, GetDuration("citations.min_interval"))
	assert.Equal(t, "eleven_multilingual_v2", GetString("elevenlabs.model_id"))
	assert.Equal(t, 2, GetInt("processing.workers"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			setup:   func() {},
			wantErr: false,
		},
		{
			name: "invalid port",
			setup: func() {
				viper.Set("server.port", -1)
			},
			wantErr: true,
		},
		{
			name: "unknown storage backend",
			setup: func() {
				viper.Set("storage.backend", "gcs")
			},
			wantErr: true,
		},
		{
			name: "s3 backend requires bucket",
			setup: func() {
				viper.Set("storage.backend", "s3")
				viper.Set("storage.s3_bucket", "")
			},
			wantErr: true,
		},
		{
			name: "s3 backend with bucket",
			setup: func() {
				viper.Set("storage.backend", "s3")
				viper.Set("storage.s3_bucket", "recapsule-audio")
			},
			wantErr: false,
		},
		{
			name: "worker count auto-corrected",
			setup: func() {
				viper.Set("processing.workers", 0)
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			setDefaults()
			tt.setup()

			err := validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Greater(t, GetInt("processing.workers"), 0)
		})
	}
}

func TestConfigStructValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{Backend: "local"},
	}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Processing.Workers)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}
