package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// Backend API
	APIBaseURL     string        `env:"DATALENS_API_BASE_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"DATALENS_REQUEST_TIMEOUT" envDefault:"30s"`

	// Identity provider
	AccessToken     string        `env:"DATALENS_ACCESS_TOKEN"`
	RefreshInterval time.Duration `env:"DATALENS_TOKEN_REFRESH_INTERVAL" envDefault:"10m"`

	// Local state
	StateDir       string `env:"DATALENS_STATE_DIR" envDefault:"data/state"`
	LogFilePath    string `env:"DATALENS_LOG_FILE" envDefault:"logs/datalens.log"`
	TranscriptPath string `env:"DATALENS_TRANSCRIPT_FILE" envDefault:"data/interactions.jsonl"`

	// Dataset preview
	PreviewRows int `env:"DATALENS_PREVIEW_ROWS" envDefault:"10"`

	// Chat
	SuggestionCount int `env:"DATALENS_SUGGESTION_COUNT" envDefault:"4"`

	Debug bool `env:"DATALENS_DEBUG"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
