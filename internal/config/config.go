package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"console"`
	}

	DB struct {
		Path    string `envconfig:"TALLY_DB_PATH" default:"tally.db"`
		Migrate bool   `envconfig:"TALLY_MIGRATE" default:"true"`
	}

	Import struct {
		InboxDir           string `envconfig:"TALLY_INBOX_DIR" default:"inbox"`
		ArchiveDir         string `envconfig:"TALLY_ARCHIVE_DIR" default:"archive"`
		SettingsFile       string `envconfig:"TALLY_SETTINGS_FILE" default:"tally.toml"`
		TransferWindowDays int    `envconfig:"TALLY_TRANSFER_WINDOW_DAYS" default:"5"`
		PdfToTextPath      string `envconfig:"PDFTOTEXT_PATH" default:"pdftotext"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
		SettingsTTL time.Duration `envconfig:"SETTINGS_TTL" default:"1m"`
	}

	Kafka struct {
		Brokers []string `envconfig:"KAFKA_BROKERS"`
		Topic   string   `envconfig:"KAFKA_TOPIC" default:"tally.imports"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
