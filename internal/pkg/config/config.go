package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Feed settings. The polisen.se open-data rules require an identifying
	// User-Agent with contact details and at least 10s between calls.
	FeedURL         string        `env:"POLISEN_API_URL" envDefault:"https://polisen.se/api/events"`
	FeedTimeout     time.Duration `env:"FEED_TIMEOUT" envDefault:"30s"`
	FeedMinInterval time.Duration `env:"FEED_MIN_INTERVAL" envDefault:"10s"`
	UserAgent       string        `env:"API_USER_AGENT"`
	ContactEmail    string        `env:"API_CONTACT_EMAIL" envDefault:"your-email@example.com"`

	// Object storage settings. Region defaults to Stockholm for data
	// residency; the vault may live in a different region.
	Namespace  string `env:"OCI_NAMESPACE,required"`
	BucketName string `env:"OCI_BUCKET_NAME" envDefault:"polisen-events-collector"`
	Region     string `env:"OCI_REGION" envDefault:"eu-stockholm-1"`

	// Credential resolution settings.
	UseVault             bool   `env:"USE_VAULT" envDefault:"true"`
	UseInstancePrincipal bool   `env:"USE_INSTANCE_PRINCIPAL" envDefault:"false"`
	OCIProfile           string `env:"OCI_PROFILE" envDefault:"DEFAULT"`
	VaultName            string `env:"OCI_VAULT_NAME"`
	VaultRegion          string `env:"OCI_VAULT_REGION" envDefault:"eu-frankfurt-1"`
	VaultCompartmentID   string `env:"OCI_VAULT_COMPARTMENT_ID"`

	SeenIDCapacity int `env:"SEEN_ID_CAPACITY" envDefault:"1000"`

	// Metrics are optional: push for cron-style one-shot runs, scrape
	// endpoint for interval mode.
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
	MetricsAddr    string `env:"METRICS_ADDR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fmt.Sprintf("PolisenEventsCollector/1.0 (Data Collection for ML Analysis; Contact: %s)", cfg.ContactEmail)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.FeedURL, "https://") {
		return fmt.Errorf("POLISEN_API_URL must use https, got %q", c.FeedURL)
	}
	if c.UseVault {
		if c.VaultName == "" {
			return errors.New("OCI_VAULT_NAME is required when USE_VAULT is enabled")
		}
		if c.VaultCompartmentID == "" {
			return errors.New("OCI_VAULT_COMPARTMENT_ID is required when USE_VAULT is enabled")
		}
	}
	return nil
}
