package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/schemasmith-inc/schemasmith-engine/pkg/models"
)

// Config holds all configuration for schemasmith-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// OutputRoot is the directory generated schema and seed artifacts are
	// written under.
	OutputRoot string `yaml:"output_root" env:"OUTPUT_ROOT" env-default:"generated"`

	// Generation defaults applied when a request leaves them unset.
	Generation GenerationConfig `yaml:"generation"`

	// AI holds the optional insights-enrichment model settings.
	AI AIConfig `yaml:"ai"`

	// Validator holds the optional external schema validator settings.
	Validator ValidatorConfig `yaml:"validator"`
}

// GenerationConfig holds per-run defaults for schema generation.
type GenerationConfig struct {
	// Provider is the default target database engine.
	Provider string `yaml:"provider" env:"GENERATION_PROVIDER" env-default:"postgresql"`
	// OutputTarget is the default schema artifact path relative to OutputRoot.
	OutputTarget string `yaml:"output_target" env:"GENERATION_OUTPUT_TARGET" env-default:"schema.prisma"`
	// IncludeSeeds emits a seed script alongside the schema when set.
	IncludeSeeds bool `yaml:"include_seeds" env:"GENERATION_INCLUDE_SEEDS" env-default:"false"`
}

// AIConfig holds settings for the insights-enrichment model. Insights fall
// back to the rule-based provider when no API key is configured.
type AIConfig struct {
	// Provider selects the client: "openai" (any OpenAI-compatible
	// endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:""`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:""`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// IsAvailable returns true if insights enrichment is configured.
func (c *AIConfig) IsAvailable() bool {
	return c.APIKey != "" && c.Model != ""
}

// ValidatorConfig holds settings for the external schema validator.
type ValidatorConfig struct {
	Endpoint       string `yaml:"endpoint" env:"VALIDATOR_ENDPOINT" env-default:""`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"VALIDATOR_TIMEOUT_SECONDS" env-default:"10"`
}

// IsAvailable returns true if an external validator is configured.
func (c *ValidatorConfig) IsAvailable() bool {
	return c.Endpoint != ""
}

// Timeout returns the per-call validator timeout.
func (c *ValidatorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. The file is optional; without it configuration comes from the
// environment alone. The version parameter is injected at build time and
// set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if !models.Provider(cfg.Generation.Provider).IsValid() {
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Generation.Provider)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}
