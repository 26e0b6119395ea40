package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"helios/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Alpaca        AlpacaConfig
	AI            AIConfig
	Redis         RedisConfig
	ErrorTracking ErrorTrackingConfig
	Agents        AgentsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"helios"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type ServerConfig struct {
	Port    int    `envconfig:"HTTP_PORT" default:"8080"`
	Version string `envconfig:"APP_VERSION" default:"dev"`
}

type AlpacaConfig struct {
	APIKey    string `envconfig:"ALPACA_API_KEY"`
	SecretKey string `envconfig:"ALPACA_SECRET_KEY"`
	Paper     bool   `envconfig:"ALPACA_PAPER" default:"true"`

	RequestTimeout    time.Duration `envconfig:"ALPACA_REQUEST_TIMEOUT" default:"10s"`
	RequestsPerMinute int           `envconfig:"ALPACA_REQUESTS_PER_MINUTE" default:"200"`
}

type AIConfig struct {
	OpenAIKey      string        `envconfig:"OPENAI_API_KEY"`
	DefaultModel   string        `envconfig:"DEFAULT_AI_MODEL" default:"gpt-4o"`
	RequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`
}

type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// AgentsConfig bounds a single analysis run.
type AgentsConfig struct {
	MaxIterations int           `envconfig:"AGENTS_MAX_ITERATIONS" default:"10"`
	ModelRetries  int           `envconfig:"AGENTS_MODEL_RETRIES" default:"3"`
	RetryBackoff  time.Duration `envconfig:"AGENTS_RETRY_BACKOFF" default:"500ms"`
	ToolTimeout   time.Duration `envconfig:"AGENTS_TOOL_TIMEOUT" default:"30s"`

	// RejectDuplicates makes agent save fail on an existing name instead of
	// upserting.
	RejectDuplicates bool `envconfig:"AGENTS_REJECT_DUPLICATES" default:"false"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
