package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/speechcare/clinic-api/internal/analysis"
	"github.com/speechcare/clinic-api/internal/repository/postgres"
	"github.com/speechcare/clinic-api/internal/service/notify"
	"github.com/speechcare/clinic-api/pkg/messaging/redis"
	"github.com/speechcare/clinic-api/pkg/validator"
)

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" validate:"required"`
	ExpiryHours int    `mapstructure:"expiry_hours" validate:"required"`
}

type ArtifactConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

type RedisConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	redis.Config `mapstructure:",squash"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CacheConfig struct {
	UserTTL time.Duration `mapstructure:"user_ttl"`
}

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Database  postgres.Config           `mapstructure:"database"`
	JWT       JWTConfig                 `mapstructure:"jwt"`
	Engine    analysis.SubprocessConfig `mapstructure:"engine"`
	Artifacts ArtifactConfig            `mapstructure:"artifacts"`
	Redis     RedisConfig               `mapstructure:"redis"`
	SMTP      notify.Config             `mapstructure:"smtp"`
	RateLimit RateLimitConfig           `mapstructure:"rate_limit"`
	Cache     CacheConfig               `mapstructure:"cache"`
}

// envOverrides carries the secrets that should never live in config.yaml.
// Read via envconfig with the CLINIC prefix, e.g. CLINIC_DB_PASSWORD.
type envOverrides struct {
	DBPassword    string `envconfig:"DB_PASSWORD"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	RedisURL      string `envconfig:"REDIS_URL"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	EngineCommand string `envconfig:"ENGINE_COMMAND"`
	EngineScript  string `envconfig:"ENGINE_SCRIPT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("clinic", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if env.DBPassword != "" {
		cfg.Database.Password = env.DBPassword
	}
	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.SMTPPassword != "" {
		cfg.SMTP.Password = env.SMTPPassword
	}
	if env.EngineCommand != "" {
		cfg.Engine.Command = env.EngineCommand
	}
	if env.EngineScript != "" {
		cfg.Engine.Script = env.EngineScript
	}

	if err := validator.New().Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
