package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"DermaNow"`
		Env  string `envconfig:"APP_ENV" default:"dev"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"dermanow"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"false"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET" default:"changeme-secret"`
		Issuer   string        `envconfig:"JWT_ISSUER" default:"dermanow"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"12h"`
	}

	Redis struct {
		Addr    string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		RoleTTL time.Duration `envconfig:"REDIS_ROLE_TTL" default:"10m"`
	}

	Kafka struct {
		Brokers []string `envconfig:"KAFKA_BROKERS"`
		Topic   string   `envconfig:"KAFKA_ORDER_TOPIC" default:"dermanow.order.lifecycle"`
		Group   string   `envconfig:"KAFKA_SETTLEMENT_GROUP" default:"dermanow-settlement"`
		Workers int      `envconfig:"KAFKA_SETTLEMENT_WORKERS" default:"4"`
	}

	Settlement struct {
		DedupTTL time.Duration `envconfig:"SETTLEMENT_DEDUP_TTL" default:"168h"`
	}

	TUI struct {
		Wallet string `envconfig:"TUI_WALLET"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// KafkaEnabled reports whether lifecycle events should go to a broker.
func (c *Config) KafkaEnabled() bool {
	for _, b := range c.Kafka.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}

	return false
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
