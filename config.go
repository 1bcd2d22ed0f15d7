package accesskit

import (
	"github.com/dmitrymomot/accesskit/pkg/config"
	"github.com/dmitrymomot/accesskit/pkg/credential"
	"github.com/dmitrymomot/accesskit/pkg/email"
	"github.com/dmitrymomot/accesskit/pkg/pg"
	"github.com/dmitrymomot/accesskit/pkg/redis"
	"github.com/dmitrymomot/accesskit/pkg/subscription"
	"github.com/dmitrymomot/accesskit/pkg/subscription/paddle"
)

// Refresh token backends accepted by Config.RefreshTokenStore.
const (
	RefreshStorePostgres = "postgres"
	RefreshStoreRedis    = "redis"
)

// Config aggregates the configuration of every component of the Kit.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"accesskit"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFormat   string `env:"LOG_FORMAT"`

	ProductName       string `env:"PRODUCT_NAME" envDefault:"AccessKit"`
	CatalogFile       string `env:"CATALOG_FILE" envDefault:"plans.yaml"`
	RefreshTokenStore string `env:"REFRESH_TOKEN_STORE" envDefault:"postgres"`

	Credential   credential.Config
	Subscription subscription.Config
	Email        email.Config
	Paddle       paddle.Config
	Postgres     pg.Config
	Redis        redis.Config
}

// LoadConfig applies the given .env files, or ./.env when none are given,
// and parses the environment into a Config.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := config.LoadEnv(envFiles...); err != nil {
		return Config{}, err
	}
	return config.Parse[Config]()
}
