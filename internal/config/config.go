package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SessionCheckInterval time.Duration `env:"SESSION_CHECK_INTERVAL" envDefault:"1m"`
	AdminIdentifier      string        `env:"ADMIN_IDENTIFIER"`
	AdminPassword        string        `env:"ADMIN_PASSWORD"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDBName string `env:"MONGO_DB_NAME" envDefault:"storefrontdb"`

	ProductsDBPath         string `env:"PRODUCTS_DB_PATH" envDefault:"products.db"`
	ProductsMigrationsPath string `env:"PRODUCTS_MIGRATIONS_PATH" envDefault:"migrations/products"`

	PostgresHost         string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort         int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser         string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword     string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDBName       string `env:"POSTGRES_DB" envDefault:"ordersdb"`
	OrdersMigrationsPath string `env:"ORDERS_MIGRATIONS_PATH" envDefault:"migrations/orders"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
