package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	pkgconfig "github.com/Skotchmaster/shopdb/pkg/config"
	"github.com/Skotchmaster/shopdb/pkg/db"
)

type Config struct {
	Env         string `env:"APP_ENV" env-default:"development"`
	ServiceName string `env:"SERVICE_NAME" env-default:"shopdb"`
	Version     string `env:"APP_VERSION" env-default:"1.0.0"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	Port        int    `env:"PORT" env-default:"3000"`

	Database DatabaseConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Search   SearchConfig
	Redis    RedisConfig
	Limits   RateLimitConfig

	LowStockCron   string `env:"LOW_STOCK_CRON" env-default:"@every 10m"`
	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER" env-default:"postgres"`
	URL         string `env:"DATABASE_URL"`
	Host        string `env:"DB_HOST" env-default:"localhost"`
	Port        int    `env:"DB_PORT" env-default:"5432"`
	User        string `env:"DB_USERNAME" env-default:"postgres"`
	Password    string `env:"DB_PASSWORD"`
	Name        string `env:"DB_DATABASE" env-default:"shopdb"`
	SSLMode     string `env:"DB_SSLMODE" env-default:"disable"`
	AutoMigrate string `env:"DB_AUTO_MIGRATE"`
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET" env-required:"true"`
	AccessTTL time.Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	// GuardAdmin puts batch and balance operations behind an admin token.
	GuardAdmin bool `env:"JWT_GUARD_ADMIN" env-default:"false"`
}

type KafkaConfig struct {
	Brokers string `env:"KAFKA_BROKERS"`
}

type SearchConfig struct {
	URL      string `env:"ES_URL"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX" env-default:"products"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	TTL      time.Duration `env:"CACHE_TTL" env-default:"1m"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"50"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"100"`
}

func Load(envFiles ...string) (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(&cfg, envFiles...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL assembled from
// the DB_* parts. The sqlite driver takes DATABASE_URL verbatim.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == db.DriverSQLite {
		return "file::memory:"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// ShouldAutoMigrate mirrors schema synchronisation in development unless
// DB_AUTO_MIGRATE says otherwise.
func (c *Config) ShouldAutoMigrate() bool {
	if v, err := strconv.ParseBool(c.Database.AutoMigrate); err == nil {
		return v
	}
	return c.Env == "development" || c.Env == "local" || c.Database.Driver == db.DriverSQLite
}

// SecureCookies reports whether auth cookies must only travel over HTTPS.
func (c *Config) SecureCookies() bool {
	return c.Env == "production"
}

func (c *Config) KafkaBrokers() []string {
	return pkgconfig.CSV(c.Kafka.Brokers)
}
