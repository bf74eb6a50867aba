package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by the kiosk.
	EnvPrefix = "kioskeats"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Pin          PinConfig
	PinRateLimit PinRateLimitConfig
	Session      SessionConfig
	GloriaFood   GloriaFoodConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KIOSKEATS_APP_ENV" default:"dev"`
	Port         string `envconfig:"KIOSKEATS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KIOSKEATS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KIOSKEATS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig points at the on-device SQLite file holding the menu library.
type DBConfig struct {
	Path        string        `envconfig:"KIOSKEATS_DB_PATH" default:"kioskeats.db"`
	BusyTimeout time.Duration `envconfig:"KIOSKEATS_DB_BUSY_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KIOSKEATS_REDIS_URL"`
	Address      string        `envconfig:"KIOSKEATS_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"KIOSKEATS_REDIS_PASSWORD"`
	DB           int           `envconfig:"KIOSKEATS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KIOSKEATS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KIOSKEATS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KIOSKEATS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KIOSKEATS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KIOSKEATS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KIOSKEATS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KIOSKEATS_JWT_ISSUER" default:"kioskeats"`
	ExpirationMinutes int    `envconfig:"KIOSKEATS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// PinConfig carries the Argon2id hash of the back-office PIN plus the
// hashing parameters embedded into freshly minted hashes.
type PinConfig struct {
	Hash             string `envconfig:"KIOSKEATS_PIN_HASH" required:"true"`
	ArgonMemoryKB    int    `envconfig:"KIOSKEATS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int    `envconfig:"KIOSKEATS_ARGON_TIME" default:"3"`
	ArgonParallelism int    `envconfig:"KIOSKEATS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int    `envconfig:"KIOSKEATS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int    `envconfig:"KIOSKEATS_ARGON_KEY_LEN" default:"32"`
}

type PinRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"KIOSKEATS_PIN_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"KIOSKEATS_PIN_RATE_LIMIT_LOGIN_IP_LIMIT" default:"5"`
}

// SessionConfig governs how long an abandoned kiosk session is retained.
type SessionConfig struct {
	TTL time.Duration `envconfig:"KIOSKEATS_SESSION_TTL" default:"2h"`
}

type GloriaFoodConfig struct {
	BaseURL string        `envconfig:"KIOSKEATS_GLORIAFOOD_URL" default:"https://pos.globalfoodsoft.com/pos/menu"`
	Timeout time.Duration `envconfig:"KIOSKEATS_GLORIAFOOD_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate         bool `envconfig:"KIOSKEATS_AUTO_MIGRATE" default:"true"`
	EnforceMinSelection bool `envconfig:"KIOSKEATS_ENFORCE_MIN_SELECTION" default:"false"`
}
