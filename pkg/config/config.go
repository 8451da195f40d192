package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "refri"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "REFRI_DB_DSN"
	EnvDBHost = "REFRI_DB_HOST"
	EnvDBUser = "REFRI_DB_USER"
	EnvDBName = "REFRI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Inventory    InventoryConfig
	OpenRouter   OpenRouterConfig
	Expiry       ExpiryConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REFRI_APP_ENV" required:"true"`
	Port         string `envconfig:"REFRI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REFRI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REFRI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REFRI_DB_DSN"`
	Driver string `envconfig:"REFRI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REFRI_DB_HOST"`
	LegacyPort     int    `envconfig:"REFRI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REFRI_DB_USER"`
	LegacyPassword string `envconfig:"REFRI_DB_PASSWORD"`
	LegacyName     string `envconfig:"REFRI_DB_NAME"`
	LegacySSLMode  string `envconfig:"REFRI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REFRI_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"REFRI_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"REFRI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REFRI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REFRI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REFRI_REDIS_ADDR"`
	Password     string        `envconfig:"REFRI_REDIS_PASSWORD"`
	DB           int           `envconfig:"REFRI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REFRI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REFRI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REFRI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REFRI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REFRI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"REFRI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"REFRI_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"REFRI_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"REFRI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REFRI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REFRI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REFRI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REFRI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REFRI_ARGON_KEY_LEN" default:"32"`
}

type InventoryConfig struct {
	// HorizonDays is the window ahead of today within which items count as expiring.
	HorizonDays int `envconfig:"REFRI_INVENTORY_HORIZON_DAYS" default:"7"`
}

type OpenRouterConfig struct {
	APIKey         string        `envconfig:"REFRI_OPENROUTER_API_KEY"`
	Model          string        `envconfig:"REFRI_OPENROUTER_MODEL" default:"google/gemini-2.5-flash-lite"`
	BaseURL        string        `envconfig:"REFRI_OPENROUTER_BASE_URL"`
	RequestTimeout time.Duration `envconfig:"REFRI_OPENROUTER_TIMEOUT" default:"30s"`
	Referer        string        `envconfig:"REFRI_OPENROUTER_REFERER" default:"https://refri.app"`
	CacheTTL       time.Duration `envconfig:"REFRI_SUGGESTION_CACHE_TTL" default:"15m"`
}

type ExpiryConfig struct {
	SweepInterval time.Duration `envconfig:"REFRI_EXPIRY_SWEEP_INTERVAL" default:"1h"`
	BatchSize     int           `envconfig:"REFRI_EXPIRY_SWEEP_BATCH_SIZE" default:"200"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REFRI_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
