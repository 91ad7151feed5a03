package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Orders       OrdersConfig
	Idempotency  IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"YUMHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"YUMHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"YUMHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"YUMHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"YUMHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"YUMHUB_DB_DSN"`
	Driver string `envconfig:"YUMHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"YUMHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"YUMHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"YUMHUB_DB_USER"`
	LegacyPassword string `envconfig:"YUMHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"YUMHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"YUMHUB_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"YUMHUB_SQLITE_PATH" default:"yumhub.db"`

	MaxOpenConns    int           `envconfig:"YUMHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"YUMHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"YUMHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"YUMHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"YUMHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"YUMHUB_REDIS_ADDR"`
	Password     string        `envconfig:"YUMHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"YUMHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"YUMHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"YUMHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"YUMHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"YUMHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"YUMHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"YUMHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"YUMHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"YUMHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the configured access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"YUMHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"YUMHUB_AUTO_MIGRATE" default:"false"`
}

// CartConfig tunes the cart cache and its reconciliation sweep.
type CartConfig struct {
	// CacheTTL of zero keeps cart snapshots until they are overwritten or cleared.
	CacheTTL          time.Duration `envconfig:"YUMHUB_CART_CACHE_TTL" default:"0s"`
	ReconcileInterval time.Duration `envconfig:"YUMHUB_CART_RECONCILE_INTERVAL" default:"15m"`
	ReconcileLockTTL  time.Duration `envconfig:"YUMHUB_CART_RECONCILE_LOCK_TTL" default:"14m"`
}

func (c CartConfig) validate() error {
	if c.CacheTTL < 0 {
		return fmt.Errorf("%s must not be negative", EnvCartCacheTTL)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartReconcileInterval)
	}
	if c.ReconcileLockTTL <= 0 || c.ReconcileLockTTL >= c.ReconcileInterval {
		return fmt.Errorf("%s must be positive and shorter than %s", EnvCartReconcileLockTTL, EnvCartReconcileInterval)
	}
	return nil
}

type OrdersConfig struct {
	RefundWindow       time.Duration `envconfig:"YUMHUB_ORDERS_REFUND_WINDOW" default:"5m"`
	RefundPollInterval time.Duration `envconfig:"YUMHUB_ORDERS_REFUND_POLL_INTERVAL" default:"2s"`
	RefundBatchSize    int           `envconfig:"YUMHUB_ORDERS_REFUND_BATCH_SIZE" default:"50"`
	RefundRetryBackoff time.Duration `envconfig:"YUMHUB_ORDERS_REFUND_RETRY_BACKOFF" default:"30s"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"YUMHUB_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite || db.DSN != "" {
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
