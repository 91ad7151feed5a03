package config

const EnvPrefix = "YUMHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "YUMHUB_APP_ENV"
	EnvPort     = "YUMHUB_APP_PORT"
	EnvLogLevel = "YUMHUB_LOG_LEVEL"

	EnvDBDSN  = "YUMHUB_DB_DSN"
	EnvDBHost = "YUMHUB_DB_HOST"
	EnvDBUser = "YUMHUB_DB_USER"
	EnvDBName = "YUMHUB_DB_NAME"

	EnvRedisURL = "YUMHUB_REDIS_URL"

	EnvJWTSecret = "YUMHUB_JWT_SECRET"
	EnvJWTIssuer = "YUMHUB_JWT_ISSUER"

	EnvUseSQLite = "YUMHUB_USE_SQLITE"

	EnvCartCacheTTL          = "YUMHUB_CART_CACHE_TTL"
	EnvCartReconcileInterval = "YUMHUB_CART_RECONCILE_INTERVAL"
	EnvCartReconcileLockTTL  = "YUMHUB_CART_RECONCILE_LOCK_TTL"

	EnvOrdersRefundWindow = "YUMHUB_ORDERS_REFUND_WINDOW"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
