package config

const (
	EnvPrefix = "AFRIFOOD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBusLocal  = "local"
	StoreBusRedis  = "redis"
	StoreBusPubSub = "pubsub"
)

const (
	EnvAppEnv   = "AFRIFOOD_APP_ENV"
	EnvPort     = "AFRIFOOD_APP_PORT"
	EnvDBDSN    = "AFRIFOOD_DB_DSN"
	EnvDBDriver = "AFRIFOOD_DB_DRIVER"
	EnvDBHost   = "AFRIFOOD_DB_HOST"
	EnvDBUser   = "AFRIFOOD_DB_USER"
	EnvDBName   = "AFRIFOOD_DB_NAME"

	EnvRedisURL  = "AFRIFOOD_REDIS_URL"
	EnvJWTSecret = "AFRIFOOD_JWT_SECRET"

	EnvStoreBus           = "AFRIFOOD_STORE_BUS"
	EnvPubSubChangesTopic = "AFRIFOOD_PUBSUB_CHANGES_TOPIC"
	EnvPubSubChangesSub   = "AFRIFOOD_PUBSUB_CHANGES_SUBSCRIPTION"

	EnvDashboardTimezone = "AFRIFOOD_DASHBOARD_TIMEZONE"
	EnvCORSOrigins       = "AFRIFOOD_CORS_ALLOWED_ORIGINS"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
