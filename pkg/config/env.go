package config

const (
	EnvPrefix = "ROCKETCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SnapshotDriverMemory   = "memory"
	SnapshotDriverRedis    = "redis"
	SnapshotDriverPostgres = "postgres"
	SnapshotDriverSQLite   = "sqlite"

	EnvAppEnv                  = "ROCKETCART_APP_ENV"
	EnvPort                    = "ROCKETCART_APP_PORT"
	EnvCatalogBaseURL          = "ROCKETCART_CATALOG_BASE_URL"
	EnvSnapshotDriver          = "ROCKETCART_CART_SNAPSHOT_DRIVER"
	EnvSessionIdleTTL          = "ROCKETCART_CART_SESSION_IDLE_TTL"
	EnvDBDSN                   = "ROCKETCART_DB_DSN"
	EnvRedisURL                = "ROCKETCART_REDIS_URL"
	EnvRedisAddr               = "ROCKETCART_REDIS_ADDR"
	EnvGCPProjectID            = "ROCKETCART_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "ROCKETCART_PUBSUB_NOTIFICATION_TOPIC"
)
