package config

const EnvPrefix = "EFARMAPLUS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"

	CartStoreRedis = "redis"
	CartStoreDB    = "db"
)

const (
	EnvAppEnv          = "EFARMAPLUS_APP_ENV"
	EnvPort            = "EFARMAPLUS_APP_PORT"
	EnvDBDSN           = "EFARMAPLUS_DB_DSN"
	EnvUseSQLite       = "EFARMAPLUS_USE_SQLITE"
	EnvRedisURL        = "EFARMAPLUS_REDIS_URL"
	EnvJWTSecret       = "EFARMAPLUS_JWT_SECRET"
	EnvSessionSecret   = "EFARMAPLUS_SESSION_SECRET"
	EnvCartStore       = "EFARMAPLUS_CART_STORE"
	EnvAPIURL          = "EFARMAPLUS_API_URL"
	EnvStorageDriver   = "EFARMAPLUS_STORAGE_DRIVER"
	EnvS3Bucket        = "EFARMAPLUS_S3_BUCKET"
	EnvS3PublicBaseURL = "EFARMAPLUS_S3_PUBLIC_BASE_URL"
)
