package config

// EnvPrefix is the envconfig prefix for every variable the service reads.
const EnvPrefix = "NIMBASHOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "NIMBASHOP_APP_ENV"
	EnvPort       = "NIMBASHOP_APP_PORT"
	EnvDBDSN      = "NIMBASHOP_DB_DSN"
	EnvDBHost     = "NIMBASHOP_DB_HOST"
	EnvDBUser     = "NIMBASHOP_DB_USER"
	EnvDBName     = "NIMBASHOP_DB_NAME"
	EnvRedisURL   = "NIMBASHOP_REDIS_URL"
	EnvJWTSecret  = "NIMBASHOP_JWT_SECRET"
	EnvJWTIssuer  = "NIMBASHOP_JWT_ISSUER"
	EnvJWTExpMins = "NIMBASHOP_JWT_EXPIRATION_MINUTES"

	EnvRefreshTokenTTLMinutes = "NIMBASHOP_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
