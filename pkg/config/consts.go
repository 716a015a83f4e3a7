package config

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "trendora"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "TRENDORA_APP_ENV"
	EnvPort   = "TRENDORA_APP_PORT"
	EnvDBDSN  = "TRENDORA_DB_DSN"
	EnvDBHost = "TRENDORA_DB_HOST"
	EnvDBUser = "TRENDORA_DB_USER"
	EnvDBName = "TRENDORA_DB_NAME"
)
