package config

const (
	EnvPrefix = "SHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "SHOP_APP_ENV"
	EnvPort              = "SHOP_APP_PORT"
	EnvDBDSN             = "SHOP_DB_DSN"
	EnvDBHost            = "SHOP_DB_HOST"
	EnvDBUser            = "SHOP_DB_USER"
	EnvDBName            = "SHOP_DB_NAME"
	EnvRedisURL          = "SHOP_REDIS_URL"
	EnvJWTSecret         = "SHOP_JWT_SECRET"
	EnvJWTIssuer         = "SHOP_JWT_ISSUER"
	EnvJWTExpMins        = "SHOP_JWT_EXPIRATION_MINUTES"
	EnvSessionCookieMode = "SHOP_SESSION_COOKIE_MODE"
	EnvCartMaxQuantity   = "SHOP_CART_MAX_QUANTITY"
	EnvCORSOrigins       = "SHOP_CORS_ALLOWED_ORIGINS"
)

// cartQuantityCeiling matches the cart_items quantity CHECK constraint.
const cartQuantityCeiling = 100

var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
