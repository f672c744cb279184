package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Delivery      DeliveryConfig
	Orders        OrdersConfig
	SMTP          SMTPConfig
	Company       CompanyConfig
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
	Env          string `envconfig:"NIMBASHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"NIMBASHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NIMBASHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NIMBASHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"NIMBASHOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"NIMBASHOP_DB_DSN"`
	Driver string `envconfig:"NIMBASHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NIMBASHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"NIMBASHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NIMBASHOP_DB_USER"`
	LegacyPassword string `envconfig:"NIMBASHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"NIMBASHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"NIMBASHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NIMBASHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NIMBASHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NIMBASHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NIMBASHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NIMBASHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NIMBASHOP_REDIS_ADDR"`
	Password     string        `envconfig:"NIMBASHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"NIMBASHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NIMBASHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NIMBASHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NIMBASHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NIMBASHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NIMBASHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NIMBASHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NIMBASHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"NIMBASHOP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"NIMBASHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NIMBASHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NIMBASHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NIMBASHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NIMBASHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NIMBASHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"NIMBASHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"NIMBASHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"NIMBASHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"NIMBASHOP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"NIMBASHOP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"NIMBASHOP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NIMBASHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NIMBASHOP_AUTO_MIGRATE" default:"false"`
}

type DeliveryConfig struct {
	FlatFee  string `envconfig:"NIMBASHOP_DELIVERY_FLAT_FEE" default:"15000"`
	Currency string `envconfig:"NIMBASHOP_CURRENCY" default:"GNF"`
}

// Fee parses the configured flat delivery fee; a malformed value falls
// back to zero rather than failing startup.
func (d DeliveryConfig) Fee() decimal.Decimal {
	fee, err := decimal.NewFromString(d.FlatFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

type OrdersConfig struct {
	NumberPrefix     string        `envconfig:"NIMBASHOP_ORDER_NUMBER_PREFIX" default:"CMD"`
	LowStockInterval time.Duration `envconfig:"NIMBASHOP_LOW_STOCK_SCAN_INTERVAL" default:"15m"`
}

type SMTPConfig struct {
	Host        string `envconfig:"NIMBASHOP_SMTP_HOST"`
	Port        int    `envconfig:"NIMBASHOP_SMTP_PORT" default:"587"`
	Username    string `envconfig:"NIMBASHOP_SMTP_USERNAME"`
	Password    string `envconfig:"NIMBASHOP_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"NIMBASHOP_SMTP_FROM_EMAIL"`
}

// Enabled reports whether outbound email is configured at all.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.DefaultFrom != ""
}

type CompanyConfig struct {
	Name    string `envconfig:"NIMBASHOP_COMPANY_NAME" default:"NimbaShop"`
	Address string `envconfig:"NIMBASHOP_COMPANY_ADDRESS" default:"Conakry, Guinée"`
	Phone   string `envconfig:"NIMBASHOP_COMPANY_PHONE" default:""`
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
