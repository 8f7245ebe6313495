package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "littlethreads"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LITTLETHREADS_DB_DSN"
	EnvDBHost = "LITTLETHREADS_DB_HOST"
	EnvDBUser = "LITTLETHREADS_DB_USER"
	EnvDBName = "LITTLETHREADS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	SMTP         SMTPConfig
	Shop         ShopConfig
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
	if err := cfg.Shop.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LITTLETHREADS_APP_ENV" required:"true"`
	Port         string `envconfig:"LITTLETHREADS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LITTLETHREADS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LITTLETHREADS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LITTLETHREADS_DB_DSN"`
	Driver string `envconfig:"LITTLETHREADS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LITTLETHREADS_DB_HOST"`
	LegacyPort     int    `envconfig:"LITTLETHREADS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LITTLETHREADS_DB_USER"`
	LegacyPassword string `envconfig:"LITTLETHREADS_DB_PASSWORD"`
	LegacyName     string `envconfig:"LITTLETHREADS_DB_NAME"`
	LegacySSLMode  string `envconfig:"LITTLETHREADS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LITTLETHREADS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LITTLETHREADS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LITTLETHREADS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LITTLETHREADS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LITTLETHREADS_REDIS_URL"`
	Address      string        `envconfig:"LITTLETHREADS_REDIS_ADDR"`
	Password     string        `envconfig:"LITTLETHREADS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LITTLETHREADS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LITTLETHREADS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LITTLETHREADS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LITTLETHREADS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LITTLETHREADS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LITTLETHREADS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether any redis endpoint was supplied. The API runs
// without redis; only checkout idempotency replay depends on it.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type SMTPConfig struct {
	Host        string        `envconfig:"LITTLETHREADS_SMTP_HOST"`
	Port        int           `envconfig:"LITTLETHREADS_SMTP_PORT" default:"587"`
	Username    string        `envconfig:"LITTLETHREADS_SMTP_USERNAME"`
	Password    string        `envconfig:"LITTLETHREADS_SMTP_PASSWORD"`
	FromAddress string        `envconfig:"LITTLETHREADS_SMTP_FROM"`
	SendTimeout time.Duration `envconfig:"LITTLETHREADS_SMTP_SEND_TIMEOUT" default:"10s"`
}

// Enabled reports whether outbound mail is configured. Checkout treats an
// unconfigured mailer as a logged no-op.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.FromAddress != ""
}

type ShopConfig struct {
	// InventoryMode selects the variant schema generation: "size" tracks
	// stock per size only, "color_size" per color and size. One mode is
	// active per deployment.
	InventoryMode string `envconfig:"LITTLETHREADS_INVENTORY_MODE" default:"color_size"`
}

func (s ShopConfig) validate() error {
	switch s.InventoryMode {
	case "size", "color_size":
		return nil
	}
	return fmt.Errorf("invalid LITTLETHREADS_INVENTORY_MODE %q (expected size or color_size)", s.InventoryMode)
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LITTLETHREADS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == "sqlite" {
		db.DSN = "file:littlethreads.db?cache=shared"
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
