package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bormonoff/Auth-Service/pkg/httpx"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the process configuration. Every key can be set from the
// environment, an optional .env file or the file named by AUTH_CONFIG_FILE.
type Config struct {
	Env       string `mapstructure:"ENV"`        // dev, staging, prod (default: dev)
	LogLevel  string `mapstructure:"LOG_LEVEL"`  // debug, info, warn, error (default: info)
	LogFormat string `mapstructure:"LOG_FORMAT"` // json, text (default: json)
	Port      int    `mapstructure:"PORT"`       // HTTP port (default: 8080)

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // sqlite or postgres (default: sqlite)
	DatabaseURL    string `mapstructure:"DATABASE_URL"`    // sqlite path/URI or postgres:// URL
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`

	// JWTSecret signs every token. Required.
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	LoginPattern    string        `mapstructure:"LOGIN_PATTERN"`
	PepperFile      string        `mapstructure:"PEPPER_FILE"`

	AdminRole              string `mapstructure:"ADMIN_ROLE"`
	BootstrapAdminLogin    string `mapstructure:"BOOTSTRAP_ADMIN_LOGIN"`
	BootstrapAdminPassword string `mapstructure:"BOOTSTRAP_ADMIN_PASSWORD"`
	BootstrapAdminEmail    string `mapstructure:"BOOTSTRAP_ADMIN_EMAIL"`

	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"`
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`

	// RateLimits is overridden with RATELIMIT_<PROFILE>_<FIELD>, e.g.
	// RATELIMIT_STRICT_REQUESTS=10.
	RateLimits httpx.RateLimitProfiles `mapstructure:"RATELIMIT"`
}

// LoadConfig reads .env (if present), then the optional AUTH_CONFIG_FILE,
// then the environment, and validates the result. Environment variables win.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("AUTH_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)

	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_URL", "file:auth.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "auth:revoked:")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", time.Hour)
	v.SetDefault("REFRESH_TOKEN_TTL", 240*time.Hour)
	v.SetDefault("LOGIN_PATTERN", `^[A-Za-z0-9]{3,50}$`)
	v.SetDefault("PEPPER_FILE", "/var/lib/auth/pepper")

	v.SetDefault("ADMIN_ROLE", "admin")
	v.SetDefault("BOOTSTRAP_ADMIN_LOGIN", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")

	v.SetDefault("HOUSEKEEPING_INTERVAL", time.Hour)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second)

	// Nested keys must be known to viper before AutomaticEnv can fill them.
	limits := httpx.DefaultRateLimitProfiles()
	for name, p := range map[string]httpx.RateLimitConfig{
		"strict":   limits.Strict,
		"moderate": limits.Moderate,
		"lenient":  limits.Lenient,
	} {
		v.SetDefault("RATELIMIT."+name+".requests", p.Requests)
		v.SetDefault("RATELIMIT."+name+".window", p.Window)
		v.SetDefault("RATELIMIT."+name+".burst", p.Burst)
	}
}

// Validate reports the first setting that would keep the service from
// starting.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("config: ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return errors.New("config: REFRESH_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return errors.New("config: REFRESH_TOKEN_TTL must not be shorter than ACCESS_TOKEN_TTL")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	if c.RedisAddr == "" {
		return errors.New("config: REDIS_ADDR must be set")
	}

	if _, err := regexp.Compile(c.LoginPattern); err != nil {
		return fmt.Errorf("config: LOGIN_PATTERN: %w", err)
	}
	if c.AdminRole == "" {
		return errors.New("config: ADMIN_ROLE must be set")
	}
	if c.BootstrapAdminLogin != "" && c.BootstrapAdminPassword == "" {
		return errors.New("config: BOOTSTRAP_ADMIN_PASSWORD must be set with BOOTSTRAP_ADMIN_LOGIN")
	}

	for name, p := range map[string]httpx.RateLimitConfig{
		"STRICT":   c.RateLimits.Strict,
		"MODERATE": c.RateLimits.Moderate,
		"LENIENT":  c.RateLimits.Lenient,
	} {
		if p.Requests <= 0 || p.Window <= 0 {
			return fmt.Errorf("config: RATELIMIT_%s needs positive REQUESTS and WINDOW", name)
		}
	}
	return nil
}

// LoginRegexp compiles LoginPattern. Call after Validate.
func (c Config) LoginRegexp() *regexp.Regexp {
	return regexp.MustCompile(c.LoginPattern)
}
