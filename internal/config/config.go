package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	AuthMode    string   `mapstructure:"AUTH_MODE"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer  string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAud     string   `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Scheduling engine knobs.
	ConflictBufferMinutes   int `mapstructure:"CONFLICT_BUFFER_MINUTES"`
	LockTimeoutMS           int `mapstructure:"LOCK_TIMEOUT_MS"`
	MonitorEarlyIntervalMin int `mapstructure:"MONITOR_EARLY_INTERVAL_MIN"`
	MonitorLateIntervalMin  int `mapstructure:"MONITOR_LATE_INTERVAL_MIN"`
	MonitorEarlyWindowHours int `mapstructure:"MONITOR_EARLY_WINDOW_HOURS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("CONFLICT_BUFFER_MINUTES", 30)
	v.SetDefault("LOCK_TIMEOUT_MS", 2000)
	v.SetDefault("MONITOR_EARLY_INTERVAL_MIN", 15)
	v.SetDefault("MONITOR_LATE_INTERVAL_MIN", 60)
	v.SetDefault("MONITOR_EARLY_WINDOW_HOURS", 24)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("CONFLICT_BUFFER_MINUTES")
	v.BindEnv("LOCK_TIMEOUT_MS")
	v.BindEnv("MONITOR_EARLY_INTERVAL_MIN")
	v.BindEnv("MONITOR_LATE_INTERVAL_MIN")
	v.BindEnv("MONITOR_EARLY_WINDOW_HOURS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active — all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise, the mode is inferred:
//   - ENV=development → "development" (no auth, all requests get admin)
//   - Otherwise       → "external" (Keycloak, Auth0, etc.)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "external"
}

// Validate checks that the configuration is safe to run. In non-development
// modes AUTH_ISSUER must be set so that real JWT authentication is enforced.
// The scheduling knobs must all be positive; a zero conflict buffer or lock
// timeout would silently disable admission safety.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode == "external" && c.AuthIssuer == "" {
		return fmt.Errorf(
			"AUTH_ISSUER must be set when AUTH_MODE is \"external\" (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if mode != "development" && mode != "external" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"external\", got %q", mode)
	}

	if c.ConflictBufferMinutes <= 0 {
		return fmt.Errorf("CONFLICT_BUFFER_MINUTES must be positive, got %d", c.ConflictBufferMinutes)
	}
	if c.LockTimeoutMS <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT_MS must be positive, got %d", c.LockTimeoutMS)
	}
	if c.MonitorEarlyIntervalMin <= 0 || c.MonitorLateIntervalMin <= 0 {
		return fmt.Errorf("monitoring intervals must be positive, got early=%d late=%d",
			c.MonitorEarlyIntervalMin, c.MonitorLateIntervalMin)
	}
	if c.MonitorEarlyWindowHours <= 0 {
		return fmt.Errorf("MONITOR_EARLY_WINDOW_HOURS must be positive, got %d", c.MonitorEarlyWindowHours)
	}

	return nil
}
