package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string   `mapstructure:"PORT"`
	Env          string   `mapstructure:"ENV"`
	DatabaseURL  string   `mapstructure:"DATABASE_URL"`
	DBMaxConns   int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns   int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer   string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL  string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience string   `mapstructure:"AUTH_AUDIENCE"`
	JWTDevKey    string   `mapstructure:"JWT_DEV_KEY"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`

	// Validity analyzer tuning.
	StraightLineRun  int     `mapstructure:"STRAIGHT_LINE_RUN"`
	ZigZagRun        int     `mapstructure:"ZIGZAG_RUN"`
	IncompleteRatio  float64 `mapstructure:"INCOMPLETE_RATIO"`
	MinAnswerSeconds float64 `mapstructure:"MIN_ANSWER_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STRAIGHT_LINE_RUN", 8)
	v.SetDefault("ZIGZAG_RUN", 8)
	v.SetDefault("INCOMPLETE_RATIO", 0.25)
	v.SetDefault("MIN_ANSWER_SECONDS", 1.0)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("JWT_DEV_KEY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("STRAIGHT_LINE_RUN")
	v.BindEnv("ZIGZAG_RUN")
	v.BindEnv("INCOMPLETE_RATIO")
	v.BindEnv("MIN_ANSWER_SECONDS")

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

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside
// development either AUTH_ISSUER (JWKS validation) or JWT_DEV_KEY
// (shared-secret HS256) must be configured so requests are
// authenticated.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" && c.JWTDevKey == "" {
		return fmt.Errorf("AUTH_ISSUER or JWT_DEV_KEY must be set when ENV=%q", c.Env)
	}
	if c.StraightLineRun < 2 {
		return fmt.Errorf("STRAIGHT_LINE_RUN must be at least 2, got %d", c.StraightLineRun)
	}
	if c.ZigZagRun < 2 {
		return fmt.Errorf("ZIGZAG_RUN must be at least 2, got %d", c.ZigZagRun)
	}
	if c.IncompleteRatio < 0 || c.IncompleteRatio > 1 {
		return fmt.Errorf("INCOMPLETE_RATIO must be within [0,1], got %v", c.IncompleteRatio)
	}
	return nil
}
