package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            int    `envconfig:"PORT" default:"8080"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL     string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret       string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL  int    `envconfig:"ACCESS_TOKEN_TTL_MINUTES" default:"30"`
	RefreshTokenTTL int    `envconfig:"REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
	BcryptCost      int    `envconfig:"BCRYPT_COST" default:"12"`
	WSWorkers       int    `envconfig:"WS_WORKERS" default:"16"`
	Version         string `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
