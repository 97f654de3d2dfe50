package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server reads from the environment.
// DB_DSN and JWT_SECRET have no sane defaults, so startup fails fast
// without them.
type Config struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	DatabaseDSN string        `envconfig:"DB_DSN" required:"true"`
	RedisAddr   string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	PresenceTTL time.Duration `envconfig:"PRESENCE_TTL" default:"90s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
