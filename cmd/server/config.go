package main

import (
	"fmt"
	"strings"
	"time"

	"dm-lab/auth"
)

type Config struct {
	StoreBackend        string        `env:"STORE_BACKEND,default=file"`
	DataDir             string        `env:"DATA_DIR,default=./data"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,default=./data/badger"`
	StoreDegradedReads  bool          `env:"STORE_DEGRADED_READS,default=false"`
	JWTSecret           string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration   time.Duration `env:"AUTH_TOKEN_DURATION,default=168h"`
	PasswordHasher      string        `env:"PASSWORD_HASHER,default=bcrypt"`
	BcryptCost          int           `env:"BCRYPT_COST,default=10"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO"`
	Host                string        `env:"HOST,default=localhost"`
	Port                int           `env:"PORT,default=5000"`
	CorsAllowedOrigins  string        `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	HealthPort          int           `env:"HEALTH_PORT,default=0"`
	HealthProbeInterval time.Duration `env:"HEALTH_PROBE_INTERVAL,default=10s"`
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case "file", "badger":
	default:
		return fmt.Errorf("STORE_BACKEND must be file or badger, got %q", c.StoreBackend)
	}
	if c.AuthTokenDuration <= 0 {
		return fmt.Errorf("AUTH_TOKEN_DURATION must be positive, got %s", c.AuthTokenDuration)
	}
	if c.HealthPort > 0 && c.HealthProbeInterval <= 0 {
		return fmt.Errorf("HEALTH_PROBE_INTERVAL must be positive, got %s", c.HealthProbeInterval)
	}
	return nil
}

func (c Config) HasherAlgorithm() auth.Algorithm {
	return auth.Algorithm(strings.ToLower(c.PasswordHasher))
}

func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
