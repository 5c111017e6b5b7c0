package main

import (
	"os"
	"testing"
	"time"

	"dm-lab/auth"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "secret")
	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("file", config.StoreBackend)
	req.Equal("./data", config.DataDir)
	req.Equal(7*24*time.Hour, config.AuthTokenDuration)
	req.Equal(auth.Bcrypt, config.HasherAlgorithm())
	req.Equal(10, config.BcryptCost)
	req.Equal(5000, config.Port)
	req.Equal([]string{"http://localhost:3000"}, config.AllowedOrigins())
	req.NoError(config.Validate())
}

func TestConfig_JWTSecretRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	base := Config{StoreBackend: "file", AuthTokenDuration: time.Hour}
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"file backend", func(c *Config) {}, false},
		{"badger backend", func(c *Config) { c.StoreBackend = "badger" }, false},
		{"unknown backend", func(c *Config) { c.StoreBackend = "postgres" }, true},
		{"zero token duration", func(c *Config) { c.AuthTokenDuration = 0 }, true},
		{"health without interval", func(c *Config) { c.HealthPort = 9000 }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			if tc.wantErr {
				require.Error(t, c.Validate())
			} else {
				require.NoError(t, c.Validate())
			}
		})
	}
}

func TestConfig_AllowedOrigins(t *testing.T) {
	c := Config{CorsAllowedOrigins: " http://a.test , ,http://b.test"}
	require.Equal(t, []string{"http://a.test", "http://b.test"}, c.AllowedOrigins())
}
