package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		bind:             "0.0.0.0",
		port:             8080,
		minPlayers:       4,
		maxPlayers:       10,
		revealDelay:      5 * time.Second,
		speakingTime:     30 * time.Second,
		eliminationPause: 3 * time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.port = 0 },
			wantErr: true,
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.port = 65536 },
			wantErr: true,
		},
		{
			name:    "tls cert without key",
			mutate:  func(c *Config) { c.tlsCert = "cert.pem" },
			wantErr: true,
		},
		{
			name:    "tls key without cert",
			mutate:  func(c *Config) { c.tlsKey = "key.pem" },
			wantErr: true,
		},
		{
			name: "tls pair is valid",
			mutate: func(c *Config) {
				c.tlsCert = "cert.pem"
				c.tlsKey = "key.pem"
			},
		},
		{
			name:    "min players below three",
			mutate:  func(c *Config) { c.minPlayers = 2 },
			wantErr: true,
		},
		{
			name:    "max below min",
			mutate:  func(c *Config) { c.maxPlayers = 3 },
			wantErr: true,
		},
		{
			name:    "zero speaking time",
			mutate:  func(c *Config) { c.speakingTime = 0 },
			wantErr: true,
		},
		{
			name:    "negative reveal delay",
			mutate:  func(c *Config) { c.revealDelay = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}
