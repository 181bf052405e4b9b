package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		port:           8080,
		maxPlayers:     8,
		revealDuration: 10 * time.Second,
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(*Config) {},
		},
		{
			name:    "cert without key",
			mutate:  func(c *Config) { c.tlsCert = "cert.pem" },
			wantErr: "tls-cert",
		},
		{
			name:    "key without cert",
			mutate:  func(c *Config) { c.tlsKey = "key.pem" },
			wantErr: "tls-cert",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "max players below viable minimum",
			mutate:  func(c *Config) { c.maxPlayers = 1 },
			wantErr: "invalid max players",
		},
		{
			name:    "zero reveal duration",
			mutate:  func(c *Config) { c.revealDuration = 0 },
			wantErr: "invalid reveal duration",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)

			err := cfg.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "512 B", humanReadableSize(512))
	assert.Equal(t, "1.5 kB", humanReadableSize(1500))
	assert.Equal(t, "2.0 MB", humanReadableSize(2000000))
}
