package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		bind:          "0.0.0.0",
		db:            "crazystar.db",
		defaultLocale: "fr",
		port:          8080,
		reapInterval:  24 * time.Hour,
		roomRetention: 24 * time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().validate())

	cfg := validConfig()
	cfg.port = 0
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.tlsCert = "cert.pem"
	assert.Error(t, cfg.validate(), "tls cert without key must fail")

	cfg = validConfig()
	cfg.defaultLocale = "de"
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.roomRetention = 0
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.reapInterval = -time.Hour
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.db = ""
	assert.Error(t, cfg.validate())
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}
