package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":5000", c.EndpointAddr)
	assert.Equal(t, "daybook-server.db", c.DatabaseDSN)
	assert.Equal(t, 5*time.Second, c.ShutdownGrace)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, ":5000", cfg.EndpointAddr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownGrace)
}
