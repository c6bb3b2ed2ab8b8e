// internal/config/config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdbalance/internal/domain/crowd"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, crowd.DefaultRetention, cfg.Crowd.RetentionWindow)
	assert.Equal(t, 5*time.Minute, cfg.Crowd.SweepInterval)
	assert.Equal(t, "crowd.location", cfg.Crowd.EventsTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CROWD_SWEEP_INTERVAL", "30s")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Crowd.SweepInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CorsOrigins)
}

func TestLoadRejectsNonPositiveRetention(t *testing.T) {
	t.Setenv("CROWD_RETENTION_WINDOW", "-10m")

	_, err := Load()
	assert.Error(t, err)
}
