package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Particles.MaxParticles)
	assert.InDelta(t, 150, cfg.Particles.ConnectionThreshold, 1e-9)
	assert.Contains(t, cfg.Cache.Precache, "/static/js/particles.js")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
particles:
  max_particles: 40
  motion_trails: false
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode, "unset keys keep their defaults")
	assert.Equal(t, 40, cfg.Particles.MaxParticles)
	assert.False(t, cfg.Particles.MotionTrails)
	assert.InDelta(t, 0.5, cfg.Particles.Speed, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("CONTENT_WATCH", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "hunter2", cfg.Admin.Password)
	assert.True(t, cfg.Content.Watch)
	assert.True(t, cfg.MailConfigured())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: http\n"},
		{"bad mode", "server:\n  mode: prod\n"},
		{"bad duration", "server:\n  shutdown_timeout: soon\n"},
		{"bad retention", "privacy:\n  retention_months: 0\n"},
		{"bad particles", "particles:\n  trail_decay: 1.5\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "site.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "site.yaml")
	cfg := DefaultConfig()
	cfg.Particles.MaxParticles = 64

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, got.Particles.MaxParticles)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 10*time.Second, Duration("10s", time.Minute))
	assert.Equal(t, time.Minute, Duration("", time.Minute))
}
