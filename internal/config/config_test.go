package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Headless)
	assert.Empty(t, cfg.Browser, "empty means auto-detect")
	assert.Equal(t, "http://localhost:5173", cfg.BaseURL)
	assert.Equal(t, "verification", cfg.ArtifactDir)
	assert.Equal(t, 30*time.Second, cfg.NavTimeout)
	assert.Equal(t, 10*time.Second, cfg.WaitTimeout)
	assert.Equal(t, 150*time.Millisecond, cfg.PollInterval)
	assert.False(t, cfg.Strict, "failures report through logs by default, not exit codes")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KAVERIFY_BROWSER", "/usr/bin/chromium")
	t.Setenv("KAVERIFY_HEADFUL", "1")
	t.Setenv("KAVERIFY_BASE_URL", "http://127.0.0.1:4000")
	t.Setenv("KAVERIFY_ARTIFACT_DIR", "shots")
	t.Setenv("KAVERIFY_NAV_TIMEOUT", "45s")
	t.Setenv("KAVERIFY_WAIT_TIMEOUT", "")
	t.Setenv("KAVERIFY_STRICT", "true")

	cfg := FromEnv()
	assert.Equal(t, "/usr/bin/chromium", cfg.Browser)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.BaseURL)
	assert.Equal(t, "shots", cfg.ArtifactDir)
	assert.Equal(t, 45*time.Second, cfg.NavTimeout)
	assert.Equal(t, 10*time.Second, cfg.WaitTimeout, "unset variables keep defaults")
	assert.True(t, cfg.Strict)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("KAVERIFY_WAIT_TIMEOUT", "fast")
	t.Setenv("KAVERIFY_STRICT", "definitely")

	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.WaitTimeout)
	assert.False(t, cfg.Strict)
}
