package config

import (
	"os"
	"time"
)

// Config holds the ambient settings shared by every verification binary.
// Scenario content (URLs, artifact names, viewport) stays literal in the
// scenario definitions; this covers only where the browser lives and how
// patient the harness is.
type Config struct {
	// Browser
	Browser  string // path to a chrome/chromium binary; empty means auto-detect
	Headless bool

	// Target app, used by the umbrella CLI. Scenario binaries carry their
	// own literal URL.
	BaseURL string

	// Artifacts
	ArtifactDir string

	// Timing
	NavTimeout   time.Duration
	WaitTimeout  time.Duration
	PollInterval time.Duration

	// Reporting
	Strict bool // exit nonzero when a scenario fails
	Debug  bool // debug-level logging
}

// Default returns the configuration used when no environment overrides are set.
func Default() Config {
	return Config{
		Browser:      "",
		Headless:     true,
		BaseURL:      "http://localhost:5173",
		ArtifactDir:  "verification",
		NavTimeout:   30 * time.Second,
		WaitTimeout:  10 * time.Second,
		PollInterval: 150 * time.Millisecond,
		Strict:       false,
		Debug:        false,
	}
}

// FromEnv returns Default overridden by KAVERIFY_* environment variables.
// Callers load .env beforehand if they want file-based overrides.
func FromEnv() Config {
	cfg := Default()

	cfg.Browser = envString("KAVERIFY_BROWSER", cfg.Browser)
	if envBool("KAVERIFY_HEADFUL", false) {
		cfg.Headless = false
	}
	cfg.BaseURL = envString("KAVERIFY_BASE_URL", cfg.BaseURL)
	cfg.ArtifactDir = envString("KAVERIFY_ARTIFACT_DIR", cfg.ArtifactDir)
	cfg.NavTimeout = envDuration("KAVERIFY_NAV_TIMEOUT", cfg.NavTimeout)
	cfg.WaitTimeout = envDuration("KAVERIFY_WAIT_TIMEOUT", cfg.WaitTimeout)
	cfg.PollInterval = envDuration("KAVERIFY_POLL_INTERVAL", cfg.PollInterval)
	cfg.Strict = envBool("KAVERIFY_STRICT", cfg.Strict)
	cfg.Debug = envBool("KAVERIFY_DEBUG", cfg.Debug)

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
