package suite

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaboard/kaverify/internal/capture"
	"github.com/kaboard/kaverify/internal/config"
	"github.com/kaboard/kaverify/internal/fixture"
	"github.com/kaboard/kaverify/internal/reel"
	"github.com/kaboard/kaverify/internal/scenario"
)

func requireBrowser(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, has := launcher.LookPath(); !has {
		t.Skip("no chrome or chromium binary on PATH")
	}
}

// startStandin serves the bundled stand-in app on an ephemeral port and
// returns its base URL.
func startStandin(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	app := fixture.New()
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Headless = true
	cfg.ArtifactDir = t.TempDir()
	return cfg
}

func TestSettingsScenarioEndToEnd(t *testing.T) {
	requireBrowser(t)
	cfg := testConfig(t)

	res := Run(Settings(startStandin(t)), cfg, zap.NewNop())

	require.Equal(t, scenario.StateCompleted, res.State, "run error: %v", res.Err)
	assert.Equal(t, -1, res.FailedStep)
	require.Len(t, res.Artifacts, 1)

	art := res.Artifacts[0]
	assert.Equal(t, "settings_verification.png", art.Name)
	assert.FileExists(t, art.Path)
	assert.Positive(t, art.Size)
}

func TestSmokeScenarioEndToEnd(t *testing.T) {
	requireBrowser(t)
	cfg := testConfig(t)

	res := Run(Smoke(startStandin(t)), cfg, zap.NewNop())

	require.Equal(t, scenario.StateCompleted, res.State, "run error: %v", res.Err)
	assert.FileExists(t, filepath.Join(cfg.ArtifactDir, "main_ui.png"))
}

func TestScenarioFailureLeavesDiagnostic(t *testing.T) {
	requireBrowser(t)
	cfg := testConfig(t)
	cfg.NavTimeout = 5 * time.Second

	// Grab a port that nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadURL := "http://" + ln.Addr().String()
	require.NoError(t, ln.Close())

	res := Run(Navigation(deadURL), cfg, zap.NewNop())

	assert.Equal(t, scenario.StateFailed, res.State)
	assert.Equal(t, 0, res.FailedStep)

	var nav *scenario.NavigationError
	assert.ErrorAs(t, res.Err, &nav)

	assert.FileExists(t, filepath.Join(cfg.ArtifactDir, capture.FailureArtifact))
	assert.Empty(t, res.Artifacts)
}

func TestRunSynthesizesResultWhenSessionFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	cfg := testConfig(t)
	cfg.Browser = filepath.Join(t.TempDir(), "missing-chrome")

	res := Run(Smoke("http://localhost:5173"), cfg, zap.NewNop())

	assert.Equal(t, scenario.StateFailed, res.State)
	assert.Equal(t, -1, res.FailedStep)
	assert.Equal(t, "smoke", res.Scenario)
	assert.Error(t, res.Err)
}

func TestRunWithObserverFeedsReel(t *testing.T) {
	requireBrowser(t)
	cfg := testConfig(t)
	rec := reel.NewRecorder(zap.NewNop())

	res := RunWith(Smoke(startStandin(t)), cfg, zap.NewNop(), rec.Observe)

	require.Equal(t, scenario.StateCompleted, res.State, "run error: %v", res.Err)
	assert.Equal(t, 1, rec.Len())

	gifPath := filepath.Join(cfg.ArtifactDir, "run.gif")
	size, err := rec.Save(gifPath)
	require.NoError(t, err)
	assert.Positive(t, size)
	assert.FileExists(t, gifPath)
}
