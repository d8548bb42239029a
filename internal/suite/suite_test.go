package suite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboard/kaverify/internal/config"
	"github.com/kaboard/kaverify/internal/scenario"
)

func TestNamesSorted(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"mistakes", "nav", "settings", "smoke"}, Names())
}

func TestBuildUnknownScenario(t *testing.T) {
	t.Parallel()
	_, err := Build("chess", "http://localhost:5173")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown scenario "chess"`)
}

func TestBuildBindsBaseURL(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		script, err := Build(name, "http://127.0.0.1:9999")
		require.NoError(t, err)
		require.NotEmpty(t, script.Steps)

		first := script.Steps[0]
		assert.Equal(t, scenario.StepNavigate, first.Kind, "%s starts by loading the app", name)
		assert.Equal(t, "http://127.0.0.1:9999", first.URL)
	}
}

func TestScenariosWaitBeforeActing(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		script, _ := Build(name, "http://localhost:5173")
		require.Greater(t, len(script.Steps), 1)
		assert.Equal(t, scenario.StepWait, script.Steps[1].Kind,
			"%s: an async-mounting app needs a readiness wait before any action", name)
	}
}

func TestScenarioArtifactNames(t *testing.T) {
	t.Parallel()
	want := map[string][]string{
		"settings": {"settings_verification.png"},
		"nav":      {"verification.png"},
		"mistakes": {"settings_modal.png", "mistakes_ui.png"},
		"smoke":    {"main_ui.png"},
	}
	for name, files := range want {
		script, err := Build(name, "http://localhost:5173")
		require.NoError(t, err)

		var got []string
		for _, st := range script.Steps {
			if st.Kind == scenario.StepCapture {
				got = append(got, st.File)
			}
		}
		assert.Equal(t, files, got, "artifact filenames for %s are part of the contract", name)
	}
}

func TestScenariosEndWithCapture(t *testing.T) {
	t.Parallel()
	for _, name := range Names() {
		script, _ := Build(name, "http://localhost:5173")
		last := script.Steps[len(script.Steps)-1]
		assert.Equal(t, scenario.StepCapture, last.Kind, "%s must leave closing evidence", name)
	}
}

func TestSmokeNavigationBound(t *testing.T) {
	t.Parallel()
	script, _ := Build("smoke", "http://localhost:5173")
	assert.Equal(t, 60*time.Second, script.Steps[0].Timeout,
		"smoke tolerates a dev server still warming up")
}

func TestExitCodePolicy(t *testing.T) {
	t.Parallel()
	ok := scenario.Result{State: scenario.StateCompleted}
	bad := scenario.Result{State: scenario.StateFailed}

	lax := config.Default()
	assert.Equal(t, 0, ExitCode(lax, ok, bad), "failures report through logs, not exit codes")

	strict := lax
	strict.Strict = true
	assert.Equal(t, 0, ExitCode(strict, ok))
	assert.Equal(t, 1, ExitCode(strict, ok, bad))
	assert.Equal(t, 1, ExitCode(strict, bad))
}
