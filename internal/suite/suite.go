// Package suite holds the concrete verification scenarios the harness
// ships: scripted walks through the Ka app's settings, board navigation,
// and teach-mode surfaces, each leaving literal-named artifacts behind.
package suite

import (
	"fmt"
	"sort"
	"time"

	"github.com/kaboard/kaverify/internal/act"
	"github.com/kaboard/kaverify/internal/locator"
	"github.com/kaboard/kaverify/internal/scenario"
	"github.com/kaboard/kaverify/internal/wait"
)

// Viewport used by every scenario.
const (
	ViewportWidth  = 1280
	ViewportHeight = 720
)

// boardSelector addresses the wood-colored board container by its utility
// classes, brackets escaped for querySelector.
const boardSelector = `.relative.bg-\[\#DCB35C\]`

// Settings walks the settings overlay: theme to dark, volume to 5, dismiss,
// then two stone placements under the new theme.
func Settings(baseURL string) scenario.Script {
	return scenario.Script{
		Name: "settings",
		Steps: []scenario.Step{
			scenario.Navigate(baseURL),
			scenario.WaitFor(wait.PageHasText("Ka"), 10*time.Second),
			scenario.Do(act.Click(locator.Title("Settings"))),
			scenario.WaitFor(wait.PageHasText("Board Theme"), 5*time.Second),
			scenario.Do(act.SelectOption(locator.CSS("select"), "dark")),
			scenario.Do(act.Fill(locator.CSS(`input[type="range"]`), "5")),
			scenario.Do(act.Click(locator.Text("Done"))),
			scenario.Pause(500 * time.Millisecond),
			scenario.Do(act.Click(locator.Point(500, 300))),
			scenario.Pause(500 * time.Millisecond),
			scenario.Do(act.Click(locator.Point(550, 300))),
			scenario.Pause(500 * time.Millisecond),
			scenario.Capture("settings_verification.png"),
		},
	}
}

// Navigation places three stones relative to the board's origin, then steps
// the move list backward and forward through the Prev control and the arrow
// keys.
func Navigation(baseURL string) scenario.Script {
	board := locator.CSS(boardSelector)
	return scenario.Script{
		Name: "nav",
		Steps: []scenario.Step{
			scenario.Navigate(baseURL),
			scenario.WaitFor(wait.ElementVisible(board), 10*time.Second),
			scenario.Do(act.Click(locator.Offset(board, 100, 100))),
			scenario.Pause(500 * time.Millisecond),
			scenario.Do(act.Click(locator.Offset(board, 200, 100))),
			scenario.Pause(500 * time.Millisecond),
			scenario.Do(act.Click(locator.Offset(board, 100, 200))),
			scenario.Pause(500 * time.Millisecond),
			scenario.Do(act.Click(locator.Text("Prev"))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Press("ArrowLeft")),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Press("ArrowRight")),
			scenario.Pause(300 * time.Millisecond),
			scenario.Capture("verification.png"),
		},
	}
}

// Mistakes turns on teach mode, plays four stones, checks the settings
// overlay still opens over the teach surfaces, and exercises the mistake
// navigation control.
func Mistakes(baseURL string) scenario.Script {
	return scenario.Script{
		Name: "mistakes",
		Steps: []scenario.Step{
			scenario.Navigate(baseURL),
			scenario.WaitFor(wait.PageHasText("Ka"), 10*time.Second),
			scenario.Do(act.Click(locator.Title("Teach Mode"))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Click(locator.Point(400, 400))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Click(locator.Point(450, 400))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Click(locator.Point(400, 450))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Click(locator.Point(450, 450))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Click(locator.Title("Settings"))),
			scenario.WaitFor(wait.PageHasText("Board Theme"), 5*time.Second),
			scenario.Capture("settings_modal.png"),
			scenario.Do(act.Click(locator.Text("Done"))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Do(act.Click(locator.Title("Previous Mistake (Shift+N)"))),
			scenario.Pause(300 * time.Millisecond),
			scenario.Capture("mistakes_ui.png"),
		},
	}
}

// Smoke is the first-render sanity check: the app mounts, the headline
// shows, one artifact proves it. The long navigation bound covers a dev
// server still warming up.
func Smoke(baseURL string) scenario.Script {
	nav := scenario.Navigate(baseURL)
	nav.Timeout = 60 * time.Second
	return scenario.Script{
		Name: "smoke",
		Steps: []scenario.Step{
			nav,
			scenario.WaitFor(wait.NetworkIdle(), 5*time.Second),
			scenario.WaitFor(wait.ElementExists(locator.CSS("#root")), 10*time.Second),
			scenario.WaitFor(wait.ElementVisible(locator.CSS("div.text-2xl")), 10*time.Second),
			scenario.Capture("main_ui.png"),
		},
	}
}

// Builder produces a scenario script bound to a base URL.
type Builder func(baseURL string) scenario.Script

var registry = map[string]Builder{
	"settings": Settings,
	"nav":      Navigation,
	"mistakes": Mistakes,
	"smoke":    Smoke,
}

// Names lists the registered scenarios, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the named scenario bound to baseURL.
func Build(name, baseURL string) (scenario.Script, error) {
	b, ok := registry[name]
	if !ok {
		return scenario.Script{}, fmt.Errorf("unknown scenario %q (have %v)", name, Names())
	}
	return b(baseURL), nil
}
