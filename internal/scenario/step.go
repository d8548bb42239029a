package scenario

import (
	"fmt"
	"time"

	"github.com/kaboard/kaverify/internal/act"
	"github.com/kaboard/kaverify/internal/wait"
)

// StepKind discriminates the variants of a Step.
type StepKind string

const (
	StepNavigate StepKind = "navigate"
	StepWait     StepKind = "wait"
	StepAct      StepKind = "act"
	StepCapture  StepKind = "capture"
	StepPause    StepKind = "pause"
)

// Step is one unit of a scenario script. Steps execute strictly in order;
// there is no branching and no retry within a step.
type Step struct {
	Kind     StepKind
	URL      string         // StepNavigate
	Timeout  time.Duration  // StepNavigate and StepWait bound; zero takes the sequencer default
	Cond     wait.Condition // StepWait
	Action   act.Action     // StepAct
	File     string         // StepCapture artifact name
	Duration time.Duration  // StepPause
}

// Navigate loads the given URL and waits for the load event.
func Navigate(url string) Step {
	return Step{Kind: StepNavigate, URL: url}
}

// WaitFor blocks until the condition holds or timeout elapses.
func WaitFor(c wait.Condition, timeout time.Duration) Step {
	return Step{Kind: StepWait, Cond: c, Timeout: timeout}
}

// Do dispatches one simulated input.
func Do(a act.Action) Step {
	return Step{Kind: StepAct, Action: a}
}

// Capture writes a checkpoint screenshot under the given filename.
func Capture(file string) Step {
	return Step{Kind: StepCapture, File: file}
}

// Pause sleeps for d, giving the UI time to show an action's effect.
func Pause(d time.Duration) Step {
	return Step{Kind: StepPause, Duration: d}
}

// Describe renders the step for logs and failure messages.
func (st Step) Describe() string {
	switch st.Kind {
	case StepNavigate:
		return fmt.Sprintf("navigate %s", st.URL)
	case StepWait:
		return fmt.Sprintf("wait for %s", st.Cond)
	case StepAct:
		return st.Action.String()
	case StepCapture:
		return fmt.Sprintf("capture %s", st.File)
	case StepPause:
		return fmt.Sprintf("pause %s", st.Duration)
	default:
		return string(st.Kind)
	}
}

// Script is one ordered verification scenario.
type Script struct {
	Name  string
	Steps []Step
}

// NavigationError reports that the target application did not respond at the
// expected address within the navigation bound. Navigation is not retried.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
