package suite

import (
	"fmt"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"github.com/kaboard/kaverify/internal/browser"
	"github.com/kaboard/kaverify/internal/capture"
	"github.com/kaboard/kaverify/internal/config"
	"github.com/kaboard/kaverify/internal/scenario"
)

// Run executes one script in its own browser session. A scenario failure
// travels in the Result, not the error path; Completed and Failed reach
// teardown the same way.
func Run(script scenario.Script, cfg config.Config, log *zap.Logger) scenario.Result {
	return RunWith(script, cfg, log, nil)
}

// RunWith is Run with an observer attached to the capture sink.
func RunWith(script scenario.Script, cfg config.Config, log *zap.Logger, obs capture.Observer) scenario.Result {
	sink := capture.NewSink(cfg.ArtifactDir, log)
	if obs != nil {
		sink.OnCapture(obs)
	}
	seq := scenario.New(script, scenario.Options{
		NavTimeout:   cfg.NavTimeout,
		WaitTimeout:  cfg.WaitTimeout,
		PollInterval: cfg.PollInterval,
	}, log)

	var res scenario.Result
	err := browser.WithSession(browser.Options{
		Bin:      cfg.Browser,
		Headless: cfg.Headless,
		Width:    ViewportWidth,
		Height:   ViewportHeight,
	}, log, func(pg *rod.Page) error {
		res = seq.Run(pg, sink)
		return nil
	})
	if err != nil {
		if res.State == "" {
			// The session never delivered a page, or the run was torn out
			// from under the sequencer.
			res = scenario.Result{
				Scenario:   script.Name,
				State:      scenario.StateFailed,
				Err:        err,
				FailedStep: -1,
			}
		} else {
			log.Warn("session teardown reported", zap.Error(err))
		}
	}
	return res
}

// Report prints the operator-facing summary line for one result.
func Report(res scenario.Result, cfg config.Config) {
	if res.State == scenario.StateCompleted {
		fmt.Printf("✓ %s completed (%d artifacts in %s)\n", res.Scenario, len(res.Artifacts), cfg.ArtifactDir)
		return
	}
	fmt.Printf("✗ %s failed: %v\n", res.Scenario, res.Err)
}

// ExitCode maps run outcomes to the process exit policy: always 0 unless
// strict reporting is enabled, in which case any non-completed scenario
// exits 1.
func ExitCode(cfg config.Config, results ...scenario.Result) int {
	if !cfg.Strict {
		return 0
	}
	for _, res := range results {
		if res.State != scenario.StateCompleted {
			return 1
		}
	}
	return 0
}
