package scenario

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"github.com/kaboard/kaverify/internal/act"
	"github.com/kaboard/kaverify/internal/capture"
	"github.com/kaboard/kaverify/internal/wait"
)

// State is the sequencer's lifecycle position.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

const (
	defaultNavTimeout  = 30 * time.Second
	defaultWaitTimeout = 10 * time.Second
)

// Options bounds the sequencer's patience. Zero values take defaults.
type Options struct {
	NavTimeout   time.Duration
	WaitTimeout  time.Duration
	PollInterval time.Duration
}

// Result is what one scenario run reports.
type Result struct {
	Scenario   string
	State      State
	Err        error
	FailedStep int // index of the failed step, -1 when none
	Artifacts  []capture.Artifact
}

// driver executes individual steps. The page-backed implementation below is
// the production path; tests substitute their own.
type driver interface {
	navigate(url string, timeout time.Duration) error
	await(c wait.Condition, timeout time.Duration) error
	perform(a act.Action) error
	snapshot(name string) (capture.Artifact, error)
	pause(d time.Duration)
	diagnose(cause error)
}

// Sequencer executes one Script as a Pending → Running → Completed/Failed
// state machine. A sequencer runs its script at most once; on a step failure
// it records a diagnostic capture before returning, and never retries or
// rolls back.
type Sequencer struct {
	script Script
	opts   Options
	log    *zap.Logger
	state  State
}

func New(script Script, opts Options, log *zap.Logger) *Sequencer {
	if opts.NavTimeout == 0 {
		opts.NavTimeout = defaultNavTimeout
	}
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = defaultWaitTimeout
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = wait.DefaultInterval
	}
	return &Sequencer{
		script: script,
		opts:   opts,
		log:    log.Named("sequencer"),
		state:  StatePending,
	}
}

// State returns the sequencer's current lifecycle position.
func (s *Sequencer) State() State {
	return s.state
}

// Run executes the script against the page, writing checkpoint artifacts
// through sink.
func (s *Sequencer) Run(pg *rod.Page, sink *capture.Sink) Result {
	return s.run(&pageDriver{pg: pg, sink: sink, interval: s.opts.PollInterval})
}

func (s *Sequencer) run(d driver) Result {
	res := Result{Scenario: s.script.Name, FailedStep: -1}
	if s.state != StatePending {
		res.State = s.state
		res.Err = fmt.Errorf("scenario %q already ran", s.script.Name)
		return res
	}

	s.state = StateRunning
	s.log.Info("scenario started",
		zap.String("scenario", s.script.Name),
		zap.Int("steps", len(s.script.Steps)))

	for i, step := range s.script.Steps {
		s.log.Debug("step",
			zap.String("scenario", s.script.Name),
			zap.Int("step", i+1),
			zap.String("do", step.Describe()))

		art, err := s.runStep(d, step)
		if err != nil {
			s.state = StateFailed
			res.State = StateFailed
			res.FailedStep = i
			res.Err = fmt.Errorf("step %d (%s): %w", i+1, step.Describe(), err)
			s.log.Warn("scenario failed",
				zap.String("scenario", s.script.Name),
				zap.Int("step", i+1),
				zap.Error(err))
			d.diagnose(res.Err)
			return res
		}

		if step.Kind == StepCapture {
			art.Step = i
			res.Artifacts = append(res.Artifacts, art)
		}
	}

	s.state = StateCompleted
	res.State = StateCompleted
	s.log.Info("scenario completed",
		zap.String("scenario", s.script.Name),
		zap.Int("artifacts", len(res.Artifacts)))
	return res
}

func (s *Sequencer) runStep(d driver, st Step) (capture.Artifact, error) {
	switch st.Kind {
	case StepNavigate:
		timeout := st.Timeout
		if timeout == 0 {
			timeout = s.opts.NavTimeout
		}
		return capture.Artifact{}, d.navigate(st.URL, timeout)
	case StepWait:
		timeout := st.Timeout
		if timeout == 0 {
			timeout = s.opts.WaitTimeout
		}
		return capture.Artifact{}, d.await(st.Cond, timeout)
	case StepAct:
		return capture.Artifact{}, d.perform(st.Action)
	case StepCapture:
		return d.snapshot(st.File)
	case StepPause:
		d.pause(st.Duration)
		return capture.Artifact{}, nil
	default:
		return capture.Artifact{}, fmt.Errorf("unknown step kind %q", st.Kind)
	}
}

// pageDriver drives a live rod page.
type pageDriver struct {
	pg       *rod.Page
	sink     *capture.Sink
	interval time.Duration
}

func (d *pageDriver) navigate(url string, timeout time.Duration) error {
	pg := d.pg.Timeout(timeout)
	if err := pg.Navigate(url); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if err := pg.WaitLoad(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

func (d *pageDriver) await(c wait.Condition, timeout time.Duration) error {
	return wait.For(d.pg, c, timeout, d.interval)
}

func (d *pageDriver) perform(a act.Action) error {
	return act.Dispatch(d.pg, a)
}

func (d *pageDriver) snapshot(name string) (capture.Artifact, error) {
	return d.sink.Capture(d.pg, name)
}

func (d *pageDriver) pause(dur time.Duration) {
	time.Sleep(dur)
}

func (d *pageDriver) diagnose(cause error) {
	d.sink.RecordFailure(d.pg, cause)
}
