package wait

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"github.com/kaboard/kaverify/internal/locator"
)

// ErrTimeout reports that a condition did not hold before its bound. It is an
// expected outcome, not a crash: the harness does not control the app's
// render timing.
var ErrTimeout = errors.New("condition not met before timeout")

// DefaultInterval keeps polling short relative to the multi-second timeouts
// scenarios use.
const DefaultInterval = 150 * time.Millisecond

// settleWindow is how long the network must stay quiet to count as idle.
const settleWindow = 500 * time.Millisecond

// Kind names the readiness conditions the waiter can poll for.
type Kind string

const (
	KindExists  Kind = "exists"
	KindVisible Kind = "visible"
	KindText    Kind = "text"
	KindIdle    Kind = "idle"
)

// Condition is one named readiness check against the page.
type Condition struct {
	Kind   Kind
	Target *locator.Target // KindExists, KindVisible
	Text   string          // KindText
}

// ElementExists holds once the target is attached to the document.
func ElementExists(t *locator.Target) Condition {
	return Condition{Kind: KindExists, Target: t}
}

// ElementVisible holds once the target is attached and rendered (non-zero
// area, not hidden via styling).
func ElementVisible(t *locator.Target) Condition {
	return Condition{Kind: KindVisible, Target: t}
}

// PageHasText holds once an element showing exactly s is visible.
func PageHasText(s string) Condition {
	return Condition{Kind: KindText, Text: s}
}

// NetworkIdle holds once no requests have been in flight for a settle window.
func NetworkIdle() Condition {
	return Condition{Kind: KindIdle}
}

func (c Condition) String() string {
	switch c.Kind {
	case KindExists:
		return fmt.Sprintf("%s attached", c.Target)
	case KindVisible:
		return fmt.Sprintf("%s visible", c.Target)
	case KindText:
		return fmt.Sprintf("text %q shown", c.Text)
	case KindIdle:
		return "network idle"
	default:
		return string(c.Kind)
	}
}

func (c Condition) validate() error {
	switch c.Kind {
	case KindExists, KindVisible:
		if c.Target == nil {
			return fmt.Errorf("condition %q needs a target", c.Kind)
		}
		if c.Target.Kind == locator.KindPoint || c.Target.Kind == locator.KindOffset {
			return fmt.Errorf("condition %q needs an element target, got %s", c.Kind, c.Target)
		}
	}
	return nil
}

// For polls the condition at the given interval until it holds or timeout
// elapses. A check that errors counts as not-ready: during client-side
// mounting the page legitimately rejects queries for a moment.
func For(pg *rod.Page, c Condition, timeout, interval time.Duration) error {
	if err := c.validate(); err != nil {
		return err
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	if c.Kind == KindIdle {
		pg.Timeout(timeout).WaitRequestIdle(settleWindow, nil, nil, nil)()
		return nil
	}

	if err := poll(func() bool { return holds(pg, c) }, timeout, interval); err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	return nil
}

// poll runs check until it reports true or the deadline passes. The final
// check happens at or after the deadline, so a condition that turns true
// exactly at the bound still wins.
func poll(check func() bool, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if check() {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w (%s)", ErrTimeout, timeout)
		}
		time.Sleep(interval)
	}
}

func holds(pg *rod.Page, c Condition) bool {
	switch c.Kind {
	case KindExists:
		el, err := c.Target.Resolve(pg)
		return err == nil && el != nil
	case KindVisible:
		el, err := c.Target.Resolve(pg)
		if err != nil || el == nil {
			return false
		}
		vis, err := el.Visible()
		return err == nil && vis
	case KindText:
		el, err := locator.Text(c.Text).Resolve(pg)
		if err != nil || el == nil {
			return false
		}
		vis, err := el.Visible()
		return err == nil && vis
	default:
		return false
	}
}
