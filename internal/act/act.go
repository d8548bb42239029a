package act

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kaboard/kaverify/internal/locator"
)

// ErrStaleTarget reports that a resolved element no longer matches a live
// node: the page re-rendered between resolution and dispatch.
var ErrStaleTarget = errors.New("element is stale or detached from the document")

// Kind names the simulated inputs the dispatcher can issue.
type Kind string

const (
	KindClick  Kind = "click"
	KindFill   Kind = "fill"
	KindSelect Kind = "select"
	KindPress  Kind = "press"
)

// Action is one unit of simulated user input.
type Action struct {
	Kind   Kind
	Target *locator.Target // nil for KindPress
	Text   string          // KindFill text, KindSelect option value
	Key    string          // KindPress key name, e.g. "ArrowLeft"
}

// Click clicks the target: through the input pipeline for element targets,
// at the raw coordinate for point targets.
func Click(t *locator.Target) Action {
	return Action{Kind: KindClick, Target: t}
}

// Fill sets the target's value and fires the input/change events the app
// listens on. Works for text inputs and range controls alike.
func Fill(t *locator.Target, text string) Action {
	return Action{Kind: KindFill, Target: t, Text: text}
}

// SelectOption picks the option with the given value on a select control.
func SelectOption(t *locator.Target, value string) Action {
	return Action{Kind: KindSelect, Target: t, Text: value}
}

// Press sends a key to the page. Single characters are typed literally;
// longer names ("Enter", "ArrowLeft") map to their control keys.
func Press(key string) Action {
	return Action{Kind: KindPress, Key: key}
}

func (a Action) String() string {
	switch a.Kind {
	case KindClick:
		return fmt.Sprintf("click %s", a.Target)
	case KindFill:
		return fmt.Sprintf("fill %s with %q", a.Target, a.Text)
	case KindSelect:
		return fmt.Sprintf("select %q on %s", a.Text, a.Target)
	case KindPress:
		return fmt.Sprintf("press %s", a.Key)
	default:
		return string(a.Kind)
	}
}

// Dispatch issues the action against the page. Element targets are resolved
// fresh here, immediately before use; a handle is never carried across a
// wait boundary.
func Dispatch(pg *rod.Page, a Action) error {
	switch a.Kind {
	case KindClick:
		if a.Target == nil {
			return errors.New("click needs a target")
		}
		if a.Target.Kind == locator.KindPoint || a.Target.Kind == locator.KindOffset {
			return clickPoint(pg, a.Target)
		}
		el, err := resolveLive(pg, a.Target)
		if err != nil {
			return err
		}
		if err := ClickElement(el); err != nil {
			return fmt.Errorf("click %s: %w", a.Target, err)
		}
		return nil
	case KindFill:
		el, err := resolveLive(pg, a.Target)
		if err != nil {
			return err
		}
		if err := FillElement(el, a.Text); err != nil {
			return fmt.Errorf("fill %s: %w", a.Target, err)
		}
		return nil
	case KindSelect:
		el, err := resolveLive(pg, a.Target)
		if err != nil {
			return err
		}
		option := fmt.Sprintf("option[value=%q]", a.Text)
		if err := el.Select([]string{option}, true, rod.SelectorTypeCSSSector); err != nil {
			return fmt.Errorf("select %q on %s: %w", a.Text, a.Target, classify(err))
		}
		return nil
	case KindPress:
		key, err := lookupKey(a.Key)
		if err != nil {
			return err
		}
		if err := pg.Keyboard.Press(key); err != nil {
			return fmt.Errorf("press %s: %w", a.Key, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// ClickElement clicks an already-resolved element through the browser's
// input pipeline, so the app sees the same event sequence a user produces.
func ClickElement(el *rod.Element) error {
	return classify(el.Click(proto.InputMouseButtonLeft, 1))
}

// FillElement sets the element's value directly and dispatches input and
// change events. Typing character-by-character cannot drive range controls;
// value assignment plus events covers both.
func FillElement(el *rod.Element, text string) error {
	_, err := el.Eval(`(value) => {
		if (!this.isConnected) throw new Error('element is detached from the document');
		this.value = value;
		this.dispatchEvent(new Event('input', { bubbles: true }));
		this.dispatchEvent(new Event('change', { bubbles: true }));
	}`, text)
	return classify(err)
}

func clickPoint(pg *rod.Page, t *locator.Target) error {
	pt, err := t.Pointer(pg)
	if err != nil {
		return fmt.Errorf("click %s: %w", t, err)
	}
	if err := pg.Mouse.MoveTo(pt); err != nil {
		return fmt.Errorf("click %s: %w", t, err)
	}
	if err := pg.Mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", t, err)
	}
	return nil
}

func resolveLive(pg *rod.Page, t *locator.Target) (*rod.Element, error) {
	el, err := t.Resolve(pg)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, fmt.Errorf("no element matches %s", t)
	}
	return el, nil
}

// classify folds driver errors that mean "this node is gone" into
// ErrStaleTarget so sequencers can tell a re-render race from a real fault.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isStale(err) {
		return fmt.Errorf("%w: %v", ErrStaleTarget, err)
	}
	return err
}

func isStale(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"cannot find context",
		"cannot find object",
		"could not find object",
		"could not find node",
		"node with given id",
		"detached from",
		"stale",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

var namedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Escape":     input.Escape,
	"Tab":        input.Tab,
	"Backspace":  input.Backspace,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
}

func lookupKey(name string) (input.Key, error) {
	if k, ok := namedKeys[name]; ok {
		return k, nil
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return input.Key(runes[0]), nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}
