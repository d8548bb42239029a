package locator

import (
	"fmt"
	"regexp"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Kind discriminates how a Target finds its element or point.
type Kind string

const (
	KindText   Kind = "text"   // exact visible text
	KindAttr   Kind = "attr"   // attribute equals value
	KindCSS    Kind = "css"    // structural CSS selector
	KindPoint  Kind = "point"  // absolute viewport coordinate
	KindOffset Kind = "offset" // offset from another target's box origin
)

// textScope limits text matching to elements that carry their own label.
// Matching against every element would hit the outermost container first,
// since document order walks parents before children.
const textScope = `button, a, [role="button"], option, label, summary, th, td, li, p, span, div, h1, h2, h3`

// Target is an immutable description of what on the page to interact with.
// It is resolved against the live page at the moment of use and never caches
// an element handle, because the page mutates between steps.
type Target struct {
	Kind     Kind
	Text     string  // KindText
	Name     string  // KindAttr attribute name
	Value    string  // KindAttr attribute value
	Selector string  // KindCSS
	X, Y     float64 // KindPoint coordinates, KindOffset deltas
	From     *Target // KindOffset anchor
}

// Text matches the first element whose own text equals s.
func Text(s string) *Target {
	return &Target{Kind: KindText, Text: s}
}

// Attr matches the first element carrying attribute name with exactly value.
func Attr(name, value string) *Target {
	return &Target{Kind: KindAttr, Name: name, Value: value}
}

// Title matches a control by its title attribute, the way the board app
// labels its icon buttons.
func Title(value string) *Target {
	return Attr("title", value)
}

// CSS matches the first element satisfying a structural selector.
func CSS(selector string) *Target {
	return &Target{Kind: KindCSS, Selector: selector}
}

// Point names a fixed viewport coordinate.
func Point(x, y float64) *Target {
	return &Target{Kind: KindPoint, X: x, Y: y}
}

// Offset names a point dx,dy from the top-left of another target's box.
// The anchor is re-resolved whenever the offset is, so the point tracks
// the current layout.
func Offset(from *Target, dx, dy float64) *Target {
	return &Target{Kind: KindOffset, From: from, X: dx, Y: dy}
}

func (t *Target) String() string {
	switch t.Kind {
	case KindText:
		return fmt.Sprintf("text %q", t.Text)
	case KindAttr:
		return fmt.Sprintf("[%s=%q]", t.Name, t.Value)
	case KindCSS:
		return fmt.Sprintf("css %q", t.Selector)
	case KindPoint:
		return fmt.Sprintf("point (%.0f,%.0f)", t.X, t.Y)
	case KindOffset:
		return fmt.Sprintf("%s+(%.0f,%.0f)", t.From, t.X, t.Y)
	default:
		return string(t.Kind)
	}
}

// Resolve returns the first matching element in document order, or (nil, nil)
// when nothing matches yet. Absence is not an error; callers that need the
// element to exist pair Resolve with a readiness wait.
func (t *Target) Resolve(pg *rod.Page) (*rod.Element, error) {
	switch t.Kind {
	case KindText:
		pattern := `^\s*` + regexp.QuoteMeta(t.Text) + `\s*$`
		has, el, err := pg.HasR(textScope, pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", t, err)
		}
		if !has {
			return nil, nil
		}
		return el, nil
	case KindAttr:
		return resolveSelector(pg, t, fmt.Sprintf("[%s=%q]", t.Name, t.Value))
	case KindCSS:
		return resolveSelector(pg, t, t.Selector)
	default:
		return nil, fmt.Errorf("target %s names a point, not an element", t)
	}
}

func resolveSelector(pg *rod.Page, t *Target, selector string) (*rod.Element, error) {
	has, el, err := pg.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", t, err)
	}
	if !has {
		return nil, nil
	}
	return el, nil
}

// Pointer reduces the target to a single viewport coordinate: the point
// itself, an anchor origin plus deltas, or the center of a matched element.
func (t *Target) Pointer(pg *rod.Page) (proto.Point, error) {
	switch t.Kind {
	case KindPoint:
		return proto.Point{X: t.X, Y: t.Y}, nil
	case KindOffset:
		el, err := t.From.Resolve(pg)
		if err != nil {
			return proto.Point{}, err
		}
		if el == nil {
			return proto.Point{}, fmt.Errorf("anchor %s not found", t.From)
		}
		ox, oy, err := boxOrigin(el)
		if err != nil {
			return proto.Point{}, fmt.Errorf("anchor %s: %w", t.From, err)
		}
		return proto.Point{X: ox + t.X, Y: oy + t.Y}, nil
	default:
		el, err := t.Resolve(pg)
		if err != nil {
			return proto.Point{}, err
		}
		if el == nil {
			return proto.Point{}, fmt.Errorf("target %s not found", t)
		}
		cx, cy, err := Center(el)
		if err != nil {
			return proto.Point{}, fmt.Errorf("target %s: %w", t, err)
		}
		return proto.Point{X: cx, Y: cy}, nil
	}
}

// Center returns the midpoint of an element's first rendered quad.
func Center(el *rod.Element) (float64, float64, error) {
	shape, err := el.Shape()
	if err != nil {
		return 0, 0, err
	}
	if len(shape.Quads) == 0 {
		return 0, 0, fmt.Errorf("element has no rendered shape")
	}

	quad := shape.Quads[0]
	x := (quad[0] + quad[2] + quad[4] + quad[6]) / 4
	y := (quad[1] + quad[3] + quad[5] + quad[7]) / 4
	return x, y, nil
}

// boxOrigin returns the top-left corner of the element's first quad.
func boxOrigin(el *rod.Element) (float64, float64, error) {
	shape, err := el.Shape()
	if err != nil {
		return 0, 0, err
	}
	if len(shape.Quads) == 0 {
		return 0, 0, fmt.Errorf("element has no rendered shape")
	}

	quad := shape.Quads[0]
	ox, oy := quad[0], quad[1]
	for i := 2; i < len(quad); i += 2 {
		if quad[i] < ox {
			ox = quad[i]
		}
		if quad[i+1] < oy {
			oy = quad[i+1]
		}
	}
	return ox, oy, nil
}
