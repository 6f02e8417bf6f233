package visibility

import (
	"math"
	"sync"
)

// Rect is an axis-aligned rectangle in container coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area or carries non-finite values, which
// is how layout reports an element that has not been measured yet.
func (r Rect) Empty() bool {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return r.W <= 0 || r.H <= 0
}

// Intersects reports whether r and o share a region of positive area.
// Touching edges do not count.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// IsVisible is the geometry rule on its own.
func IsVisible(frame, viewport Rect, attached bool) bool {
	return attached && frame.Intersects(viewport)
}

type input struct {
	frame, viewport Rect
	attached        bool
}

// Tracker turns layout updates for one element into visibility transitions.
// The callback fires only when the boolean flips; it runs on the goroutine
// calling Update, after the tracker's lock is released.
type Tracker struct {
	onChange func(bool)

	mu      sync.Mutex
	last    input
	seen    bool
	visible bool
}

func NewTracker(onChange func(visible bool)) *Tracker {
	return &Tracker{onChange: onChange}
}

// Update recomputes visibility. Repeating the previous inputs is a no-op.
func (t *Tracker) Update(frame, viewport Rect, attached bool) bool {
	in := input{frame: frame, viewport: viewport, attached: attached}

	t.mu.Lock()
	if t.seen && sameInput(t.last, in) {
		v := t.visible
		t.mu.Unlock()
		return v
	}
	t.seen = true
	t.last = in
	v := IsVisible(frame, viewport, attached)
	changed := v != t.visible
	t.visible = v
	t.mu.Unlock()

	if changed && t.onChange != nil {
		t.onChange(v)
	}
	return v
}

// Detach marks the element as removed from the view tree.
func (t *Tracker) Detach() {
	t.mu.Lock()
	frame, viewport := t.last.frame, t.last.viewport
	t.mu.Unlock()
	t.Update(frame, viewport, false)
}

func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// sameInput treats NaN fields as equal to each other so an unmeasured
// element does not look new on every layout pass.
func sameInput(a, b input) bool {
	return a.attached == b.attached && sameRect(a.frame, b.frame) && sameRect(a.viewport, b.viewport)
}

func sameRect(a, b Rect) bool {
	return sameFloat(a.X, b.X) && sameFloat(a.Y, b.Y) && sameFloat(a.W, b.W) && sameFloat(a.H, b.H)
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
