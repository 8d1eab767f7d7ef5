// Package scroll derives viewport scroll state for a growing
// transcript: whether the content overflows the viewport and whether
// the viewport sits at the bottom. The tracker decides when transcript
// growth should auto-follow (scroll to the new bottom) versus leaving a
// jump-to-bottom affordance to the user.
package scroll

// bottomTolerance is how close to the true bottom still counts as "at
// bottom", in viewport units.
const bottomTolerance = 5

// Metrics are the raw viewport measurements the state derives from.
type Metrics struct {
	// ContentHeight is the total height of the rendered transcript.
	ContentHeight int
	// ViewportHeight is the visible height.
	ViewportHeight int
	// Offset is the current scroll position from the top.
	Offset int
}

// BottomOffset returns the offset that pins the viewport to the bottom
// of the content. Zero when the content does not overflow.
func (m Metrics) BottomOffset() int {
	off := m.ContentHeight - m.ViewportHeight
	if off < 0 {
		return 0
	}
	return off
}

// State is the derived scroll state. It is recomputed on every
// transcript change and every scroll event, never persisted.
type State struct {
	IsScrollable bool
	IsAtBottom   bool
}

// Derive computes scroll state from viewport metrics.
func Derive(m Metrics) State {
	return State{
		IsScrollable: m.ContentHeight > m.ViewportHeight,
		IsAtBottom:   m.ContentHeight-m.Offset-m.ViewportHeight < bottomTolerance,
	}
}

// Tracker holds the last derived state across events.
type Tracker struct {
	state State
}

// NewTracker starts at the bottom of an empty viewport, matching a
// fresh conversation.
func NewTracker() *Tracker {
	return &Tracker{state: State{IsAtBottom: true}}
}

// State returns the last derived scroll state.
func (t *Tracker) State() State {
	return t.state
}

// SetMetrics recomputes state from a scroll event. No forced scrolling
// ever results from a plain scroll event.
func (t *Tracker) SetMetrics(m Metrics) {
	t.state = Derive(m)
}

// ContentChanged recomputes state after the transcript grew and reports
// whether the viewport should be scrolled to the new bottom. Auto-follow
// applies only when the viewport was at the bottom before the growth;
// a user who scrolled away is not force-scrolled.
func (t *Tracker) ContentChanged(m Metrics) bool {
	wasAtBottom := t.state.IsAtBottom
	t.state = Derive(m)
	return wasAtBottom
}
