// Package gesture turns pressed-key snapshots into taps, holds and chords.
package gesture

import "fmt"

// DefaultHoldTicks is one quarter note at 24 ppqn.
const DefaultHoldTicks = 24

// Key is a board coordinate, row 0 at the top.
type Key struct {
	Row, Col int
}

func (k Key) String() string {
	return fmt.Sprintf("(%d,%d)", k.Row, k.Col)
}

type EventKind int

const (
	Press   EventKind = iota // single key went down
	Tap                      // single key released before the hold threshold
	Hold                     // single key released after the hold threshold
	Chord                    // key set changed while two or more keys were involved
	Release                  // key set returned to empty
)

func (k EventKind) String() string {
	switch k {
	case Press:
		return "press"
	case Tap:
		return "tap"
	case Hold:
		return "hold"
	case Chord:
		return "chord"
	case Release:
		return "release"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one classified gesture. Keys is the full pressed set for chords,
// most recent first.
type Event struct {
	Kind  EventKind
	Key   Key
	Keys  []Key
	Ticks int // press duration for Tap and Hold
}

// Dispatcher tracks the previous key set, the pending single-key press and
// the chord latch. Time is measured in clock ticks.
type Dispatcher struct {
	HoldTicks int

	prev    []Key
	held    Key
	heldAt  int
	holding bool
	latched bool
}

func NewDispatcher(holdTicks int) *Dispatcher {
	if holdTicks <= 0 {
		holdTicks = DefaultHoldTicks
	}
	return &Dispatcher{HoldTicks: holdTicks}
}

// Latched reports whether a chord has been seen since the set was last empty.
func (d *Dispatcher) Latched() bool {
	return d.latched
}

// Update classifies a new snapshot. Identical snapshots produce no events.
func (d *Dispatcher) Update(pressed []Key, tick int) []Event {
	if equal(pressed, d.prev) {
		return nil
	}
	prev := d.prev
	d.prev = append(d.prev[:0:0], pressed...)

	var events []Event
	switch {
	case len(pressed) == 0:
		if d.holding && !d.latched {
			events = append(events, d.resolve(tick))
		}
		d.holding = false
		d.latched = false
		events = append(events, Event{Kind: Release})

	case len(pressed) == 1 && !d.latched:
		if d.holding && d.held != pressed[0] {
			// the previous key was let go and a new one pressed between polls
			events = append(events, d.resolve(tick))
		}
		if len(prev) == 0 || d.held != pressed[0] {
			d.held = pressed[0]
			d.heldAt = tick
			d.holding = true
			events = append(events, Event{Kind: Press, Key: pressed[0]})
		}

	default:
		d.latched = true
		d.holding = false
		events = append(events, Event{Kind: Chord, Key: pressed[0], Keys: d.prev})
	}
	return events
}

func (d *Dispatcher) resolve(tick int) Event {
	d.holding = false
	// a transport restart rewinds the tick under a held key; the length is
	// unknown then and counts as zero
	held := tick - d.heldAt
	if held < 0 {
		held = 0
	}
	kind := Tap
	if held >= d.HoldTicks {
		kind = Hold
	}
	return Event{Kind: kind, Key: d.held, Ticks: held}
}

// Cancel drops the pending single-key press so its release is not
// classified as a tap or hold.
func (d *Dispatcher) Cancel() {
	d.holding = false
}

func equal(a, b []Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
