package sequencer

import (
	"math/rand"
	"reflect"
	"testing"

	"go-trellis/gesture"
)

func TestStepWrapsAtLastStep(t *testing.T) {
	h := newHarness(t)
	h.state.LastStep = 5
	h.pulse(TransportStart)

	var steps []int
	for i := 0; i < 20*TicksPerEighth; i++ {
		tick := h.state.Tick
		h.ticks(1)
		if tick%TicksPerEighth == 0 {
			steps = append(steps, h.step)
		}
	}
	want := []int{1, 2, 3, 4, 5, 1, 2, 3, 4, 5, 1, 2, 3, 4, 5, 1, 2, 3, 4, 5}
	if !reflect.DeepEqual(steps, want) {
		t.Fatalf("steps: got=%v want=%v", steps, want)
	}
}

func TestColumnPlayback(t *testing.T) {
	h := newHarness(t)
	h.Primary().ToggleOn(0, 0)
	h.Primary().At(2, 1).Hold()
	h.Shift().ToggleOn(1, 0)
	h.pulse(TransportStart)

	h.ticks(1) // tick 0: primary column 0
	if h.sink.events[0] != (midiEvent{"on", 36, 96, 0}) {
		t.Fatalf("first event: %+v", h.sink.events[0])
	}
	h.sink.reset()

	h.ticks(6) // ticks 1..6: shift column 0 on tick 6
	if len(h.sink.events) != 1 || h.sink.events[0] != (midiEvent{"on", 37, 96, 0}) {
		t.Fatalf("shift step: %+v", h.sink.events)
	}
	h.sink.reset()

	h.ticks(6) // ticks 7..12: primary column 1 on tick 12
	want := []midiEvent{{"off", 36, 0, 0}, {"on", 38, 127, 0}}
	if !reflect.DeepEqual(h.sink.events, want) {
		t.Fatalf("second step: got=%v want=%v", h.sink.events, want)
	}
}

func TestShiftPhaseSeven(t *testing.T) {
	sink := newRecordingSink(t)
	clock := &pulseQueue{}
	opts := DefaultOptions()
	opts.ShiftPhase = 7
	e := New(opts, clock, nil, nil, sink, nil)
	e.Shift().ToggleOn(0, 0)

	for i := 0; i < 7; i++ {
		clock.pending = append(clock.pending, ClockTick)
		e.Poll()
	}
	if sink.count("on") != 0 {
		t.Fatalf("shift grid played before phase 7")
	}
	clock.pending = append(clock.pending, ClockTick)
	e.Poll()
	if sink.count("on") != 1 {
		t.Fatalf("shift grid did not play on phase 7")
	}
}

func TestNoOverlappingNoteOn(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewSource(7))
	for c := 0; c < h.Primary().Columns(); c++ {
		for r := 0; r < h.Primary().Rows(); r++ {
			if rng.Intn(3) == 0 {
				h.Primary().ToggleOn(r, c)
			}
			if rng.Intn(4) == 0 {
				h.Shift().ToggleOn(r, c)
			}
		}
	}
	h.pulse(TransportStart)

	// the recording sink fails the test on any overlap
	for i := 0; i < 2000; i++ {
		h.ticks(1)
		switch i {
		case 300:
			h.state.LastStep = 16
		case 700:
			h.state.LastStep = 3
		case 1100:
			h.Primary().Clear()
		case 1500:
			h.state.LastStep = 11
		}
	}
	if h.sink.count("on") == 0 {
		t.Fatalf("nothing played")
	}
}

func TestTransportStopFlushesEverything(t *testing.T) {
	h := newHarness(t)
	for r := 0; r < 4; r++ {
		h.Primary().ToggleOn(r, 0)
		h.Shift().ToggleOn(r+4, 0)
	}
	h.pulse(TransportStart)
	h.ticks(7)

	// a manual note on top
	h.chord([]gesture.Key{key(1, 0), key(3, 4), key(0, 5)})

	// rows 4..7 share pitches with rows 0..3, so the shift step retriggers
	sounding := len(h.sink.on)
	if sounding != 5 {
		t.Fatalf("sounding before stop: got=%d want=5", sounding)
	}
	h.sink.reset()

	h.pulse(TransportStop)
	if len(h.sink.on) != 0 {
		t.Fatalf("voices left on: %v", h.sink.on)
	}
	if got := h.sink.count("off"); got != sounding {
		t.Fatalf("note-offs: got=%d want=%d", got, sounding)
	}
	if h.state.Running {
		t.Fatalf("still running after stop")
	}

	// ticks after stop are ignored until start
	h.ticks(24)
	if h.sink.count("on") != 0 {
		t.Fatalf("played after stop")
	}
	h.pulse(TransportStart)
	h.ticks(1)
	if h.sink.count("on") != 4 {
		t.Fatalf("did not resume after start")
	}
}

func TestHighlightFollowsPlayhead(t *testing.T) {
	h := newHarness(t)
	pal := h.opts.Palette
	h.Primary().ToggleOn(0, 0)
	h.pulse(TransportStart)

	h.ticks(1) // step 1 lights column 0
	for r := 0; r < 4; r++ {
		if got := h.leds.leds[h.opts.Board.PhysicalIndex(r, 0)]; got != pal.Column {
			t.Fatalf("row %d of column 0: got=%v want column color", r, got)
		}
	}

	h.ticks(TicksPerEighth) // step 2 restores column 0, lights column 1
	if got := h.leds.leds[h.opts.Board.PhysicalIndex(0, 0)]; got != pal.NoteOn {
		t.Fatalf("column 0 not restored: got=%v", got)
	}
	if got := h.leds.leds[h.opts.Board.PhysicalIndex(0, 1)]; got != pal.Column {
		t.Fatalf("column 1 not lit: got=%v", got)
	}
}

func TestHighlightSkipsOffscreenColumns(t *testing.T) {
	h := newHarness(t)
	h.state.LastStep = 16
	h.state.View.ColumnOffset = 8
	h.paint()
	before := h.leds.leds

	h.pulse(TransportStart)
	h.ticks(1) // column 0 is off screen
	if h.leds.leds != before {
		t.Fatalf("off-screen step touched the LEDs")
	}

	for h.step != 9 {
		h.ticks(1)
	}
	// column 8 is the first visible one
	if got := h.leds.leds[h.opts.Board.PhysicalIndex(0, 0)]; got != h.opts.Palette.Column {
		t.Fatalf("column 8 not lit at step 9: got=%v", got)
	}
}
