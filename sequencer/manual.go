package sequencer

import (
	"math"

	"go-trellis/debug"
	"go-trellis/gesture"
	"go-trellis/grid"
)

// Pads of the left 4x4 block, indexed [row][col].
var (
	manualNotes = [4][4]uint8{
		{48, 44, 40, 36},
		{49, 45, 41, 37},
		{50, 46, 42, 38},
		{51, 47, 43, 39},
	}
	manualCCs = [4][4]uint8{
		{22, 23, 24, 25},
		{26, 27, 28, 29},
		{30, 31, 85, 86},
		{87, 88, 89, 90},
	}
)

type manualPad struct {
	key     gesture.Key
	pitch   uint8
	channel uint8
}

// manualState is what the performance chords are holding down.
type manualState struct {
	notes   []manualPad
	ccHeld  []gesture.Key
	toggled map[gesture.Key]bool
}

// pads keeps the prefix keys that fall on the 4x4 pad block.
func pads(prefix []gesture.Key) []gesture.Key {
	var out []gesture.Key
	for _, k := range prefix {
		if k.Row >= 0 && k.Row < 4 && k.Col >= 0 && k.Col < 4 {
			out = append(out, k)
		}
	}
	return out
}

func containsKey(keys []gesture.Key, k gesture.Key) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}

func (e *Engine) comboManualNote(m gesture.Match) {
	e.overlay = true
	color := e.opts.Palette.ManualNote
	if e.state.SeparateManualChannel {
		color = e.opts.Palette.ManualAlt
	}
	ch := e.manualChannel()

	e.playPads(pads(m.Prefix), func(k gesture.Key, pitch uint8) {
		e.voices.Start(owner{src: srcManual, column: -1}, ch, pitch, 127)
		e.manual.notes = append(e.manual.notes, manualPad{k, pitch, ch})
		e.leds.Set(e.ledFor(k), color)
	})
}

// comboRecordNote writes the pressed pitch into the grid column nearest to
// the play-head. Even half steps land on the primary grid, odd ones on the
// shift grid. A note quantized backwards is also played right away.
func (e *Engine) comboRecordNote(m gesture.Match) {
	e.overlay = true
	ch := e.opts.Channel

	e.playPads(pads(m.Prefix), func(k gesture.Key, pitch uint8) {
		s := e.state
		loop := s.LastStep * TicksPerEighth
		pos := float64(s.Tick%loop) / float64(TicksPerEighth/2)
		q := int(math.Round(pos))

		g := e.primary
		if q%2 == 1 {
			g = e.shift
		}
		col := (q / 2) % s.LastStep
		if row := e.rowFor(g, pitch); row >= 0 {
			g.At(row, col).On = true
			debug.Log("record", "pitch %d -> column %d (half step %d)", pitch, col, q)
		} else {
			debug.Log("record", "pitch %d has no row", pitch)
		}

		if float64(q) < pos {
			e.voices.Start(owner{src: srcManual, column: -1}, ch, pitch, 127)
		}
		e.manual.notes = append(e.manual.notes, manualPad{k, pitch, ch})
		e.leds.Set(e.ledFor(k), e.opts.Palette.RecordNote)
	})
}

// playPads releases pads that were let go and calls start for new ones.
func (e *Engine) playPads(want []gesture.Key, start func(k gesture.Key, pitch uint8)) {
	kept := e.manual.notes[:0]
	for _, p := range e.manual.notes {
		if containsKey(want, p.key) {
			kept = append(kept, p)
			continue
		}
		e.voices.Release(p.channel, p.pitch)
		e.leds.Set(e.ledFor(p.key), e.opts.Palette.NoteOff)
	}
	e.manual.notes = kept

	for _, k := range want {
		held := false
		for _, p := range e.manual.notes {
			if p.key == k {
				held = true
				break
			}
		}
		if !held {
			start(k, manualNotes[k.Row][k.Col])
		}
	}
}

// comboManualCC: rows 0-1 are momentary (127 while held), rows 2-3 latch.
func (e *Engine) comboManualCC(m gesture.Match) {
	e.overlay = true
	pal := e.opts.Palette
	ch := e.opts.Channel

	for k, on := range e.manual.toggled {
		if on {
			e.leds.Set(e.ledFor(k), pal.ManualCC)
		}
	}

	want := pads(m.Prefix)
	for _, k := range want {
		if containsKey(e.manual.ccHeld, k) {
			continue
		}
		cc := manualCCs[k.Row][k.Col]
		if k.Row <= 1 {
			e.out.ControlChange(cc, 127, ch)
			e.leds.Set(e.ledFor(k), pal.ManualCC)
			continue
		}
		on := !e.manual.toggled[k]
		e.manual.toggled[k] = on
		if on {
			e.out.ControlChange(cc, 127, ch)
			e.leds.Set(e.ledFor(k), pal.ManualCC)
		} else {
			e.out.ControlChange(cc, 0, ch)
			e.leds.Set(e.ledFor(k), pal.NoteOff)
		}
	}
	for _, k := range e.manual.ccHeld {
		if !containsKey(want, k) && k.Row <= 1 {
			e.out.ControlChange(manualCCs[k.Row][k.Col], 0, ch)
			e.leds.Set(e.ledFor(k), pal.NoteOff)
		}
	}
	e.manual.ccHeld = want
}

func (e *Engine) releaseManual() {
	e.releaseManualNotes()
	e.releaseManualCC()
}

func (e *Engine) releaseManualNotes() {
	for _, p := range e.manual.notes {
		e.voices.Release(p.channel, p.pitch)
	}
	e.manual.notes = e.manual.notes[:0]
}

func (e *Engine) releaseManualCC() {
	for _, k := range e.manual.ccHeld {
		if k.Row <= 1 {
			e.out.ControlChange(manualCCs[k.Row][k.Col], 0, e.opts.Channel)
		}
	}
	e.manual.ccHeld = nil
}

// rowFor finds the row playing pitch, preferring the rows on screen.
func (e *Engine) rowFor(g *grid.NoteGrid, pitch uint8) int {
	first := -1
	top := e.state.View.RowOffset
	for r, p := range g.Pitches() {
		if p != pitch {
			continue
		}
		if r >= top && r < top+grid.ViewRows {
			return r
		}
		if first < 0 {
			first = r
		}
	}
	return first
}
