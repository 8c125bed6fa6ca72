package sequencer

import (
	"go-trellis/debug"
	"go-trellis/grid"
	"go-trellis/theme"
)

// HandlePulse applies one clock or transport pulse.
func (e *Engine) HandlePulse(p Pulse) {
	s := &e.state
	switch p {
	case TransportStart:
		s.Tick = 0
		s.EighthNote = 0
		s.Running = true
		e.halted = false
		e.step = 0
		debug.Log("clock", "start")

	case TransportStop:
		n := e.voices.Flush()
		s.Running = false
		e.halted = true
		e.paint()
		debug.Log("clock", "stop, released %d voices", n)

	case ClockTick:
		if e.halted {
			return
		}
		s.Running = true
		e.clockTick()
	}
}

// clockTick evaluates the current tick, then advances it. The primary grid
// steps on tick 0 of every eighth note, the shift grid ShiftPhase ticks later
// on the same step.
func (e *Engine) clockTick() {
	s := &e.state
	debug.LogEvery(PPQN*4, "clock", "tick=%d eighth=%d", s.Tick, s.EighthNote)

	phase := s.Tick % TicksPerEighth
	if phase == 0 {
		i := s.EighthNote%s.LastStep + 1
		e.scan(srcPrimary, e.primary, i, s.Mode == ModeMain, e.opts.Palette.Primary())
		e.step = i
		s.EighthNote++
	}
	if phase == e.opts.ShiftPhase && s.EighthNote > 0 {
		i := (s.EighthNote-1)%s.LastStep + 1
		e.scan(srcShift, e.shift, i, s.Mode == ModeShift, e.opts.Palette.Shift())
	}
	s.Tick++
}

// scan stops the previous step and starts step i (column i-1), then moves the
// play-head if this grid is on screen.
func (e *Engine) scan(src source, g *grid.NoteGrid, i int, highlight bool, colors theme.GridColors) {
	last := e.state.LastStep
	stopCol := grid.Mod(i-2, last)
	startCol := i - 1

	e.voices.Stop(owner{src, stopCol})
	// anything left from this grid belongs to a column the loop no longer
	// reaches, e.g. after the last step was shortened
	if n := e.voices.StopSource(src); n > 0 {
		debug.Log("clock", "released %d stale voices", n)
	}

	for _, n := range g.Column(startCol) {
		if n.On {
			e.voices.Start(owner{src, startCol}, e.opts.Channel, n.Pitch, n.Velocity())
		}
	}

	if highlight && !e.overlay {
		e.moveHighlight(g, colors, stopCol, startCol)
	}
}

func (e *Engine) moveHighlight(g *grid.NoteGrid, colors theme.GridColors, stopCol, startCol int) {
	v := e.state.View
	if v.ContainsColumn(stopCol) {
		e.paintColumn(g, colors, stopCol)
	}
	if v.ContainsColumn(startCol) {
		for r := 0; r < grid.ViewRows; r++ {
			if n := g.At(r+v.RowOffset, startCol); n != nil {
				e.leds.Set(n.LedIndex, colors.Column)
			}
		}
	}
}
