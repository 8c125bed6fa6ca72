package sequencer

import (
	"go-trellis/axis"
	"go-trellis/debug"
	"go-trellis/gesture"
)

// handlePress acts on single presses in the modes that respond immediately.
// Main and Shift wait for the release to tell a tap from a hold.
func (e *Engine) handlePress(k gesture.Key) {
	switch e.state.Mode {
	case ModeMain, ModeShift:
		return
	case ModeCCEdit:
		e.pressCCEdit(k)
	case ModePatternSelect:
		e.selectSlot(e.ledFor(k))
	case ModePatternDelete:
		e.pressDelete(e.ledFor(k))
	case ModeDeleteAllConfirm:
		e.pressDeleteAll(e.ledFor(k))
	}
	// the press is spent; its release must not edit the grid
	e.dispatcher.Cancel()
}

func (e *Engine) handleNoteEdit(ev gesture.Event) {
	g, colors := e.primary, e.opts.Palette.Primary()
	switch e.state.Mode {
	case ModeMain:
	case ModeShift:
		g, colors = e.shift, e.opts.Palette.Shift()
	case ModeCCEdit, ModePatternSelect, ModePatternDelete, ModeDeleteAllConfirm:
		return
	}

	r, c := e.state.View.Logical(ev.Key.Row, ev.Key.Col)
	n := g.At(r, c)
	if n == nil {
		debug.Log("keys", "no note at (%d,%d)", r, c)
		return
	}
	if ev.Kind == gesture.Hold {
		n.Hold()
	} else {
		n.Tap()
	}
	e.leds.Set(n.LedIndex, colors.Cell(n.On, n.Accented))
}

// pressCCEdit picks a curve: rows 2, 1, 0 are the y, x and z axes, columns
// 1-7 the modes. Row 3 and column 0 do nothing.
func (e *Engine) pressCCEdit(k gesture.Key) {
	if k.Row < 0 || k.Row > 2 {
		debug.Log("keys", "cc edit: inert key %v", k)
		return
	}
	m, ok := axis.ModeForColumn(k.Col)
	if !ok {
		debug.Log("keys", "cc edit: inert key %v", k)
		return
	}
	e.state.AxisModes[2-k.Row] = m
	debug.Log("keys", "axis %d -> %s", 2-k.Row, m)
	e.paint()
}
