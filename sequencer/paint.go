package sequencer

import (
	"go-trellis/gesture"
	"go-trellis/grid"
	"go-trellis/theme"
)

// paint redraws the whole board for the current mode.
func (e *Engine) paint() {
	pal := e.opts.Palette
	switch e.state.Mode {
	case ModeMain:
		e.paintGrid(e.primary, pal.Primary())
	case ModeShift:
		e.paintGrid(e.shift, pal.Shift())
	case ModeCCEdit:
		e.syncCCGrid()
		for c := 0; c < e.ccEdit.Columns(); c++ {
			for r := 0; r < e.ccEdit.Rows(); r++ {
				cell := e.ccEdit.At(r, c)
				color := pal.NoteOff
				if cell.On {
					color = pal.EditCC
				}
				e.leds.Set(cell.LedIndex, color)
			}
		}
	case ModePatternSelect:
		e.paintSlots(pal.SavedSlot)
		if e.onBoard(e.state.CurrentSlot) {
			e.leds.Set(e.state.CurrentSlot, pal.CurrentSlot)
		}
	case ModePatternDelete:
		e.paintSlots(pal.DeleteSlot)
	case ModeDeleteAllConfirm:
		for i := 0; i < e.opts.Board.Size(); i++ {
			if i < e.opts.Board.Size()/2 {
				e.leds.Set(i, pal.Confirm)
			} else {
				e.leds.Set(i, pal.Decline)
			}
		}
	}
}

// paintGrid draws the visible window of a note grid
func (e *Engine) paintGrid(g *grid.NoteGrid, colors theme.GridColors) {
	v := e.state.View
	for c := 0; c < grid.ViewColumns; c++ {
		e.paintColumn(g, colors, c+v.ColumnOffset)
	}
}

func (e *Engine) paintColumn(g *grid.NoteGrid, colors theme.GridColors, col int) {
	v := e.state.View
	for r := 0; r < grid.ViewRows; r++ {
		n := g.At(r+v.RowOffset, col)
		if n == nil {
			e.leds.Set(e.opts.Board.PhysicalIndex(r, col-v.ColumnOffset), colors.Off)
			continue
		}
		e.leds.Set(n.LedIndex, colors.Cell(n.On, n.Accented))
	}
}

func (e *Engine) paintSlots(color theme.RGB) {
	e.leds.Fill(e.opts.Palette.NoteOff)
	for _, slot := range e.slots() {
		if e.onBoard(slot) {
			e.leds.Set(slot, color)
		}
	}
}

// paintKeys lights a set of board keys
func (e *Engine) paintKeys(keys []gesture.Key, color theme.RGB) {
	for _, k := range keys {
		e.leds.Set(e.ledFor(k), color)
	}
}

// syncCCGrid mirrors the axis modes into the CC edit grid: axis a lives on
// row 2-a, in the column of its mode.
func (e *Engine) syncCCGrid() {
	for a, m := range e.state.AxisModes {
		e.ccEdit.ClearRow(2 - a)
		if cell := e.ccEdit.At(2-a, m.Column()); cell != nil {
			cell.On = true
		}
	}
}

func (e *Engine) ledFor(k gesture.Key) int {
	return e.opts.Board.PhysicalIndex(k.Row, k.Col)
}

func (e *Engine) onBoard(index int) bool {
	return index >= 0 && index < e.opts.Board.Size()
}
