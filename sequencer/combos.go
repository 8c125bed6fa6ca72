package sequencer

import (
	"go-trellis/debug"
	"go-trellis/gesture"
)

type combo struct {
	rule   gesture.Rule
	modes  []Mode
	action func(e *Engine, m gesture.Match)
}

var (
	editModes = []Mode{ModeMain, ModeShift}
	ccModes   = []Mode{ModeMain, ModeShift, ModeCCEdit}
)

// Parameter keys pressed on top of a suffix combo.
var (
	keyRowUp      = gesture.Key{Row: 3, Col: 4}
	keyRowDown    = gesture.Key{Row: 1, Col: 4}
	keyColumnUp   = gesture.Key{Row: 2, Col: 5}
	keyColumnDown = gesture.Key{Row: 2, Col: 3}

	keyRotateLeft  = gesture.Key{Row: 2, Col: 4}
	keyRotateRight = gesture.Key{Row: 2, Col: 6}

	keyMeasureDown = gesture.Key{Row: 1, Col: 3}
	keyStepDown    = gesture.Key{Row: 1, Col: 4}
	keyStepUp      = gesture.Key{Row: 1, Col: 5}
	keyMeasureUp   = gesture.Key{Row: 1, Col: 6}
)

var (
	patternShiftKeys = []gesture.Key{keyRotateLeft, keyRotateRight}
	lastStepKeys     = []gesture.Key{keyMeasureDown, keyStepDown, keyStepUp, keyMeasureUp}
)

func keys(rc ...int) []gesture.Key {
	out := make([]gesture.Key, 0, len(rc)/2)
	for i := 0; i+1 < len(rc); i += 2 {
		out = append(out, gesture.Key{Row: rc[i], Col: rc[i+1]})
	}
	return out
}

// combos is the chord table in priority order. Keys are listed most recent
// first, so a suffix rule names the two keys that are held down first.
var combos = []combo{
	{gesture.Rule{Name: "clear", Keys: keys(3, 0, 0, 0, 3, 1), Kind: gesture.Exact}, editModes, (*Engine).comboClear},
	{gesture.Rule{Name: "shift", Keys: keys(3, 0, 0, 0, 3, 2), Kind: gesture.Exact}, editModes, (*Engine).comboShift},
	{gesture.Rule{Name: "cc-edit", Keys: keys(3, 0, 0, 0, 3, 3), Kind: gesture.Exact}, ccModes, (*Engine).comboCCEdit},
	{gesture.Rule{Name: "select-slot", Keys: keys(3, 0, 0, 0, 3, 4), Kind: gesture.Exact}, editModes, (*Engine).comboSelectSlot},
	{gesture.Rule{Name: "delete-slot", Keys: keys(3, 0, 0, 0, 2, 4), Kind: gesture.Exact}, editModes, (*Engine).comboDeleteSlot},
	{gesture.Rule{Name: "delete-all", Keys: keys(3, 0, 0, 0, 1, 4), Kind: gesture.Exact}, editModes, (*Engine).comboDeleteAll},
	{gesture.Rule{Name: "offset", Keys: keys(3, 6, 0, 6), Kind: gesture.Suffix}, editModes, (*Engine).comboOffset},
	{gesture.Rule{Name: "manual-cc", Keys: keys(3, 4, 0, 4), Kind: gesture.Suffix}, editModes, (*Engine).comboManualCC},
	{gesture.Rule{Name: "manual-note", Keys: keys(3, 4, 0, 5), Kind: gesture.Suffix}, editModes, (*Engine).comboManualNote},
	{gesture.Rule{Name: "record-note", Keys: keys(3, 5, 0, 5), Kind: gesture.Suffix}, editModes, (*Engine).comboRecordNote},
	{gesture.Rule{Name: "manual-channel", Keys: keys(3, 4, 2, 4, 0, 5), Kind: gesture.Exact}, editModes, (*Engine).comboManualChannel},
	{gesture.Rule{Name: "pattern-shift", Keys: keys(3, 7, 0, 7), Kind: gesture.Suffix}, editModes, (*Engine).comboPatternShift},
	{gesture.Rule{Name: "last-step", Keys: keys(2, 7, 0, 7), Kind: gesture.Suffix}, editModes, (*Engine).comboLastStep},
}

func buildCombos() (gesture.Table, map[string]combo) {
	table := make(gesture.Table, 0, len(combos))
	byName := make(map[string]combo, len(combos))
	for _, c := range combos {
		table = append(table, c.rule)
		byName[c.rule.Name] = c
	}
	return table, byName
}

func (e *Engine) comboActive(r gesture.Rule) bool {
	c, ok := e.actions[r.Name]
	if !ok {
		return false
	}
	for _, m := range c.modes {
		if m == e.state.Mode {
			return true
		}
	}
	return false
}

func (e *Engine) handleChord(pressed []gesture.Key) {
	m, ok := e.table.Match(pressed, e.comboActive)
	if !ok {
		e.releaseManual()
		if len(pressed) > 1 {
			debug.Log("combo", "unrecognized %v in %s", pressed, e.state.Mode)
		}
		return
	}

	switch m.Rule.Name {
	case "manual-note", "record-note":
		e.releaseManualCC()
	case "manual-cc":
		e.releaseManualNotes()
	default:
		e.releaseManual()
	}

	debug.Log("combo", "%s prefix=%v", m.Rule.Name, m.Prefix)
	e.actions[m.Rule.Name].action(e, m)
}

func (e *Engine) setMode(m Mode) {
	if e.state.Mode != m {
		debug.Log("mode", "%s -> %s", e.state.Mode, m)
	}
	e.state.Mode = m
	e.overlay = false
	e.paint()
}

func (e *Engine) comboClear(gesture.Match) {
	e.primary.Clear()
	e.shift.Clear()
	e.paint()
}

func (e *Engine) comboShift(gesture.Match) {
	if e.state.Mode == ModeShift {
		e.setMode(ModeMain)
	} else {
		e.setMode(ModeShift)
	}
}

func (e *Engine) comboCCEdit(gesture.Match) {
	if e.state.Mode == ModeCCEdit {
		e.setMode(ModeMain)
	} else {
		e.setMode(ModeCCEdit)
	}
}

func (e *Engine) comboSelectSlot(gesture.Match) {
	e.setMode(ModePatternSelect)
}

func (e *Engine) comboDeleteSlot(gesture.Match) {
	if len(e.slots()) == 0 {
		debug.Log("combo", "no slots to delete")
		e.setMode(ModeMain)
		return
	}
	e.setMode(ModePatternDelete)
}

func (e *Engine) comboDeleteAll(gesture.Match) {
	e.setMode(ModeDeleteAllConfirm)
}

func (e *Engine) comboOffset(m gesture.Match) {
	p, ok := m.Param()
	if !ok {
		return
	}
	v := &e.state.View
	moved := false
	switch p {
	case keyRowUp:
		moved = v.RowUp(e.opts.Rows)
	case keyRowDown:
		moved = v.RowDown()
	case keyColumnUp:
		moved = v.ColumnUp(e.opts.Columns)
	case keyColumnDown:
		moved = v.ColumnDown()
	default:
		debug.Log("combo", "offset: inert key %v", p)
		return
	}
	if moved {
		e.paint()
	}
}

func (e *Engine) comboManualChannel(gesture.Match) {
	e.state.SeparateManualChannel = !e.state.SeparateManualChannel
	debug.Log("combo", "separate manual channel=%v", e.state.SeparateManualChannel)
}

func (e *Engine) comboPatternShift(m gesture.Match) {
	e.overlay = true
	e.paintKeys(patternShiftKeys, e.opts.Palette.PatternShift)

	p, ok := m.Param()
	if !ok {
		return
	}
	switch p {
	case keyRotateLeft:
		e.primary.RotateLeft(e.state.LastStep)
		e.shift.RotateLeft(e.state.LastStep)
	case keyRotateRight:
		e.primary.RotateRight(e.state.LastStep)
		e.shift.RotateRight(e.state.LastStep)
	default:
		return
	}
	e.paint()
	e.paintKeys(patternShiftKeys, e.opts.Palette.PatternShift)
}

func (e *Engine) comboLastStep(m gesture.Match) {
	e.overlay = true
	e.paintKeys(lastStepKeys, e.opts.Palette.LastStep)

	p, ok := m.Param()
	if !ok {
		return
	}
	s := &e.state
	before := s.LastStep
	switch p {
	case keyMeasureDown:
		s.LastStep = e.clampLastStep(lastStepMeasureDown(s.LastStep))
	case keyStepDown:
		s.LastStep = e.clampLastStep(s.LastStep - 1)
	case keyStepUp:
		s.LastStep = e.clampLastStep(s.LastStep + 1)
	case keyMeasureUp:
		s.LastStep = e.clampLastStep(lastStepMeasureUp(s.LastStep))
		e.primary.DuplicateFirstMeasure()
		e.shift.DuplicateFirstMeasure()
		e.paint()
		e.paintKeys(lastStepKeys, e.opts.Palette.LastStep)
	default:
		return
	}
	debug.Log("combo", "last step %d -> %d", before, s.LastStep)
}

// lastStepMeasureDown snaps back to the previous measure boundary, or a
// whole measure when already on one.
func lastStepMeasureDown(n int) int {
	if r := n % 8; r != 0 {
		return n - r
	}
	return n - 8
}

// lastStepMeasureUp snaps forward to the next measure boundary.
func lastStepMeasureUp(n int) int {
	return n + 8 - n%8
}
