package sequencer

import (
	"go-trellis/axis"
	"go-trellis/debug"
	"go-trellis/pattern"
)

func (e *Engine) slots() []int {
	if e.opts.Store == nil {
		return nil
	}
	return e.opts.Store.Slots()
}

// restore loads a slot into the grids and returns its clamped last step and
// axis modes.
func (e *Engine) restore(slot int) (int, [3]axis.Mode) {
	if e.opts.Store == nil {
		return e.clampLastStep(pattern.DefaultLastStep), [3]axis.Mode{}
	}
	lastStep, modes := e.opts.Store.Restore(slot, e.primary, e.shift)
	return e.clampLastStep(lastStep), modes
}

// save writes the current slot. Failures are logged; memory stays
// authoritative.
func (e *Engine) save() {
	store := e.opts.Store
	if store == nil {
		return
	}
	s := e.state
	p := pattern.Capture(e.primary, e.shift, s.LastStep, s.AxisModes)
	if err := store.Save(s.CurrentSlot, p); err != nil {
		debug.Warn("pattern", err, "save slot %d", s.CurrentSlot)
		return
	}
	if e.opts.ExportSMF {
		opts := pattern.ExportOptions{
			Pitches:    e.primary.Pitches(),
			ShiftPhase: e.opts.ShiftPhase,
			Channel:    e.opts.Channel,
			BPM:        e.opts.ExportBPM,
		}
		if err := store.Export(s.CurrentSlot, p, opts); err != nil {
			debug.Warn("pattern", err, "export slot %d", s.CurrentSlot)
		}
	}
	debug.Log("pattern", "saved slot %d", s.CurrentSlot)
}

// Save writes the current slot to the store
func (e *Engine) Save() {
	e.save()
}

// selectSlot saves the current slot, switches to the pressed one and loads it.
func (e *Engine) selectSlot(slot int) {
	e.save()
	e.state.CurrentSlot = slot
	e.state.LastStep, e.state.AxisModes = e.restore(slot)
	debug.Log("pattern", "switched to slot %d", slot)
	e.setMode(ModeMain)
}

func (e *Engine) pressDelete(slot int) {
	store := e.opts.Store
	if store == nil || !store.Exists(slot) {
		debug.Log("pattern", "delete: no slot %d", slot)
		if len(e.slots()) == 0 {
			e.setMode(ModeMain)
		}
		return
	}
	if err := store.Delete(slot); err != nil {
		debug.Warn("pattern", err, "delete slot %d", slot)
	}
	e.setMode(ModeMain)
}

// pressDeleteAll confirms with the lower half of the board (LEDs 0-15) and
// declines with the rest.
func (e *Engine) pressDeleteAll(index int) {
	if index < e.opts.Board.Size()/2 {
		if store := e.opts.Store; store != nil {
			if err := store.DeleteAll(); err != nil {
				debug.Warn("pattern", err, "delete all slots")
			}
		}
		e.state.CurrentSlot = 0
		e.primary.Clear()
		e.shift.Clear()
		debug.Log("pattern", "deleted all slots")
	} else {
		debug.Log("pattern", "delete all declined")
	}
	e.setMode(ModeMain)
}
