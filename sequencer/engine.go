// Package sequencer is the step sequencer engine: clock-driven playback of a
// primary and a shift grid, gesture editing, and pattern slots.
package sequencer

import (
	"context"
	"time"

	"go-trellis/axis"
	"go-trellis/debug"
	"go-trellis/gesture"
	"go-trellis/grid"
	"go-trellis/pattern"
	"go-trellis/theme"
)

// PulseSource delivers pending clock/transport pulses without blocking.
type PulseSource interface {
	Poll() (Pulse, bool)
}

// KeyboardSource reports the pressed keys, most recent first.
type KeyboardSource interface {
	Pressed() []gesture.Key
}

// SensorSource samples the accelerometer in m/s².
type SensorSource interface {
	Axes() (x, y, z float64)
}

// EventSink receives the MIDI the engine produces. Channels are 0-based.
type EventSink interface {
	NoteOn(pitch, velocity, channel uint8)
	NoteOff(pitch, channel uint8)
	ControlChange(cc, value, channel uint8)
}

// LedSink drives the board LEDs by physical index.
type LedSink interface {
	Set(index int, c theme.RGB)
	Fill(c theme.RGB)
}

// Options configures an Engine
type Options struct {
	Columns       int
	Rows          int
	StartingPitch uint8
	PitchLayout   grid.PitchLayout
	Board         grid.Board

	HoldTicks  int
	ShiftPhase int // 6 or 7 ticks after the primary step
	Channel    uint8
	AxisCCs    [6]uint8

	Palette theme.LEDPalette

	Store     *pattern.Store // nil disables slots
	ExportSMF bool
	ExportBPM float64

	PollInterval time.Duration
}

// DefaultOptions matches the Trellis firmware: 17 columns of 12 rows from C2.
func DefaultOptions() Options {
	return Options{
		Columns:       17,
		Rows:          12,
		StartingPitch: 36,
		PitchLayout:   grid.PitchBlock,
		Board:         grid.DefaultBoard(),
		HoldTicks:     gesture.DefaultHoldTicks,
		ShiftPhase:    6,
		AxisCCs:       axis.DefaultCCs,
		Palette:       theme.DefaultLEDPalette(),
		ExportBPM:     120,
		PollInterval:  time.Millisecond,
	}
}

// Engine owns the sequencer state and both grids. All methods must be called
// from a single goroutine.
type Engine struct {
	opts  Options
	state State

	primary *grid.NoteGrid
	shift   *grid.NoteGrid
	ccEdit  *grid.CellGrid

	voices     *voiceTable
	dispatcher *gesture.Dispatcher
	table      gesture.Table
	actions    map[string]combo
	manual     manualState

	clock  PulseSource
	keys   KeyboardSource
	sensor SensorSource
	out    EventSink
	leds   LedSink

	halted  bool // a stop arrived; ticks are ignored until start
	overlay bool // a chord painted over the mode view
	step    int

	observer   func(Status)
	lastStatus Status
	published  bool
}

// New builds the engine and restores slot 0. Any source may be nil.
func New(opts Options, clock PulseSource, keys KeyboardSource, sensor SensorSource, out EventSink, leds LedSink) *Engine {
	def := DefaultOptions()
	if opts.Columns < grid.ViewColumns+1 {
		opts.Columns = def.Columns
	}
	if opts.Rows < grid.ViewRows {
		opts.Rows = def.Rows
	}
	if opts.Board.Size() == 0 {
		opts.Board = def.Board
	}
	if opts.ShiftPhase != 7 {
		opts.ShiftPhase = 6
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if out == nil {
		out = discardSink{}
	}
	if leds == nil {
		leds = discardSink{}
	}

	e := &Engine{
		opts:       opts,
		primary:    grid.NewNoteGrid(opts.Columns, opts.Rows, opts.StartingPitch, opts.PitchLayout, opts.Board),
		shift:      grid.NewNoteGrid(opts.Columns, opts.Rows, opts.StartingPitch, opts.PitchLayout, opts.Board),
		ccEdit:     grid.NewCellGrid(grid.ViewColumns, grid.ViewRows, opts.Board),
		voices:     newVoiceTable(out),
		dispatcher: gesture.NewDispatcher(opts.HoldTicks),
		clock:      clock,
		keys:       keys,
		sensor:     sensor,
		out:        out,
		leds:       leds,
	}
	e.table, e.actions = buildCombos()
	e.manual.toggled = make(map[gesture.Key]bool)

	e.state.Mode = ModeMain
	e.state.LastStep, e.state.AxisModes = e.restore(0)
	e.paint()
	return e
}

// State returns a copy of the engine state
func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Primary() *grid.NoteGrid { return e.primary }
func (e *Engine) Shift() *grid.NoteGrid   { return e.shift }

// SetObserver registers a callback that receives a Status whenever it
// changes. It runs on the engine goroutine.
func (e *Engine) SetObserver(fn func(Status)) {
	e.observer = fn
	e.published = false
}

// Status snapshots the state
func (e *Engine) Status() Status {
	s := e.state
	return Status{
		Mode:                  s.Mode,
		Tick:                  s.Tick,
		Step:                  e.step,
		LastStep:              s.LastStep,
		Slot:                  s.CurrentSlot,
		Running:               s.Running,
		RowOffset:             s.View.RowOffset,
		ColumnOffset:          s.View.ColumnOffset,
		AxisModes:             s.AxisModes,
		SeparateManualChannel: s.SeparateManualChannel,
	}
}

// Poll runs one cycle: drain clock pulses, read the keys, and sample the
// sensor if the clock moved.
func (e *Engine) Poll() {
	tick := e.state.Tick

	if e.clock != nil {
		for {
			p, ok := e.clock.Poll()
			if !ok {
				break
			}
			e.HandlePulse(p)
		}
	}

	if e.keys != nil {
		e.HandleKeys(e.keys.Pressed())
	}

	if e.state.Tick != tick {
		e.sampleAxes()
	}

	e.publish()
}

// Run polls until ctx is cancelled, then silences every voice and saves the
// current slot.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	debug.Log("engine", "running, poll=%v slot=%d", e.opts.PollInterval, e.state.CurrentSlot)
	for {
		select {
		case <-ctx.Done():
			e.Shutdown()
			return nil
		case <-ticker.C:
			e.Poll()
		}
	}
}

// Shutdown flushes all voices and saves the current slot.
func (e *Engine) Shutdown() {
	if n := e.voices.Flush(); n > 0 {
		debug.Log("engine", "shutdown released %d voices", n)
	}
	e.save()
	e.leds.Fill(e.opts.Palette.NoteOff)
}

// HandleKeys feeds one key snapshot through the gesture dispatcher.
func (e *Engine) HandleKeys(pressed []gesture.Key) {
	for _, ev := range e.dispatcher.Update(pressed, e.state.Tick) {
		e.handleGesture(ev)
	}
}

func (e *Engine) handleGesture(ev gesture.Event) {
	switch ev.Kind {
	case gesture.Press:
		e.handlePress(ev.Key)
	case gesture.Tap, gesture.Hold:
		e.handleNoteEdit(ev)
	case gesture.Chord:
		e.handleChord(ev.Keys)
	case gesture.Release:
		e.releaseManual()
		if e.overlay {
			e.overlay = false
			e.paint()
		}
	}
}

func (e *Engine) sampleAxes() {
	if e.sensor == nil {
		return
	}
	x, y, z := e.sensor.Axes()
	values := [3]float64{y, x, z}
	ccs := e.opts.AxisCCs
	for i, v := range values {
		for _, cc := range axis.MapAxis(e.state.AxisModes[i], v, ccs[2*i], ccs[2*i+1]) {
			e.out.ControlChange(cc.Controller, cc.Value, e.opts.Channel)
		}
	}
}

func (e *Engine) publish() {
	if e.observer == nil {
		return
	}
	s := e.Status()
	if e.published && s == e.lastStatus {
		return
	}
	e.lastStatus = s
	e.published = true
	e.observer(s)
}

func (e *Engine) manualChannel() uint8 {
	if e.state.SeparateManualChannel {
		return (e.opts.Channel + 1) & 0x0F
	}
	return e.opts.Channel
}

func (e *Engine) clampLastStep(n int) int {
	if n < 1 {
		return 1
	}
	if n > e.opts.Columns-1 {
		return e.opts.Columns - 1
	}
	return n
}

type discardSink struct{}

func (discardSink) NoteOn(pitch, velocity, channel uint8)  {}
func (discardSink) NoteOff(pitch, channel uint8)           {}
func (discardSink) ControlChange(cc, value, channel uint8) {}
func (discardSink) Set(index int, c theme.RGB)             {}
func (discardSink) Fill(c theme.RGB)                       {}
