package sequencer

import (
	"fmt"

	"go-trellis/axis"
	"go-trellis/grid"
)

// Mode is what the board is currently editing
type Mode int

const (
	ModeMain Mode = iota
	ModeShift
	ModeCCEdit
	ModePatternSelect
	ModePatternDelete
	ModeDeleteAllConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeMain:
		return "main"
	case ModeShift:
		return "shift"
	case ModeCCEdit:
		return "cc edit"
	case ModePatternSelect:
		return "pattern select"
	case ModePatternDelete:
		return "pattern delete"
	case ModeDeleteAllConfirm:
		return "delete all?"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Pulse is one transport event from the external clock
type Pulse int

const (
	ClockTick Pulse = iota
	TransportStart
	TransportStop
)

func (p Pulse) String() string {
	switch p {
	case ClockTick:
		return "tick"
	case TransportStart:
		return "start"
	case TransportStop:
		return "stop"
	}
	return fmt.Sprintf("Pulse(%d)", int(p))
}

// PPQN is the resolution of the incoming clock.
const (
	PPQN           = 24
	TicksPerEighth = PPQN / 2
)

// State is everything the engine mutates while running.
type State struct {
	Tick        int
	EighthNote  int
	LastStep    int
	View        grid.Viewport
	Mode        Mode
	AxisModes   [3]axis.Mode
	CurrentSlot int

	Running               bool
	SeparateManualChannel bool
}

// Status is the snapshot published to observers after a cycle
type Status struct {
	Mode                  Mode
	Tick                  int
	Step                  int // 1-based step last started on the primary grid, 0 before the first
	LastStep              int
	Slot                  int
	Running               bool
	RowOffset             int
	ColumnOffset          int
	AxisModes             [3]axis.Mode
	SeparateManualChannel bool
}
