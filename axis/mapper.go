// Package axis turns accelerometer readings into MIDI control changes.
package axis

import (
	"encoding/json"
	"fmt"
)

// Mode is the curve applied to one sensor axis
type Mode int

const (
	None Mode = iota
	Direct
	Flip
	Split
	OnOff
	FlipOnOff
	SplitOnOff
)

// Range of a sensor axis in m/s².
const (
	AxisMin = -10.0
	AxisMax = 10.0
)

// DefaultCCs are the up/down controller numbers for the y, x and z axes.
var DefaultCCs = [6]uint8{3, 9, 14, 15, 20, 21}

var modeCodes = map[Mode]string{
	Direct:     "d",
	Flip:       "f",
	Split:      "s",
	OnOff:      "o",
	FlipOnOff:  "fo",
	SplitOnOff: "so",
}

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Direct:
		return "direct"
	case Flip:
		return "flip"
	case Split:
		return "split"
	case OnOff:
		return "on/off"
	case FlipOnOff:
		return "flip on/off"
	case SplitOnOff:
		return "split on/off"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalJSON writes the short code used in pattern files, null for None.
func (m Mode) MarshalJSON() ([]byte, error) {
	code, ok := modeCodes[m]
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(code)
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = None
		return nil
	}
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	for mode, c := range modeCodes {
		if c == code {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown axis mode %q", code)
}

// ModeForColumn maps a CC edit column (1..7) to a mode. Column 7 is None.
func ModeForColumn(col int) (Mode, bool) {
	switch col {
	case 1, 2, 3, 4, 5, 6:
		return Mode(col), true
	case 7:
		return None, true
	}
	return None, false
}

// Column is the CC edit column that shows this mode
func (m Mode) Column() int {
	if m == None {
		return 7
	}
	return int(m)
}

// ControlChange is one CC message without a channel
type ControlChange struct {
	Controller uint8
	Value      uint8
}

// MapAxis converts an axis reading into zero or one control changes.
func MapAxis(mode Mode, value float64, ccUp, ccDown uint8) []ControlChange {
	switch mode {
	case Direct:
		return one(ccUp, scale(value, AxisMin, AxisMax))
	case Flip:
		return one(ccUp, scale(value, AxisMax, AxisMin))
	case Split:
		if value > 0 {
			return one(ccUp, scale(value, 0, AxisMax))
		}
		return one(ccDown, scale(value, 0, AxisMin))
	case OnOff:
		return one(ccUp, binary(value > 0))
	case FlipOnOff:
		return one(ccUp, binary(value <= 0))
	case SplitOnOff:
		if value > 0 {
			return one(ccUp, binary(value > 5))
		}
		return one(ccDown, binary(value < -5))
	case None:
		return nil
	}
	return nil
}

func one(cc, value uint8) []ControlChange {
	return []ControlChange{{Controller: cc, Value: value}}
}

func binary(on bool) uint8 {
	if on {
		return 127
	}
	return 0
}

// scale maps value from [from,to] onto [0,127], truncating and clamping.
func scale(value, from, to float64) uint8 {
	out := (value - from) / (to - from) * 127
	if out < 0 {
		return 0
	}
	if out > 127 {
		return 127
	}
	return uint8(out)
}
