package tui

import (
	"sync"

	"go-trellis/axis"
	"go-trellis/gesture"
	"go-trellis/grid"
	"go-trellis/theme"
)

// TiltStep is how far one arrow press tilts an axis, in m/s².
const TiltStep = 2.5

// HardwareBoard is a physical board the virtual one mirrors to and merges
// presses from.
type HardwareBoard interface {
	ID() string
	Pressed() []gesture.Key
	Set(index int, c theme.RGB)
	Fill(c theme.RGB)
}

// VirtualBoard stands in for the board in the terminal. Keys are sticky:
// a key stays pressed until it is toggled again or everything is released.
// It is a keyboard, LED and sensor source for the engine and is safe to use
// from the engine and bubbletea goroutines at once.
type VirtualBoard struct {
	layout grid.Board

	mu      sync.Mutex
	sticky  []gesture.Key // most recent first
	leds    []theme.RGB
	tilt    [3]float64 // x, y, z
	hw      HardwareBoard
	changed chan struct{}
}

func NewVirtualBoard(layout grid.Board) *VirtualBoard {
	return &VirtualBoard{
		layout:  layout,
		leds:    make([]theme.RGB, layout.Size()),
		changed: make(chan struct{}, 1),
	}
}

func (v *VirtualBoard) Layout() grid.Board {
	return v.layout
}

// Toggle presses k, or releases it if it is already held. It reports whether
// k is now held.
func (v *VirtualBoard) Toggle(k gesture.Key) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, x := range v.sticky {
		if x == k {
			v.sticky = append(v.sticky[:i], v.sticky[i+1:]...)
			return false
		}
	}
	v.sticky = append([]gesture.Key{k}, v.sticky...)
	return true
}

// ReleaseAll lets go of every sticky key.
func (v *VirtualBoard) ReleaseAll() {
	v.mu.Lock()
	v.sticky = nil
	v.mu.Unlock()
}

// Held reports whether k is pressed on either board.
func (v *VirtualBoard) Held(k gesture.Key) bool {
	for _, x := range v.Pressed() {
		if x == k {
			return true
		}
	}
	return false
}

// Pressed merges the hardware presses with the sticky keys, hardware first.
func (v *VirtualBoard) Pressed() []gesture.Key {
	v.mu.Lock()
	hw := v.hw
	keys := append([]gesture.Key(nil), v.sticky...)
	v.mu.Unlock()

	if hw == nil {
		return keys
	}
	merged := hw.Pressed()
	for _, k := range keys {
		if !contains(merged, k) {
			merged = append(merged, k)
		}
	}
	return merged
}

func (v *VirtualBoard) Set(index int, c theme.RGB) {
	if index < 0 || index >= len(v.leds) {
		return
	}
	v.mu.Lock()
	v.leds[index] = c
	hw := v.hw
	v.mu.Unlock()

	if hw != nil {
		hw.Set(index, c)
	}
	v.notify()
}

func (v *VirtualBoard) Fill(c theme.RGB) {
	v.mu.Lock()
	for i := range v.leds {
		v.leds[i] = c
	}
	hw := v.hw
	v.mu.Unlock()

	if hw != nil {
		hw.Fill(c)
	}
	v.notify()
}

// LEDs returns a copy of the mirrored LED colors by physical index.
func (v *VirtualBoard) LEDs() []theme.RGB {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]theme.RGB(nil), v.leds...)
}

// Changed fires after LED writes. Bursts collapse into one signal.
func (v *VirtualBoard) Changed() <-chan struct{} {
	return v.changed
}

func (v *VirtualBoard) notify() {
	select {
	case v.changed <- struct{}{}:
	default:
	}
}

// Attach mirrors the LEDs to hw and starts merging its presses. The current
// LED state is replayed onto it.
func (v *VirtualBoard) Attach(hw HardwareBoard) {
	v.mu.Lock()
	v.hw = hw
	leds := append([]theme.RGB(nil), v.leds...)
	v.mu.Unlock()

	for i, c := range leds {
		hw.Set(i, c)
	}
}

// Detach drops the hardware board if it is the one named id.
func (v *VirtualBoard) Detach(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hw == nil || v.hw.ID() != id {
		return false
	}
	v.hw = nil
	return true
}

// Hardware returns the attached board's ID, or "".
func (v *VirtualBoard) Hardware() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hw == nil {
		return ""
	}
	return v.hw.ID()
}

// Tilt moves one axis (0 x, 1 y, 2 z) by delta, clamped to the sensor range.
func (v *VirtualBoard) Tilt(a int, delta float64) {
	if a < 0 || a > 2 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	t := v.tilt[a] + delta
	if t > axis.AxisMax {
		t = axis.AxisMax
	}
	if t < axis.AxisMin {
		t = axis.AxisMin
	}
	v.tilt[a] = t
}

// Level puts the board flat again.
func (v *VirtualBoard) Level() {
	v.mu.Lock()
	v.tilt = [3]float64{}
	v.mu.Unlock()
}

// Axes reports the simulated tilt.
func (v *VirtualBoard) Axes() (x, y, z float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tilt[0], v.tilt[1], v.tilt[2]
}

func contains(keys []gesture.Key, k gesture.Key) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
