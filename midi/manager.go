package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-trellis/debug"
	"go-trellis/grid"
)

// PortTimeout bounds port enumeration; CoreMIDI can hang.
const PortTimeout = 3 * time.Second

// ErrPortTimeout is returned when the driver does not answer in time.
var ErrPortTimeout = errors.New("midi port enumeration timed out")

// DeviceEvent is emitted when a board connects or disconnects
type DeviceEvent struct {
	Type  DeviceEventType
	Board *Board // nil on disconnect
	ID    string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// Ports lists the MIDI ports, giving up after timeout.
func Ports(timeout time.Duration) ([]drivers.In, []drivers.Out, error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(timeout):
		return nil, nil, ErrPortTimeout
	}
}

// FindIn returns the first input whose name contains name, ignoring case.
func FindIn(name string) (drivers.In, error) {
	ins, _, err := Ports(PortTimeout)
	if err != nil {
		return nil, err
	}
	for _, p := range ins {
		if portMatches(p.String(), name) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no input port matching %q", name)
}

// FindOut returns the first output whose name contains name, ignoring case.
func FindOut(name string) (drivers.Out, error) {
	_, outs, err := Ports(PortTimeout)
	if err != nil {
		return nil, err
	}
	for _, p := range outs {
		if portMatches(p.String(), name) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no output port matching %q", name)
}

func portMatches(port, name string) bool {
	return name != "" && strings.Contains(strings.ToLower(port), strings.ToLower(name))
}

// DeviceManager handles hot-plug detection of Launchpad boards
type DeviceManager struct {
	layout   grid.Board
	ports    []string // port name fragments; empty means any Launchpad
	boards   map[string]*Board
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceManager creates a manager whose boards use layout. When ports are
// given only inputs whose names contain one of them are opened.
func NewDeviceManager(layout grid.Board, ports ...string) *DeviceManager {
	return &DeviceManager{
		layout:   layout,
		ports:    ports,
		boards:   make(map[string]*Board),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of connect/disconnect events. It is closed when
// Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Board returns the first connected board, or nil
func (dm *DeviceManager) Board() *Board {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, b := range dm.boards {
		return b
	}
	return nil
}

// Run polls for devices until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	ins, outs, err := Ports(PortTimeout)
	if err != nil {
		// user needs to run: sudo killall coreaudiod midiserver
		debug.LogEvery(10, "devices", "%v", err)
		return
	}

	seen := make(map[string]bool)
	for _, in := range ins {
		name := in.String()
		if !dm.wants(name) {
			continue
		}
		seen[name] = true

		dm.mu.RLock()
		_, exists := dm.boards[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		b, err := OpenBoard(name, dm.layout, in, matchingOut(name, outs))
		if err != nil {
			debug.Warn("devices", err, "open board %s", name)
			continue
		}
		dm.mu.Lock()
		dm.boards[name] = b
		dm.mu.Unlock()
		debug.Log("devices", "connected %s", name)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Board: b, ID: name})
	}

	dm.mu.Lock()
	var gone []string
	for id, b := range dm.boards {
		if !seen[id] {
			b.Close()
			delete(dm.boards, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()
	for _, id := range gone {
		debug.Log("devices", "disconnected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, b := range dm.boards {
		b.Close()
	}
	dm.boards = make(map[string]*Board)
}

func (dm *DeviceManager) wants(name string) bool {
	if len(dm.ports) == 0 {
		return isLaunchpad(name)
	}
	for _, p := range dm.ports {
		if portMatches(name, p) {
			return true
		}
	}
	return false
}

func matchingOut(name string, outs []drivers.Out) drivers.Out {
	for _, op := range outs {
		if strings.EqualFold(op.String(), name) {
			return op
		}
	}
	return nil
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
