package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-trellis/debug"
	"go-trellis/gesture"
	"go-trellis/grid"
	"go-trellis/theme"
)

var ledSendCount uint64

// BoardRows is how many Launchpad rows, counted from the bottom, form the board.
const BoardRows = grid.ViewRows

// Board drives a Novation Launchpad X in programmer mode as the 8x4 board.
// Board row 0 is Launchpad row 3, so the board sits on the bottom half of
// the pad grid. Presses arrive on the gomidi listener goroutine; the engine
// reads them through Pressed.
type Board struct {
	id     string
	layout grid.Board
	port   drivers.Out
	send   func(msg gomidi.Message) error
	stop   func()

	mu      sync.Mutex
	pressed []gesture.Key // most recent first
	shown   map[int]uint8 // led index -> palette velocity last sent
}

func newBoard(id string, layout grid.Board, send func(msg gomidi.Message) error) *Board {
	return &Board{
		id:     id,
		layout: layout,
		send:   send,
		shown:  make(map[int]uint8),
	}
}

// OpenBoard switches the Launchpad to programmer mode and starts listening
// for pads. Either port may be nil.
func OpenBoard(id string, layout grid.Board, in drivers.In, out drivers.Out) (*Board, error) {
	b := newBoard(id, layout, nil)

	if out != nil {
		send, err := gomidi.SendTo(out)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		b.send = send
		b.port = out

		// programmer mode: F0 00 20 29 02 0C 00 7F F7
		b.write(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		// full brightness: F0 00 20 29 02 0C 08 <brightness> F7
		b.write(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
		// external LED feedback: F0 00 20 29 02 0C 0A 01 01 F7
		b.write(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))
	}

	if in != nil {
		stop, err := gomidi.ListenTo(in, b.Feed)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		b.stop = stop
	}
	return b, nil
}

func (b *Board) ID() string {
	return b.id
}

// Feed handles one message from the Launchpad.
func (b *Board) Feed(msg gomidi.Message, timestampms int32) {
	ev, ok := padFor(msg)
	if !ok || ev.Row >= BoardRows || ev.Col >= grid.ViewColumns {
		return
	}
	k := gesture.Key{Row: BoardRows - 1 - ev.Row, Col: ev.Col}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressed = without(b.pressed, k)
	if ev.Down {
		b.pressed = append([]gesture.Key{k}, b.pressed...)
	}
	debug.Log("lp-pad", "%v down=%v held=%d", k, ev.Down, len(b.pressed))
}

// Pressed returns the held pads, most recently pressed first.
func (b *Board) Pressed() []gesture.Key {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]gesture.Key(nil), b.pressed...)
}

// Set lights one board LED. Writes that would not change the pad are skipped.
func (b *Board) Set(index int, c theme.RGB) {
	row, col, ok := b.layout.KeyAt(index)
	if !ok {
		return
	}
	color := mapRGBToLaunchpad(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	if last, seen := b.shown[index]; seen && last == color {
		return
	}
	b.shown[index] = color

	b.write(gomidi.NoteOn(ChannelStatic, rowColToNote(BoardRows-1-row, col), color))
	count := atomic.AddUint64(&ledSendCount, 1)
	if count%100 == 0 {
		debug.Log("lp-send", "count=%d", count)
	}
}

func (b *Board) Fill(c theme.RGB) {
	for i := 0; i < b.layout.Size(); i++ {
		b.Set(i, c)
	}
}

// write sends msg. Callers hold b.mu once the listener is running.
func (b *Board) write(msg gomidi.Message) {
	if b.send == nil {
		return
	}
	if err := b.send(msg); err != nil {
		debug.Warn("lp-send", err, "board %s", b.id)
	}
}

// Close blanks the whole pad grid and stops listening.
func (b *Board) Close() error {
	b.mu.Lock()
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if row == 8 && col == 8 {
				continue // no LED at 8,8
			}
			b.write(gomidi.NoteOn(ChannelStatic, rowColToNote(row, col), ColorOff))
		}
	}
	b.send = nil
	b.pressed = nil
	b.mu.Unlock()

	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
	if b.port != nil {
		return b.port.Close()
	}
	return nil
}

func without(keys []gesture.Key, k gesture.Key) []gesture.Key {
	out := keys[:0]
	for _, x := range keys {
		if x != k {
			out = append(out, x)
		}
	}
	return out
}
