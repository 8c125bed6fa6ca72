// Package midi holds the gomidi adapters: clock input, note/CC output and
// the Launchpad X used as an 8x4 board.
package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-trellis/sequencer"
)

// pulseFor maps realtime messages onto engine pulses. Continue and anything
// else is not a pulse.
func pulseFor(msg gomidi.Message) (sequencer.Pulse, bool) {
	switch {
	case msg.Is(gomidi.TimingClockMsg):
		return sequencer.ClockTick, true
	case msg.Is(gomidi.StartMsg):
		return sequencer.TransportStart, true
	case msg.Is(gomidi.StopMsg):
		return sequencer.TransportStop, true
	}
	return 0, false
}

// padEvent is a pad going down or up on a Launchpad, in Launchpad rows
// (row 0 at the bottom).
type padEvent struct {
	Row, Col int
	Down     bool
}

// padFor decodes a programmer-mode pad message. Side and top buttons are
// reported too; the board decides what it uses.
func padFor(msg gomidi.Message) (padEvent, bool) {
	var channel, note, velocity, cc uint8
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		row, col := noteToRowCol(note)
		return padEvent{Row: row, Col: col, Down: true}, row >= 0
	case msg.GetNoteEnd(&channel, &note):
		row, col := noteToRowCol(note)
		return padEvent{Row: row, Col: col}, row >= 0
	case msg.GetControlChange(&channel, &cc, &velocity):
		row, col := ccToRowCol(cc)
		return padEvent{Row: row, Col: col, Down: velocity > 0}, row >= 0
	}
	return padEvent{}, false
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, ..., 89
// Top row:   Row 8 = CC 91-98

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
