package pattern

import (
	"io"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Clock resolution of the exported file, matching the 24 ppqn input clock.
const (
	TicksPerQuarter = 24
	TicksPerStep    = 12
)

// ExportOptions carries what the pattern itself does not store
type ExportOptions struct {
	Pitches    []uint8 // pitch per row
	ShiftPhase int     // ticks the shift grid lags the primary grid
	Channel    uint8
	BPM        float64
}

type timedMsg struct {
	at  uint32
	off bool
	msg midi.Message
}

// WriteSMF renders one loop of the pattern (lastStep eighth notes) as a
// two-track file: tempo/meter, then the notes of both grids.
func WriteSMF(w io.Writer, p Pattern, opts ExportOptions) error {
	lastStep := p.LastStep
	if lastStep <= 0 {
		lastStep = DefaultLastStep
	}
	bpm := opts.BPM
	if bpm <= 0 {
		bpm = 120
	}
	loop := uint32(lastStep * TicksPerStep)

	var events []timedMsg
	add := func(cols [][][2]bool, offset uint32) {
		for c := 0; c < lastStep && c < len(cols); c++ {
			start := uint32(c*TicksPerStep) + offset
			if start >= loop {
				continue
			}
			end := start + TicksPerStep
			if end > loop {
				end = loop
			}
			for r, state := range cols[c] {
				if !state[0] || r >= len(opts.Pitches) {
					continue
				}
				vel := uint8(96)
				if state[1] {
					vel = 127
				}
				key := opts.Pitches[r]
				events = append(events,
					timedMsg{at: start, msg: midi.NoteOn(opts.Channel, key, vel)},
					timedMsg{at: end, off: true, msg: midi.NoteOff(opts.Channel, key)},
				)
			}
		}
	}
	add(p.Notes, 0)
	add(p.Shift, uint32(opts.ShiftPhase))

	// note-offs before note-ons on the same tick so retriggers stay paired
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].off && !events[j].off
	})

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(bpm))
	meta.Close(0)
	if err := sm.Add(meta); err != nil {
		return errors.Wrap(err, "add tempo track")
	}

	var notes smf.Track
	var last uint32
	for _, ev := range events {
		notes.Add(ev.at-last, ev.msg)
		last = ev.at
	}
	notes.Close(loop - last)
	if err := sm.Add(notes); err != nil {
		return errors.Wrap(err, "add note track")
	}

	if _, err := sm.WriteTo(w); err != nil {
		return errors.Wrap(err, "write smf")
	}
	return nil
}
