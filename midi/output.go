package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-trellis/debug"
)

// Output sends the engine's notes and CCs to a synth port.
type Output struct {
	name string
	port drivers.Out
	send func(msg gomidi.Message) error
}

// NewOutput wraps a send function, as returned by gomidi.SendTo.
func NewOutput(name string, send func(msg gomidi.Message) error) *Output {
	return &Output{name: name, send: send}
}

// OpenOutput opens out for sending.
func OpenOutput(out drivers.Out) (*Output, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out.String(), err)
	}
	o := NewOutput(out.String(), send)
	o.port = out
	return o, nil
}

func (o *Output) NoteOn(pitch, velocity, channel uint8) {
	o.write(gomidi.NoteOn(channel, pitch, velocity))
}

func (o *Output) NoteOff(pitch, channel uint8) {
	o.write(gomidi.NoteOff(channel, pitch))
}

func (o *Output) ControlChange(cc, value, channel uint8) {
	o.write(gomidi.ControlChange(channel, cc, value))
}

func (o *Output) write(msg gomidi.Message) {
	if o.send == nil {
		return
	}
	if err := o.send(msg); err != nil {
		debug.Warn("midi-out", err, "send %s to %s", msg, o.name)
	}
}

func (o *Output) Name() string {
	return o.name
}

// Close closes the port. Pending note-offs are the engine's job.
func (o *Output) Close() error {
	o.send = nil
	if o.port != nil {
		return o.port.Close()
	}
	return nil
}
