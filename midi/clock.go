package midi

import (
	"fmt"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-trellis/debug"
	"go-trellis/sequencer"
)

// ClockBuffer holds a little over four quarter notes of pulses.
const ClockBuffer = 128

// ClockInput listens to a MIDI port and queues clock and transport pulses for
// the engine. The listener never blocks; pulses that do not fit are dropped.
type ClockInput struct {
	name    string
	pulses  chan sequencer.Pulse
	stop    func()
	dropped uint64
}

// NewClockInput returns an input that is fed by hand through Feed.
func NewClockInput(name string, buffer int) *ClockInput {
	if buffer <= 0 {
		buffer = ClockBuffer
	}
	return &ClockInput{name: name, pulses: make(chan sequencer.Pulse, buffer)}
}

// OpenClock starts listening on in.
func OpenClock(in drivers.In) (*ClockInput, error) {
	c := NewClockInput(in.String(), ClockBuffer)
	stop, err := gomidi.ListenTo(in, c.Feed, gomidi.UseTimeCode())
	if err != nil {
		return nil, fmt.Errorf("listen to %s: %w", in.String(), err)
	}
	c.stop = stop
	debug.Log("clock", "listening on %s", c.name)
	return c, nil
}

// Feed handles one incoming message. It has the gomidi listener signature.
func (c *ClockInput) Feed(msg gomidi.Message, timestampms int32) {
	p, ok := pulseFor(msg)
	if !ok {
		return
	}
	select {
	case c.pulses <- p:
	default:
		n := atomic.AddUint64(&c.dropped, 1)
		debug.LogEvery(24, "clock", "queue full, dropped=%d", n)
	}
}

// Poll returns the next queued pulse without blocking.
func (c *ClockInput) Poll() (sequencer.Pulse, bool) {
	select {
	case p := <-c.pulses:
		return p, true
	default:
		return 0, false
	}
}

// Dropped is the number of pulses lost to a full queue.
func (c *ClockInput) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

func (c *ClockInput) Name() string {
	return c.name
}

func (c *ClockInput) Close() error {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	return nil
}
