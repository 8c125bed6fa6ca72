package sequencer

type source int

const (
	srcPrimary source = iota
	srcShift
	srcManual
)

// owner is who started a sounding voice: a grid column, or a manual pad.
type owner struct {
	src    source
	column int
}

// voiceTable tracks every sounding (channel, pitch) so that no pitch gets a
// second note-on without a note-off in between, and so stop can flush all.
type voiceTable struct {
	out    EventSink
	active [16][128]bool
	owners [16][128]owner
	count  int
}

func newVoiceTable(out EventSink) *voiceTable {
	return &voiceTable{out: out}
}

// Start sounds a voice, releasing it first if it is already on.
func (v *voiceTable) Start(o owner, channel, pitch, velocity uint8) {
	ch, p := channel&0x0F, pitch&0x7F
	if v.active[ch][p] {
		v.out.NoteOff(p, ch)
	} else {
		v.count++
	}
	v.out.NoteOn(p, velocity, ch)
	v.active[ch][p] = true
	v.owners[ch][p] = o
}

// Stop releases the voices still owned by o. Voices retriggered by another
// owner since are left alone.
func (v *voiceTable) Stop(o owner) int {
	return v.releaseWhere(func(w owner) bool { return w == o })
}

// StopSource releases every voice started by one source.
func (v *voiceTable) StopSource(src source) int {
	return v.releaseWhere(func(w owner) bool { return w.src == src })
}

// Release frees one manual voice
func (v *voiceTable) Release(channel, pitch uint8) bool {
	ch, p := channel&0x0F, pitch&0x7F
	if !v.active[ch][p] || v.owners[ch][p].src != srcManual {
		return false
	}
	v.off(ch, p)
	return true
}

// Flush releases everything, in channel then pitch order.
func (v *voiceTable) Flush() int {
	return v.releaseWhere(func(owner) bool { return true })
}

// Sounding is the number of voices currently on
func (v *voiceTable) Sounding() int {
	return v.count
}

func (v *voiceTable) releaseWhere(match func(owner) bool) int {
	if v.count == 0 {
		return 0
	}
	n := 0
	for ch := range v.active {
		for p := range v.active[ch] {
			if v.active[ch][p] && match(v.owners[ch][p]) {
				v.off(uint8(ch), uint8(p))
				n++
			}
		}
	}
	return n
}

func (v *voiceTable) off(ch, p uint8) {
	v.out.NoteOff(p, ch)
	v.active[ch][p] = false
	v.count--
}
