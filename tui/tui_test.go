package tui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-trellis/gesture"
	"go-trellis/grid"
	"go-trellis/midi"
	"go-trellis/sequencer"
	"go-trellis/theme"
)

type fakeHardware struct {
	id      string
	pressed []gesture.Key
	leds    map[int]theme.RGB
}

func newFakeHardware(id string) *fakeHardware {
	return &fakeHardware{id: id, leds: make(map[int]theme.RGB)}
}

func (f *fakeHardware) ID() string             { return f.id }
func (f *fakeHardware) Pressed() []gesture.Key { return append([]gesture.Key(nil), f.pressed...) }
func (f *fakeHardware) Set(i int, c theme.RGB) { f.leds[i] = c }
func (f *fakeHardware) Fill(c theme.RGB) {
	for i := 0; i < 32; i++ {
		f.leds[i] = c
	}
}

func TestStickyKeysMostRecentFirst(t *testing.T) {
	v := NewVirtualBoard(grid.DefaultBoard())
	a, b := gesture.Key{Row: 0, Col: 0}, gesture.Key{Row: 3, Col: 4}

	v.Toggle(a)
	v.Toggle(b)
	if got := v.Pressed(); !reflect.DeepEqual(got, []gesture.Key{b, a}) {
		t.Fatalf("pressed: got=%v", got)
	}
	if v.Toggle(a) {
		t.Fatalf("second toggle should release")
	}
	if got := v.Pressed(); !reflect.DeepEqual(got, []gesture.Key{b}) {
		t.Fatalf("pressed after release: got=%v", got)
	}
	v.ReleaseAll()
	if len(v.Pressed()) != 0 {
		t.Fatalf("keys left after release all")
	}
}

func TestHardwareMergeAndMirror(t *testing.T) {
	v := NewVirtualBoard(grid.DefaultBoard())
	red := theme.RGB{255, 0, 0}
	v.Set(24, red)

	hw := newFakeHardware("lp")
	v.Attach(hw)
	if hw.leds[24] != red || len(hw.leds) != 32 {
		t.Fatalf("state not replayed: %d leds, 24=%v", len(hw.leds), hw.leds[24])
	}

	v.Set(3, red)
	if hw.leds[3] != red {
		t.Fatalf("write not mirrored")
	}

	shared := gesture.Key{Row: 1, Col: 1}
	hw.pressed = []gesture.Key{{Row: 2, Col: 2}, shared}
	v.Toggle(shared)
	v.Toggle(gesture.Key{Row: 0, Col: 7})
	want := []gesture.Key{{Row: 2, Col: 2}, shared, {Row: 0, Col: 7}}
	if got := v.Pressed(); !reflect.DeepEqual(got, want) {
		t.Fatalf("merged: got=%v want=%v", got, want)
	}

	if v.Detach("other") {
		t.Fatalf("detached the wrong board")
	}
	if !v.Detach("lp") || v.Hardware() != "" {
		t.Fatalf("board still attached")
	}
	v.Set(5, red)
	if _, ok := hw.leds[5]; ok {
		t.Fatalf("write reached a detached board")
	}
}

func TestTiltClamps(t *testing.T) {
	v := NewVirtualBoard(grid.DefaultBoard())
	for i := 0; i < 10; i++ {
		v.Tilt(1, TiltStep)
		v.Tilt(2, -TiltStep)
	}
	if x, y, z := v.Axes(); x != 0 || y != 10 || z != -10 {
		t.Fatalf("axes: got=(%v,%v,%v)", x, y, z)
	}
	v.Level()
	if x, y, z := v.Axes(); x != 0 || y != 0 || z != 0 {
		t.Fatalf("not level: (%v,%v,%v)", x, y, z)
	}
}

func TestChangedCollapses(t *testing.T) {
	v := NewVirtualBoard(grid.DefaultBoard())
	v.Set(0, theme.RGB{1, 2, 3})
	v.Fill(theme.RGB{})
	<-v.Changed()
	select {
	case <-v.Changed():
		t.Fatalf("burst produced two signals")
	default:
	}
}

func TestStatusFeedKeepsLatest(t *testing.T) {
	f := NewStatusFeed()
	f.Publish(sequencer.Status{Step: 1})
	f.Publish(sequencer.Status{Step: 2})
	if got := <-f; got.Step != 2 {
		t.Fatalf("got step %d want 2", got.Step)
	}
}

func newTestModel() Model {
	v := NewVirtualBoard(grid.DefaultBoard())
	return NewModel(v, NewStatusFeed(), nil, theme.New(theme.DefaultPalette()), theme.DefaultLEDPalette(), "")
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelKeys(t *testing.T) {
	m := newTestModel()
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{','}})
	want := []gesture.Key{{Row: 3, Col: 7}, {Row: 1, Col: 0}}
	if got := m.Board.Pressed(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pressed: got=%v want=%v", got, want)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	if len(m.Board.Pressed()) != 0 {
		t.Fatalf("space did not release")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if x, y, z := m.Board.Axes(); x != -TiltStep || y != TiltStep || z != TiltStep {
		t.Fatalf("tilt: (%v,%v,%v)", x, y, z)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("esc did not quit")
	}
}

func TestModelDeviceEvents(t *testing.T) {
	m := newTestModel()
	m.Board.Set(0, theme.RGB{9, 9, 9})

	next, _ := m.Update(DeviceEventMsg{Type: midi.DeviceDisconnected, ID: "nothing"})
	m = next.(Model)
	if m.Board.Hardware() != "" {
		t.Fatalf("hardware appeared from a disconnect")
	}

	next, _ = m.Update(StatusMsg(sequencer.Status{Running: true, Step: 3, LastStep: 8, Mode: sequencer.ModeShift}))
	m = next.(Model)
	view := m.View()
	for _, want := range []string{"PLAY", "step:03/08", "shift", "clock: none"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
