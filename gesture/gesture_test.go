package gesture

import (
	"reflect"
	"testing"
)

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestTapHoldThreshold(t *testing.T) {
	cases := []struct {
		held int
		want EventKind
	}{
		{0, Tap},
		{23, Tap},
		{24, Hold},
		{100, Hold},
	}
	k := Key{1, 2}
	for _, c := range cases {
		d := NewDispatcher(24)
		if got := kinds(d.Update([]Key{k}, 10)); !reflect.DeepEqual(got, []EventKind{Press}) {
			t.Fatalf("press: got=%v", got)
		}
		events := d.Update(nil, 10+c.held)
		if got := kinds(events); !reflect.DeepEqual(got, []EventKind{c.want, Release}) {
			t.Fatalf("held %d: got=%v want=[%v release]", c.held, got, c.want)
		}
		if events[0].Key != k || events[0].Ticks != c.held {
			t.Fatalf("held %d: event %+v", c.held, events[0])
		}
	}
}

func TestTickRewindUnderHeldKey(t *testing.T) {
	d := NewDispatcher(24)
	k := Key{2, 2}
	d.Update([]Key{k}, 500)
	// transport restarted while the key was down
	events := d.Update(nil, 3)
	if got := kinds(events); !reflect.DeepEqual(got, []EventKind{Tap, Release}) {
		t.Fatalf("got=%v", got)
	}
	if events[0].Ticks != 0 {
		t.Fatalf("ticks: got=%d want=0", events[0].Ticks)
	}
}

func TestUnchangedSetIsQuiet(t *testing.T) {
	d := NewDispatcher(24)
	d.Update([]Key{{0, 0}}, 0)
	if events := d.Update([]Key{{0, 0}}, 5); events != nil {
		t.Fatalf("repeat snapshot: got=%v", events)
	}
	if events := d.Update(nil, 6); len(events) != 2 {
		t.Fatalf("release: got=%v", events)
	}
	if events := d.Update(nil, 7); events != nil {
		t.Fatalf("repeat empty: got=%v", events)
	}
}

func TestChordLatchSuppressesTaps(t *testing.T) {
	d := NewDispatcher(24)
	a, b, c := Key{3, 0}, Key{0, 0}, Key{3, 1}

	d.Update([]Key{a}, 0)
	if got := kinds(d.Update([]Key{b, a}, 1)); !reflect.DeepEqual(got, []EventKind{Chord}) {
		t.Fatalf("two keys: got=%v", got)
	}
	events := d.Update([]Key{c, b, a}, 2)
	if len(events) != 1 || events[0].Kind != Chord || !reflect.DeepEqual(events[0].Keys, []Key{c, b, a}) {
		t.Fatalf("three keys: got=%+v", events)
	}
	if !d.Latched() {
		t.Fatalf("latch not set")
	}

	// releasing down to one key must not look like a fresh press
	if got := kinds(d.Update([]Key{a}, 3)); !reflect.DeepEqual(got, []EventKind{Chord}) {
		t.Fatalf("dissolve: got=%v", got)
	}
	if got := kinds(d.Update(nil, 4)); !reflect.DeepEqual(got, []EventKind{Release}) {
		t.Fatalf("release after chord: got=%v", got)
	}
	if d.Latched() {
		t.Fatalf("latch not cleared")
	}

	if got := kinds(d.Update([]Key{c}, 5)); !reflect.DeepEqual(got, []EventKind{Press}) {
		t.Fatalf("press after latch: got=%v", got)
	}
}

func TestKeySwapBetweenPolls(t *testing.T) {
	d := NewDispatcher(24)
	d.Update([]Key{{0, 1}}, 0)
	events := d.Update([]Key{{0, 2}}, 30)
	if got := kinds(events); !reflect.DeepEqual(got, []EventKind{Hold, Press}) {
		t.Fatalf("swap: got=%v", got)
	}
	if events[0].Key != (Key{0, 1}) || events[1].Key != (Key{0, 2}) {
		t.Fatalf("swap keys: %+v", events)
	}
}

func TestTableMatch(t *testing.T) {
	table := Table{
		{Name: "clear", Keys: []Key{{3, 0}, {0, 0}, {3, 1}}, Kind: Exact},
		{Name: "cc-edit", Keys: []Key{{3, 0}, {0, 0}, {3, 3}}, Kind: Exact},
		{Name: "offset", Keys: []Key{{3, 6}, {0, 6}}, Kind: Suffix},
		{Name: "manual-channel", Keys: []Key{{3, 4}, {2, 4}, {0, 5}}, Kind: Exact},
		{Name: "manual-note", Keys: []Key{{3, 4}, {0, 5}}, Kind: Suffix},
	}

	cases := []struct {
		pressed []Key
		want    string
		prefix  []Key
	}{
		{[]Key{{3, 0}, {0, 0}, {3, 1}}, "clear", nil},
		{[]Key{{0, 0}, {3, 1}}, "", nil},
		{[]Key{{3, 6}, {0, 6}}, "offset", []Key{}},
		{[]Key{{2, 5}, {3, 6}, {0, 6}}, "offset", []Key{{2, 5}}},
		{[]Key{{1, 1}, {2, 2}, {3, 4}, {0, 5}}, "manual-note", []Key{{1, 1}, {2, 2}}},
		{[]Key{{3, 4}, {2, 4}, {0, 5}}, "manual-channel", nil},
		{[]Key{{1, 1}, {2, 2}}, "", nil},
		{[]Key{{0, 6}}, "", nil},
	}
	for _, c := range cases {
		m, ok := table.Match(c.pressed, nil)
		if c.want == "" {
			if ok {
				t.Fatalf("%v: unexpected match %s", c.pressed, m.Rule.Name)
			}
			continue
		}
		if !ok || m.Rule.Name != c.want {
			t.Fatalf("%v: got=%q want=%q", c.pressed, m.Rule.Name, c.want)
		}
		if len(m.Prefix) != len(c.prefix) || (len(c.prefix) > 0 && !reflect.DeepEqual(m.Prefix, c.prefix)) {
			t.Fatalf("%v: prefix got=%v want=%v", c.pressed, m.Prefix, c.prefix)
		}
	}

	onlyCC := func(r Rule) bool { return r.Name == "cc-edit" }
	if _, ok := table.Match([]Key{{3, 0}, {0, 0}, {3, 1}}, onlyCC); ok {
		t.Fatalf("inactive rule matched")
	}
	if m, ok := table.Match([]Key{{3, 0}, {0, 0}, {3, 3}}, onlyCC); !ok || m.Rule.Name != "cc-edit" {
		t.Fatalf("active rule not matched")
	}

	m, _ := table.Match([]Key{{2, 5}, {3, 6}, {0, 6}}, nil)
	if p, ok := m.Param(); !ok || p != (Key{2, 5}) {
		t.Fatalf("Param: got=%v ok=%v", p, ok)
	}
}
