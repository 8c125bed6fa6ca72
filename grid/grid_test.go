package grid

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBoardPhysicalIndex(t *testing.T) {
	b := DefaultBoard()
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := []struct {
		row, col, want int
	}{
		{0, 0, 24},
		{3, 0, 0},
		{0, 7, 31},
		{3, 7, 7},
		{1, 2, 18},
		{4, 8, 24}, // wraps to (0,0)
		{5, 9, 17},
	}
	for _, c := range cases {
		if got := b.PhysicalIndex(c.row, c.col); got != c.want {
			t.Fatalf("PhysicalIndex(%d,%d): got=%d want=%d", c.row, c.col, got, c.want)
		}
	}

	for idx := 0; idx < b.Size(); idx++ {
		r, c, ok := b.KeyAt(idx)
		if !ok {
			t.Fatalf("KeyAt(%d): not found", idx)
		}
		if got := b.PhysicalIndex(r, c); got != idx {
			t.Fatalf("KeyAt(%d) round trip: got=%d", idx, got)
		}
	}
}

func TestLoadBoard(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "board.yaml")
	data := "name: linear\nwidth: 2\nheight: 2\npermutation: [0, 2, 1, 3]\n"
	if err := os.WriteFile(good, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	b, err := LoadBoard(good)
	if err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}
	if b.Width != 2 || b.Height != 2 || b.PhysicalIndex(0, 1) != 1 {
		t.Fatalf("unexpected board: %+v", b)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("width: 2\nheight: 2\npermutation: [0, 0, 1, 3]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBoard(bad); err == nil {
		t.Fatalf("LoadBoard accepted a repeated index")
	}
	if _, err := LoadBoard(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("LoadBoard accepted a missing file")
	}
}

func TestNewNoteGridPitchLayouts(t *testing.T) {
	b := DefaultBoard()

	linear := NewNoteGrid(17, 12, 36, PitchLinear, b)
	if linear.Columns() != 17 || linear.Rows() != 12 {
		t.Fatalf("shape: got=%dx%d", linear.Columns(), linear.Rows())
	}
	p := linear.Pitches()
	if p[0] != 36 || p[5] != 41 || p[11] != 47 {
		t.Fatalf("linear pitches: %v", p)
	}

	block := NewNoteGrid(8, 8, 36, PitchBlock, b)
	p = block.Pitches()
	if p[0] != 36 || p[3] != 39 || p[4] != 36 || p[7] != 39 {
		t.Fatalf("block pitches: %v", p)
	}

	var zero PitchLayout
	if got := NewNoteGrid(1, 12, 36, zero, b).Pitches(); got[4] != 36 || got[8] != 36 || got[11] != 39 {
		t.Fatalf("zero layout should repeat every four rows: %v", got)
	}

	// LED indices repeat every board block
	if linear.At(4, 8).LedIndex != linear.At(0, 0).LedIndex {
		t.Fatalf("led index should repeat per board block")
	}
}

func TestTapAndHold(t *testing.T) {
	var n Note

	n.Hold()
	if !n.On || !n.Accented {
		t.Fatalf("hold on off note: %+v", n)
	}
	n.Tap()
	if n.On || n.Accented {
		t.Fatalf("tap on accented note: %+v", n)
	}
	n.Tap()
	if !n.On || n.Accented {
		t.Fatalf("tap on off note: %+v", n)
	}
	n.Hold()
	n.Hold()
	if !n.On || n.Accented {
		t.Fatalf("double hold: %+v", n)
	}
	if n.Velocity() != 96 {
		t.Fatalf("velocity: got=%d want=96", n.Velocity())
	}
}

func TestClearKeepsAccents(t *testing.T) {
	g := NewNoteGrid(8, 4, 36, PitchLinear, DefaultBoard())
	g.At(1, 2).Hold()
	g.ToggleOn(0, 0)
	g.Clear()
	if g.At(0, 0).On || g.At(1, 2).On {
		t.Fatalf("clear left notes on")
	}
	if !g.At(1, 2).Accented {
		t.Fatalf("clear dropped the accent")
	}
}

func TestRotateRoundTrip(t *testing.T) {
	g := NewNoteGrid(17, 4, 36, PitchLinear, DefaultBoard())
	g.ToggleOn(0, 0)
	g.ToggleOn(1, 3)
	g.ToggleAccent(1, 3)
	g.ToggleOn(2, 5)
	g.ToggleOn(3, 12) // beyond lastStep, must not move

	before := dump(g)
	g.RotateLeft(5)

	if !g.At(0, 5).On || g.At(0, 0).On {
		t.Fatalf("column 0 should wrap to lastStep")
	}
	if !g.At(1, 2).On || !g.At(1, 2).Accented {
		t.Fatalf("accent should travel with the note")
	}

	g.RotateRight(5)
	after := dump(g)
	for c := range before {
		for r := range before[c] {
			if before[c][r] != after[c][r] {
				t.Fatalf("round trip mismatch at (%d,%d): got=%v want=%v", r, c, after[c][r], before[c][r])
			}
		}
	}
}

func TestDuplicateFirstMeasure(t *testing.T) {
	g := NewNoteGrid(12, 4, 36, PitchLinear, DefaultBoard())
	g.ToggleOn(0, 1)
	g.At(2, 3).Hold()
	g.ToggleOn(3, 10)

	g.DuplicateFirstMeasure()

	if !g.At(0, 9).On {
		t.Fatalf("column 1 not copied to 9")
	}
	if !g.At(2, 11).On || !g.At(2, 11).Accented {
		t.Fatalf("column 3 not copied to 11 with accent")
	}
	if g.At(3, 10).On {
		t.Fatalf("column 10 should be overwritten by column 2")
	}
}

func TestViewportClamping(t *testing.T) {
	var v Viewport

	if v.RowDown() || v.ColumnDown() {
		t.Fatalf("offsets must not go negative")
	}
	if !v.RowUp(12) || !v.RowUp(12) || v.RowUp(12) {
		t.Fatalf("row offset should stop at rows-4")
	}
	if v.RowOffset != 8 {
		t.Fatalf("row offset: got=%d want=8", v.RowOffset)
	}
	if !v.ColumnUp(17) || v.ColumnUp(17) {
		t.Fatalf("column offset should stop at columns-8")
	}
	if !v.ContainsColumn(15) || v.ContainsColumn(16) || v.ContainsColumn(7) {
		t.Fatalf("ContainsColumn wrong for offset %d", v.ColumnOffset)
	}
	r, c := v.Logical(1, 2)
	if r != 9 || c != 10 {
		t.Fatalf("Logical: got=(%d,%d) want=(9,10)", r, c)
	}
}

func TestCellGridClearRow(t *testing.T) {
	g := NewCellGrid(8, 4, DefaultBoard())
	g.At(1, 0).On = true
	g.At(1, 5).On = true
	g.At(2, 5).On = true
	g.ClearRow(1)
	if g.At(1, 0).On || g.At(1, 5).On || !g.At(2, 5).On {
		t.Fatalf("ClearRow touched the wrong cells")
	}
}

func dump(g *NoteGrid) [][][2]bool {
	out := make([][][2]bool, g.Columns())
	for c := range out {
		out[c] = make([][2]bool, g.Rows())
		for r := range out[c] {
			n := g.At(r, c)
			out[c][r] = [2]bool{n.On, n.Accented}
		}
	}
	return out
}

func TestModWraps(t *testing.T) {
	for _, c := range [][3]int{{5, 4, 1}, {-1, 4, 3}, {-9, 8, 7}, {0, 3, 0}} {
		if got := Mod(c[0], c[1]); got != c[2] {
			t.Fatalf("Mod(%d,%d): got=%d want=%d", c[0], c[1], got, c[2])
		}
	}
}
