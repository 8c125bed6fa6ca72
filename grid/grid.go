package grid

// PitchLayout decides how pitches are assigned to rows
type PitchLayout int

const (
	// PitchBlock repeats four pitches per board block: startingPitch + row mod 4.
	PitchBlock PitchLayout = iota
	// PitchLinear gives every row its own pitch: startingPitch + row.
	PitchLinear
)

// Cell is the atomic on/off unit with its fixed LED position
type Cell struct {
	LedIndex int
	On       bool
}

// Note is a cell that plays a pitch
type Note struct {
	Cell
	Pitch    uint8
	Accented bool
}

// Velocity is the note-on velocity for the note's accent state
func (n *Note) Velocity() uint8 {
	if n.Accented {
		return 127
	}
	return 96
}

// Tap toggles the note; switching an accented note off drops the accent too.
func (n *Note) Tap() {
	n.On = !n.On
	if n.Accented {
		n.Accented = false
	}
}

// Hold toggles the accent, switching the note on first if needed.
func (n *Note) Hold() {
	if !n.On {
		n.On = true
	}
	n.Accented = !n.Accented
}

// NoteGrid is a fixed columns x rows pattern of notes
type NoteGrid struct {
	columns [][]*Note
	rows    int
}

// NewNoteGrid builds the grid column by column. LED indices come from the
// board permutation and repeat every board block.
func NewNoteGrid(columns, rows int, startingPitch uint8, layout PitchLayout, board Board) *NoteGrid {
	g := &NoteGrid{columns: make([][]*Note, columns), rows: rows}
	for c := 0; c < columns; c++ {
		col := make([]*Note, rows)
		for r := 0; r < rows; r++ {
			pitch := int(startingPitch) + r%4
			if layout == PitchLinear {
				pitch = int(startingPitch) + r
			}
			if pitch > 127 {
				pitch = 127
			}
			col[r] = &Note{
				Cell:  Cell{LedIndex: board.PhysicalIndex(r, c)},
				Pitch: uint8(pitch),
			}
		}
		g.columns[c] = col
	}
	return g
}

func (g *NoteGrid) Columns() int { return len(g.columns) }
func (g *NoteGrid) Rows() int    { return g.rows }

// At returns the note at (row, col) or nil outside the grid
func (g *NoteGrid) At(row, col int) *Note {
	if col < 0 || col >= len(g.columns) || row < 0 || row >= g.rows {
		return nil
	}
	return g.columns[col][row]
}

// Column returns the notes of one column, nil outside the grid
func (g *NoteGrid) Column(col int) []*Note {
	if col < 0 || col >= len(g.columns) {
		return nil
	}
	return g.columns[col]
}

// Pitches lists the pitch of every row
func (g *NoteGrid) Pitches() []uint8 {
	out := make([]uint8, g.rows)
	if len(g.columns) == 0 {
		return out
	}
	for r, n := range g.columns[0] {
		out[r] = n.Pitch
	}
	return out
}

func (g *NoteGrid) ToggleOn(row, col int) {
	if n := g.At(row, col); n != nil {
		n.On = !n.On
	}
}

func (g *NoteGrid) ToggleAccent(row, col int) {
	if n := g.At(row, col); n != nil {
		n.Accented = !n.Accented
	}
}

// Clear switches every note off. Accents stay.
func (g *NoteGrid) Clear() {
	for _, col := range g.columns {
		for _, n := range col {
			n.On = false
		}
	}
}

// RotateLeft shifts columns 0..lastStep one place left; column 0 wraps to lastStep.
func (g *NoteGrid) RotateLeft(lastStep int) {
	last := g.clampStep(lastStep)
	if last <= 0 {
		return
	}
	first := g.snapshot(0)
	for c := 0; c < last; c++ {
		g.copyColumn(c, c+1)
	}
	g.restore(last, first)
}

// RotateRight shifts columns 0..lastStep one place right; column lastStep wraps to 0.
func (g *NoteGrid) RotateRight(lastStep int) {
	last := g.clampStep(lastStep)
	if last <= 0 {
		return
	}
	end := g.snapshot(last)
	for c := last; c > 0; c-- {
		g.copyColumn(c, c-1)
	}
	g.restore(0, end)
}

// DuplicateFirstMeasure copies columns [0,8) over [8,16).
func (g *NoteGrid) DuplicateFirstMeasure() {
	for c := 8; c < 16 && c < len(g.columns); c++ {
		g.copyColumn(c, c-8)
	}
}

func (g *NoteGrid) clampStep(lastStep int) int {
	if lastStep >= len(g.columns) {
		return len(g.columns) - 1
	}
	return lastStep
}

type noteState struct{ on, accented bool }

func (g *NoteGrid) snapshot(col int) []noteState {
	out := make([]noteState, g.rows)
	for r, n := range g.columns[col] {
		out[r] = noteState{n.On, n.Accented}
	}
	return out
}

func (g *NoteGrid) restore(col int, states []noteState) {
	for r, s := range states {
		g.columns[col][r].On = s.on
		g.columns[col][r].Accented = s.accented
	}
}

func (g *NoteGrid) copyColumn(dst, src int) {
	for r := 0; r < g.rows; r++ {
		g.columns[dst][r].On = g.columns[src][r].On
		g.columns[dst][r].Accented = g.columns[src][r].Accented
	}
}

// CellGrid is a plain on/off grid used by the editing screens
type CellGrid struct {
	columns [][]*Cell
	rows    int
}

func NewCellGrid(columns, rows int, board Board) *CellGrid {
	g := &CellGrid{columns: make([][]*Cell, columns), rows: rows}
	for c := 0; c < columns; c++ {
		col := make([]*Cell, rows)
		for r := 0; r < rows; r++ {
			col[r] = &Cell{LedIndex: board.PhysicalIndex(r, c)}
		}
		g.columns[c] = col
	}
	return g
}

func (g *CellGrid) Columns() int { return len(g.columns) }
func (g *CellGrid) Rows() int    { return g.rows }

func (g *CellGrid) At(row, col int) *Cell {
	if col < 0 || col >= len(g.columns) || row < 0 || row >= g.rows {
		return nil
	}
	return g.columns[col][row]
}

// ClearRow switches off one row across all columns
func (g *CellGrid) ClearRow(row int) {
	for _, col := range g.columns {
		if row >= 0 && row < len(col) {
			col[row].On = false
		}
	}
}
