package grid

// Visible window of the pattern on the 8x4 board.
const (
	ViewColumns = 8
	ViewRows    = 4
)

// Viewport is the window of a larger grid currently shown on the board
type Viewport struct {
	RowOffset    int
	ColumnOffset int
}

// RowUp moves the window one board height down the pattern, if it fits.
func (v *Viewport) RowUp(rows int) bool {
	next := v.RowOffset + ViewRows
	if next > rows-ViewRows {
		return false
	}
	v.RowOffset = next
	return true
}

func (v *Viewport) RowDown() bool {
	next := v.RowOffset - ViewRows
	if next < 0 {
		return false
	}
	v.RowOffset = next
	return true
}

// ColumnUp moves the window one measure to the right, if it fits.
func (v *Viewport) ColumnUp(columns int) bool {
	next := v.ColumnOffset + ViewColumns
	if next > columns-ViewColumns {
		return false
	}
	v.ColumnOffset = next
	return true
}

func (v *Viewport) ColumnDown() bool {
	next := v.ColumnOffset - ViewColumns
	if next < 0 {
		return false
	}
	v.ColumnOffset = next
	return true
}

// ContainsColumn reports whether a logical column is on screen
func (v Viewport) ContainsColumn(col int) bool {
	return col >= v.ColumnOffset && col < v.ColumnOffset+ViewColumns
}

// Logical translates a board key to grid coordinates
func (v Viewport) Logical(row, col int) (int, int) {
	return row + v.RowOffset, col + v.ColumnOffset
}
