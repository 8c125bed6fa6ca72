package grid

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Board describes the physical button/LED surface: its size and the wiring
// permutation from logical (row, col) to LED index.
type Board struct {
	Name        string `yaml:"name"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Permutation []int  `yaml:"permutation"`
}

// trellisM4 corrects the Trellis M4's column-major LED wiring (rotated 90°).
var trellisM4 = []int{
	24, 16, 8, 0,
	25, 17, 9, 1,
	26, 18, 10, 2,
	27, 19, 11, 3,
	28, 20, 12, 4,
	29, 21, 13, 5,
	30, 22, 14, 6,
	31, 23, 15, 7,
}

// DefaultBoard returns the 8x4 Trellis M4 geometry
func DefaultBoard() Board {
	perm := make([]int, len(trellisM4))
	copy(perm, trellisM4)
	return Board{Name: "trellis-m4", Width: 8, Height: 4, Permutation: perm}
}

// Size is the number of pads on the board
func (b Board) Size() int {
	return b.Width * b.Height
}

// PhysicalIndex maps a logical cell to its LED. Rows and columns beyond the
// board wrap, so a larger pattern grid reuses the same LED block per viewport.
func (b Board) PhysicalIndex(row, col int) int {
	return b.Permutation[Mod(row, b.Height)+Mod(col, b.Width)*b.Height]
}

// KeyAt is the inverse of PhysicalIndex for on-board coordinates.
func (b Board) KeyAt(index int) (row, col int, ok bool) {
	for i, led := range b.Permutation {
		if led == index {
			return i % b.Height, i / b.Height, true
		}
	}
	return 0, 0, false
}

// Validate checks the permutation covers every LED exactly once.
func (b Board) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return errors.Errorf("board %q: invalid size %dx%d", b.Name, b.Width, b.Height)
	}
	if len(b.Permutation) != b.Size() {
		return errors.Errorf("board %q: permutation has %d entries, want %d", b.Name, len(b.Permutation), b.Size())
	}
	seen := make([]bool, b.Size())
	for _, idx := range b.Permutation {
		if idx < 0 || idx >= b.Size() || seen[idx] {
			return errors.Errorf("board %q: permutation entry %d is out of range or repeated", b.Name, idx)
		}
		seen[idx] = true
	}
	return nil
}

// LoadBoard reads a YAML board description
func LoadBoard(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, errors.Wrap(err, "read board file")
	}

	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Board{}, errors.Wrapf(err, "parse board file %s", path)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Mod is the non-negative remainder of a by n, for wrapping rows and steps.
func Mod(a, n int) int {
	return ((a % n) + n) % n
}
