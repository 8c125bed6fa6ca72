// Package pattern persists sequencer patterns into numbered slots.
package pattern

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go-trellis/axis"
	"go-trellis/debug"
	"go-trellis/grid"
)

// DefaultLastStep is used when a slot is missing or has no length.
const DefaultLastStep = 8

// Pattern is the on-disk form of one slot. Grids are column-major lists
// of [on, accented] pairs.
type Pattern struct {
	Notes     [][][2]bool  `json:"notes"`
	Shift     [][][2]bool  `json:"shift"`
	LastStep  int          `json:"last_step"`
	AxisModes [3]axis.Mode `json:"axis_modes"`
}

// Capture snapshots both grids plus the slot metadata.
func Capture(primary, shift *grid.NoteGrid, lastStep int, modes [3]axis.Mode) Pattern {
	return Pattern{
		Notes:     capture(primary),
		Shift:     capture(shift),
		LastStep:  lastStep,
		AxisModes: modes,
	}
}

func capture(g *grid.NoteGrid) [][][2]bool {
	out := make([][][2]bool, g.Columns())
	for c := range out {
		col := make([][2]bool, g.Rows())
		for r := range col {
			n := g.At(r, c)
			col[r] = [2]bool{n.On, n.Accented}
		}
		out[c] = col
	}
	return out
}

// Apply writes the pattern into existing grids. Only the overlap of the
// stored and the live shapes is touched.
func (p Pattern) Apply(primary, shift *grid.NoteGrid) {
	apply(p.Notes, primary)
	apply(p.Shift, shift)
}

func apply(cols [][][2]bool, g *grid.NoteGrid) {
	for c, col := range cols {
		for r, state := range col {
			if n := g.At(r, c); n != nil {
				n.On = state[0]
				n.Accented = state[1]
			}
		}
	}
}

// Store keeps one JSON file per slot in Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(slot int, ext string) string {
	return filepath.Join(s.Dir, strconv.Itoa(slot)+ext)
}

// Save writes the slot atomically: the full document goes to a temp file
// that is synced and then renamed over the old one.
func (s *Store) Save(slot int, p Pattern) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode pattern")
	}
	return writeAtomic(s.Dir, s.path(slot, ".json"), data)
}

func writeAtomic(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create pattern dir")
	}

	tmp, err := os.CreateTemp(dir, ".slot-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrapf(err, "sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "commit %s", path)
	}
	return nil
}

// Load reads and decodes one slot
func (s *Store) Load(slot int) (Pattern, error) {
	var p Pattern
	data, err := os.ReadFile(s.path(slot, ".json"))
	if err != nil {
		return p, errors.Wrapf(err, "read slot %d", slot)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Pattern{}, errors.Wrapf(err, "decode slot %d", slot)
	}
	return p, nil
}

// Restore loads a slot into the grids in place and returns its last step and
// axis modes. Any failure yields the defaults and leaves the grids untouched,
// as does a slot without notes.
func (s *Store) Restore(slot int, primary, shift *grid.NoteGrid) (int, [3]axis.Mode) {
	var none [3]axis.Mode

	p, err := s.Load(slot)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			debug.Warn("pattern", err, "restore slot %d, using defaults", slot)
		}
		return DefaultLastStep, none
	}

	if len(p.Notes) > 0 {
		p.Apply(primary, shift)
	}

	lastStep := p.LastStep
	if lastStep <= 0 {
		lastStep = DefaultLastStep
	}
	return lastStep, p.AxisModes
}

// Slots lists the saved slot numbers in ascending order.
func (s *Store) Slots() []int {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil
	}

	var slots []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil || n < 0 {
			continue
		}
		slots = append(slots, n)
	}
	sort.Ints(slots)
	return slots
}

// Exists reports whether a slot has been saved
func (s *Store) Exists(slot int) bool {
	_, err := os.Stat(s.path(slot, ".json"))
	return err == nil
}

// Delete removes a slot and its MIDI export. Missing files are not an error.
func (s *Store) Delete(slot int) error {
	for _, ext := range []string{".json", ".mid"} {
		if err := os.Remove(s.path(slot, ext)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "delete slot %d", slot)
		}
	}
	return nil
}

// DeleteAll removes every saved slot
func (s *Store) DeleteAll() error {
	for _, slot := range s.Slots() {
		if err := s.Delete(slot); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the slot as a Standard MIDI File next to its JSON.
func (s *Store) Export(slot int, p Pattern, opts ExportOptions) error {
	var buf bytes.Buffer
	if err := WriteSMF(&buf, p, opts); err != nil {
		return errors.Wrapf(err, "export slot %d", slot)
	}
	return writeAtomic(s.Dir, s.path(slot, ".mid"), buf.Bytes())
}
