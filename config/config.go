// Package config loads and saves ~/.config/go-trellis/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go-trellis/axis"
	"go-trellis/grid"
	"go-trellis/pattern"
	"go-trellis/sequencer"
)

// GridConfig sizes the note grids
type GridConfig struct {
	Columns       int    `json:"columns"`
	Rows          int    `json:"rows"`
	StartingPitch int    `json:"startingPitch"`
	PitchLayout   string `json:"pitchLayout"`         // "block" or "linear"
	BoardFile     string `json:"boardFile,omitempty"` // YAML LED permutation
}

// TimingConfig holds the clock-relative constants
type TimingConfig struct {
	HoldTicks      int `json:"holdTicks"`
	ShiftPhase     int `json:"shiftPhase"`
	PollIntervalMs int `json:"pollIntervalMs"`
}

// AxisConfig lists the up/down CC pairs for the y, x and z axes
type AxisConfig struct {
	CCs []int `json:"ccs"`
}

// PatternConfig locates the slot files
type PatternConfig struct {
	Dir       string  `json:"dir,omitempty"` // defaults to <config dir>/patterns
	ExportSMF bool    `json:"exportSMF,omitempty"`
	ExportBPM float64 `json:"exportBPM,omitempty"`
}

// ClockConfig names the MIDI clock input
type ClockConfig struct {
	PortName string `json:"portName,omitempty"`
}

// ControllerConfig defines a saved board controller
type ControllerConfig struct {
	PortName    string `json:"portName"`
	AutoConnect bool   `json:"autoConnect"`
}

// SynthOutputConfig defines the synth MIDI output
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel"` // 1-16
}

// UIConfig stores UI preferences
type UIConfig struct {
	PaletteFile string `json:"paletteFile,omitempty"` // GIMP .gpl for the terminal theme
	Debug       bool   `json:"debug,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Grid        GridConfig         `json:"grid"`
	Timing      TimingConfig       `json:"timing"`
	Axis        AxisConfig         `json:"axis"`
	Patterns    PatternConfig      `json:"patterns,omitempty"`
	Clock       ClockConfig        `json:"clock,omitempty"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	SynthOutput SynthOutputConfig  `json:"synthOutput"`
	UI          UIConfig           `json:"ui,omitempty"`
}

// DefaultConfig returns a config matching sequencer.DefaultOptions
func DefaultConfig() *Config {
	opts := sequencer.DefaultOptions()
	ccs := make([]int, len(opts.AxisCCs))
	for i, cc := range opts.AxisCCs {
		ccs[i] = int(cc)
	}
	return &Config{
		Grid: GridConfig{
			Columns:       opts.Columns,
			Rows:          opts.Rows,
			StartingPitch: int(opts.StartingPitch),
			PitchLayout:   "block",
		},
		Timing: TimingConfig{
			HoldTicks:      opts.HoldTicks,
			ShiftPhase:     opts.ShiftPhase,
			PollIntervalMs: int(opts.PollInterval / time.Millisecond),
		},
		Axis: AxisConfig{CCs: ccs},
		Patterns: PatternConfig{
			ExportBPM: opts.ExportBPM,
		},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				AutoConnect: true,
			},
		},
		SynthOutput: SynthOutputConfig{Channel: 1},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home directory")
	}
	return filepath.Join(home, ".config", "go-trellis"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults. Fields missing from the file keep
// their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write %s", path)
}

// Validate checks the ranges the engine relies on
func (c *Config) Validate() error {
	switch {
	case c.Grid.Columns < grid.ViewColumns+1:
		return errors.Errorf("grid.columns must be at least %d, got %d", grid.ViewColumns+1, c.Grid.Columns)
	case c.Grid.Rows < grid.ViewRows:
		return errors.Errorf("grid.rows must be at least %d, got %d", grid.ViewRows, c.Grid.Rows)
	case c.Grid.StartingPitch < 0 || c.Grid.StartingPitch+c.Grid.Rows > 128:
		return errors.Errorf("grid.startingPitch %d leaves the MIDI range", c.Grid.StartingPitch)
	case c.Timing.ShiftPhase != 6 && c.Timing.ShiftPhase != 7:
		return errors.Errorf("timing.shiftPhase must be 6 or 7, got %d", c.Timing.ShiftPhase)
	case c.Timing.HoldTicks <= 0:
		return errors.Errorf("timing.holdTicks must be positive, got %d", c.Timing.HoldTicks)
	case len(c.Axis.CCs) != len(axis.DefaultCCs):
		return errors.Errorf("axis.ccs needs %d controllers, got %d", len(axis.DefaultCCs), len(c.Axis.CCs))
	case c.SynthOutput.Channel < 1 || c.SynthOutput.Channel > 15:
		// the separate manual channel is Channel+1
		return errors.Errorf("synthOutput.channel must be 1-15, got %d", c.SynthOutput.Channel)
	}
	if _, err := pitchLayout(c.Grid.PitchLayout); err != nil {
		return err
	}
	for _, cc := range c.Axis.CCs {
		if cc < 0 || cc > 127 {
			return errors.Errorf("axis cc %d out of range", cc)
		}
	}
	return nil
}

// PaletteFile returns the terminal palette path with ~ expanded, or "".
func (c *Config) PaletteFile() (string, error) {
	if c.UI.PaletteFile == "" {
		return "", nil
	}
	return expandHome(c.UI.PaletteFile)
}

// PatternDir returns the slot directory, defaulting under ConfigDir.
func (c *Config) PatternDir() (string, error) {
	if c.Patterns.Dir != "" {
		return expandHome(c.Patterns.Dir)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "patterns"), nil
}

// EngineOptions builds the engine options, loading the board file when
// configured. store may be nil.
func (c *Config) EngineOptions(store *pattern.Store) (sequencer.Options, error) {
	if err := c.Validate(); err != nil {
		return sequencer.Options{}, err
	}
	opts := sequencer.DefaultOptions()
	opts.Columns = c.Grid.Columns
	opts.Rows = c.Grid.Rows
	opts.StartingPitch = uint8(c.Grid.StartingPitch)
	opts.PitchLayout, _ = pitchLayout(c.Grid.PitchLayout)
	opts.HoldTicks = c.Timing.HoldTicks
	opts.ShiftPhase = c.Timing.ShiftPhase
	if c.Timing.PollIntervalMs > 0 {
		opts.PollInterval = time.Duration(c.Timing.PollIntervalMs) * time.Millisecond
	}
	for i, cc := range c.Axis.CCs {
		opts.AxisCCs[i] = uint8(cc)
	}
	opts.Channel = uint8(c.SynthOutput.Channel - 1)
	opts.Store = store
	opts.ExportSMF = c.Patterns.ExportSMF
	if c.Patterns.ExportBPM > 0 {
		opts.ExportBPM = c.Patterns.ExportBPM
	}

	if c.Grid.BoardFile != "" {
		path, err := expandHome(c.Grid.BoardFile)
		if err != nil {
			return sequencer.Options{}, err
		}
		b, err := grid.LoadBoard(path)
		if err != nil {
			return sequencer.Options{}, err
		}
		if b.Width != grid.ViewColumns || b.Height != grid.ViewRows {
			return sequencer.Options{}, errors.Errorf("board %s is %dx%d, need %dx%d",
				b.Name, b.Width, b.Height, grid.ViewColumns, grid.ViewRows)
		}
		opts.Board = b
	}
	return opts, nil
}

// BoardPorts returns the port names of controllers marked for auto-connect
func (c *Config) BoardPorts() []string {
	var result []string
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl.PortName)
		}
	}
	return result
}

func pitchLayout(name string) (grid.PitchLayout, error) {
	switch strings.ToLower(name) {
	case "", "block":
		return grid.PitchBlock, nil
	case "linear":
		return grid.PitchLinear, nil
	}
	return 0, errors.Errorf("unknown pitch layout %q", name)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
