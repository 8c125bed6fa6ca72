package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-trellis/config"
	"go-trellis/debug"
	"go-trellis/midi"
	"go-trellis/pattern"
	"go-trellis/sequencer"
	"go-trellis/theme"
	"go-trellis/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.UI.Debug || os.Getenv("TRELLIS_DEBUG") != "" {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	paletteFile, err := cfg.PaletteFile()
	if err != nil {
		return err
	}
	palette, err := theme.LoadOrDefault(paletteFile)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	dir, err := cfg.PatternDir()
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions(pattern.NewStore(dir))
	if err != nil {
		return err
	}

	var clock sequencer.PulseSource
	clockName := ""
	if cfg.Clock.PortName != "" {
		c, err := openClock(cfg.Clock.PortName)
		if err != nil {
			debug.Warn("main", err, "clock %q", cfg.Clock.PortName)
			fmt.Printf("clock %q unavailable: %v\n", cfg.Clock.PortName, err)
		} else {
			defer c.Close()
			clock, clockName = c, c.Name()
		}
	}

	var out sequencer.EventSink
	if cfg.SynthOutput.PortName != "" {
		o, err := openOutput(cfg.SynthOutput.PortName)
		if err != nil {
			debug.Warn("main", err, "synth output %q", cfg.SynthOutput.PortName)
			fmt.Printf("synth output %q unavailable: %v\n", cfg.SynthOutput.PortName, err)
		} else {
			defer o.Close()
			out = o
		}
	}

	board := tui.NewVirtualBoard(opts.Board)
	engine := sequencer.New(opts, clock, board, board, out, board)
	feed := tui.NewStatusFeed()
	engine.SetObserver(feed.Publish)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(opts.Board, cfg.BoardPorts()...)
	go deviceMgr.Run(ctx)

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- engine.Run(ctx)
	}()

	m := tui.NewModel(board, feed, deviceMgr, th, opts.Palette, clockName)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	// the engine saves the current slot on the way out
	cancel()
	if engineErr := <-engineDone; engineErr != nil && err == nil {
		err = engineErr
	}
	return err
}

func openClock(name string) (*midi.ClockInput, error) {
	in, err := midi.FindIn(name)
	if err != nil {
		return nil, err
	}
	return midi.OpenClock(in)
}

func openOutput(name string) (*midi.Output, error) {
	port, err := midi.FindOut(name)
	if err != nil {
		return nil, err
	}
	return midi.OpenOutput(port)
}
