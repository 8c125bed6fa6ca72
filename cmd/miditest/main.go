package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go-trellis/grid"
	"go-trellis/midi"
	"go-trellis/sequencer"
	"go-trellis/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "clock":
		err = watchClock(arg(2, ""))
	case "leds":
		err = testLEDs()
	case "keys":
		err = watchKeys()
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  clock <port>  - Show clock ticks, transport and tempo")
	fmt.Println("  leds          - Light the Launchpad board area")
	fmt.Println("  keys          - Print board presses")
	fmt.Println("  poll          - Watch board connect/disconnect")
}

func arg(i int, def string) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return def
}

func interrupted() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ins, outs, err := midi.Ports(midi.PortTimeout)
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func watchClock(name string) error {
	if name == "" {
		return fmt.Errorf("clock needs a port name")
	}
	in, err := midi.FindIn(name)
	if err != nil {
		return err
	}
	clock, err := midi.OpenClock(in)
	if err != nil {
		return err
	}
	defer clock.Close()
	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", clock.Name())

	ctx := interrupted()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	ticks := 0
	windowStart := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		for {
			p, ok := clock.Poll()
			if !ok {
				break
			}
			if p != sequencer.ClockTick {
				fmt.Printf("\n%s\n", p)
				continue
			}
			ticks++
			if ticks%sequencer.PPQN == 0 {
				elapsed := time.Since(windowStart)
				bpm := 60 / elapsed.Seconds()
				windowStart = time.Now()
				fmt.Printf("\rbeat %4d  %6.1f bpm  dropped %d", ticks/sequencer.PPQN, bpm, clock.Dropped())
			}
		}
	}
}

func openBoard() (*midi.Board, error) {
	in, err := midi.FindIn("launchpad")
	if err != nil {
		return nil, err
	}
	out, err := midi.FindOut(in.String())
	if err != nil {
		return nil, err
	}
	return midi.OpenBoard(in.String(), grid.DefaultBoard(), in, out)
}

func testLEDs() error {
	board, err := openBoard()
	if err != nil {
		return err
	}
	defer board.Close()

	layout := grid.DefaultBoard()
	pal := theme.DefaultLEDPalette()
	rows := []theme.RGB{pal.NoteOn, pal.Accent, pal.ShiftNoteOn, pal.Column}

	fmt.Println("Lighting the board row by row...")
	for row := 0; row < layout.Height; row++ {
		for col := 0; col < layout.Width; col++ {
			board.Set(layout.PhysicalIndex(row, col), rows[row])
			time.Sleep(20 * time.Millisecond)
		}
	}

	fmt.Println("Press Enter to clear...")
	bufio.NewReader(os.Stdin).ReadString('\n')
	board.Fill(theme.RGB{})
	fmt.Println("Done!")
	return nil
}

func watchKeys() error {
	board, err := openBoard()
	if err != nil {
		return err
	}
	defer board.Close()
	fmt.Println("Press pads on the bottom four rows. Ctrl+C to exit.")

	ctx := interrupted()
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		now := fmt.Sprint(board.Pressed())
		if now != last {
			fmt.Println(now)
			last = now
		}
	}
}

func pollDevices() {
	fmt.Println("Watching for Launchpads. Ctrl+C to exit.")
	dm := midi.NewDeviceManager(grid.DefaultBoard())
	go dm.Run(interrupted())

	for ev := range dm.Events() {
		fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), ev.Type, ev.ID)
		if ev.Board != nil {
			ev.Board.Fill(theme.DefaultLEDPalette().Confirm)
		}
	}
}
