// Package widgets renders board pads and key help for the terminal.
package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-trellis/grid"
	"go-trellis/theme"
)

// RenderPad renders a single pad: held keys get the held glyph, unlit pads
// the dark one.
func RenderPad(color theme.RGB, held bool, sym theme.Symbols) string {
	glyph := sym.Pad
	switch {
	case held:
		glyph = sym.Held
	case color == (theme.RGB{}):
		return string(sym.PadDark)
	}
	return lipgloss.NewStyle().Foreground(theme.Hex(color)).Render(string(glyph))
}

// RenderBoard draws the board LEDs row by row, row 0 on top. leds is indexed
// by physical LED index; held marks pressed keys. Missing LEDs render dark.
func RenderBoard(b grid.Board, leds []theme.RGB, held func(row, col int) bool, sym theme.Symbols) string {
	lines := make([]string, 0, b.Height)
	for row := 0; row < b.Height; row++ {
		var line strings.Builder
		for col := 0; col < b.Width; col++ {
			if col > 0 {
				line.WriteString(" ")
			}
			var c theme.RGB
			if i := b.PhysicalIndex(row, col); i >= 0 && i < len(leds) {
				c = leds[i]
			}
			line.WriteString(RenderPad(c, held != nil && held(row, col), sym))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color theme.RGB, sym theme.Symbols, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color, false, sym), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
