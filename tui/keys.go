package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-trellis/widgets"
)

type keyMap struct {
	Release   key.Binding
	TiltLeft  key.Binding
	TiltRight key.Binding
	TiltUp    key.Binding
	TiltDown  key.Binding
	ZDown     key.Binding
	ZUp       key.Binding
	Level     key.Binding
	Quit      key.Binding
}

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

var keys = keyMap{
	Release:   binding("release all board keys", "space", " "),
	TiltLeft:  binding("tilt x-", "left"),
	TiltRight: binding("tilt x+", "right"),
	TiltUp:    binding("tilt y+", "up"),
	TiltDown:  binding("tilt y-", "down"),
	ZDown:     binding("tilt z-", "["),
	ZUp:       binding("tilt z+", "]"),
	Level:     binding("level the board", "0"),
	Quit:      binding("quit", "esc", "ctrl+c"),
}

// help lists the bindings for the view.
func (k keyMap) help() []widgets.KeySection {
	board := widgets.KeySection{Keys: []widgets.KeyBinding{
		{Key: "1-8 q-i a-k z-,", Desc: "toggle board keys (sticky)"},
	}}
	rest := widgets.KeySection{}
	for _, b := range []key.Binding{k.Release, k.TiltLeft, k.TiltRight, k.TiltUp, k.TiltDown, k.ZDown, k.ZUp, k.Level, k.Quit} {
		h := b.Help()
		rest.Keys = append(rest.Keys, widgets.KeyBinding{Key: h.Key, Desc: h.Desc})
	}
	return []widgets.KeySection{board, rest}
}
