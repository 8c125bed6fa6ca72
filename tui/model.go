// Package tui is the terminal front end: a virtual board, the engine status
// and hot-plugged Launchpads.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-trellis/axis"
	"go-trellis/gesture"
	"go-trellis/midi"
	"go-trellis/sequencer"
	"go-trellis/theme"
	"go-trellis/widgets"
)

// boardKeys maps terminal keys onto the 8x4 board, one keyboard row per
// board row.
var boardKeys = func() map[string]gesture.Key {
	rows := []string{"12345678", "qwertyui", "asdfghjk", "zxcvbnm,"}
	m := make(map[string]gesture.Key)
	for r, row := range rows {
		for c, ch := range row {
			m[string(ch)] = gesture.Key{Row: r, Col: c}
		}
	}
	return m
}()

// StatusFeed carries engine status snapshots to the model. Only the latest
// snapshot is kept.
type StatusFeed chan sequencer.Status

func NewStatusFeed() StatusFeed {
	return make(StatusFeed, 1)
}

// Publish is the engine observer. It never blocks.
func (f StatusFeed) Publish(s sequencer.Status) {
	for {
		select {
		case f <- s:
			return
		default:
		}
		select {
		case <-f:
		default:
		}
	}
}

type Model struct {
	Board     *VirtualBoard
	DeviceMgr *midi.DeviceManager // may be nil
	Theme     *theme.Theme
	LEDs      theme.LEDPalette

	status   sequencer.Status
	feed     StatusFeed
	clock    string
	quitting bool
}

type StatusMsg sequencer.Status

type LedMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(board *VirtualBoard, feed StatusFeed, deviceMgr *midi.DeviceManager, th *theme.Theme, leds theme.LEDPalette, clock string) Model {
	return Model{
		Board:     board,
		DeviceMgr: deviceMgr,
		Theme:     th,
		LEDs:      leds,
		feed:      feed,
		clock:     clock,
	}
}

func ListenForStatus(feed StatusFeed) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(<-feed)
	}
}

func ListenForLEDs(board *VirtualBoard) tea.Cmd {
	return func() tea.Msg {
		<-board.Changed()
		return LedMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForLEDs(m.Board)}
	if m.feed != nil {
		cmds = append(cmds, ListenForStatus(m.feed))
	}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if k, ok := boardKeys[msg.String()]; ok {
			m.Board.Toggle(k)
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Release):
			m.Board.ReleaseAll()
		case key.Matches(msg, keys.TiltLeft):
			m.Board.Tilt(0, -TiltStep)
		case key.Matches(msg, keys.TiltRight):
			m.Board.Tilt(0, TiltStep)
		case key.Matches(msg, keys.TiltUp):
			m.Board.Tilt(1, TiltStep)
		case key.Matches(msg, keys.TiltDown):
			m.Board.Tilt(1, -TiltStep)
		case key.Matches(msg, keys.ZDown):
			m.Board.Tilt(2, -TiltStep)
		case key.Matches(msg, keys.ZUp):
			m.Board.Tilt(2, TiltStep)
		case key.Matches(msg, keys.Level):
			m.Board.Level()
		}

	case StatusMsg:
		m.status = sequencer.Status(msg)
		return m, ListenForStatus(m.feed)

	case LedMsg:
		return m, ListenForLEDs(m.Board)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.Board.Attach(event.Board)
		case midi.DeviceDisconnected:
			m.Board.Detach(event.ID)
		}
		if m.DeviceMgr == nil {
			return m, nil
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.status

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	okStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())
	bodyStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	playStyle := lipgloss.NewStyle().Bold(true).Foreground(m.Theme.Active(s.Running))
	slotStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())

	playState := "STOP"
	if s.Running {
		playState = "PLAY"
	}
	header := headerStyle.Render("go-trellis") + "  " +
		playStyle.Render(playState) + "  " +
		bodyStyle.Render(fmt.Sprintf("step:%02d/%02d", s.Step, s.LastStep)) + "  " +
		slotStyle.Render(fmt.Sprintf("slot:%d  %s", s.Slot, s.Mode))
	if hw := m.Board.Hardware(); hw != "" {
		header += "  " + okStyle.Render("LP:"+hw)
	}

	board := widgets.RenderBoard(m.Board.Layout(), m.Board.LEDs(), func(row, col int) bool {
		return m.Board.Held(gesture.Key{Row: row, Col: col})
	}, m.Theme.Symbols)

	x, y, z := m.Board.Axes()
	axes := fmt.Sprintf("view r%d c%d   y:%s x:%s z:%s   tilt x%+.1f y%+.1f z%+.1f",
		s.RowOffset, s.ColumnOffset,
		modeLabel(s.AxisModes[0]), modeLabel(s.AxisModes[1]), modeLabel(s.AxisModes[2]),
		x, y, z)
	if s.SeparateManualChannel {
		axes += "   manual ch+1"
	}

	clock := okStyle.Render("clock: " + m.clock)
	if m.clock == "" {
		clock = warnStyle.Render("clock: none, nothing will play")
	}

	legend := strings.Join([]string{
		widgets.RenderLegendItem(m.legendColor(), m.Theme.Symbols, "note", "on the active grid"),
		widgets.RenderLegendItem(m.LEDs.Column, m.Theme.Symbols, "column", "play head"),
	}, "\n")

	help := dimStyle.Render(widgets.RenderKeyHelp(keys.help()))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(board)
	out.WriteString("\n\n")
	out.WriteString(bodyStyle.Render(axes))
	out.WriteString("\n")
	out.WriteString(clock)
	out.WriteString("\n\n")
	out.WriteString(legend)
	out.WriteString("\n\n")
	out.WriteString(help)
	return out.String()
}

func (m Model) legendColor() theme.RGB {
	if m.status.Mode == sequencer.ModeShift {
		return m.LEDs.ShiftNoteOn
	}
	return m.LEDs.NoteOn
}

func modeLabel(mode axis.Mode) string {
	if mode == axis.None {
		return "-"
	}
	return mode.String()
}
