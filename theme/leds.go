package theme

// LEDPalette holds the board colors for every mode and overlay.
type LEDPalette struct {
	NoteOn       RGB
	NoteOff      RGB
	Column       RGB
	Accent       RGB
	ShiftNoteOn  RGB
	ShiftColumn  RGB
	ShiftAccent  RGB
	EditCC       RGB
	ManualNote   RGB
	ManualAlt    RGB // manual notes on the separate channel
	RecordNote   RGB
	ManualCC     RGB
	CurrentSlot  RGB
	SavedSlot    RGB
	DeleteSlot   RGB
	Confirm      RGB
	Decline      RGB
	LastStep     RGB
	PatternShift RGB
}

// DefaultLEDPalette returns the board colors of the Trellis firmware
func DefaultLEDPalette() LEDPalette {
	return LEDPalette{
		NoteOn:       RGB{0, 63, 63},
		NoteOff:      RGB{0, 0, 0},
		Column:       RGB{255, 0, 50},
		Accent:       RGB{63, 191, 225},
		ShiftNoteOn:  RGB{63, 63, 0},
		ShiftColumn:  RGB{50, 0, 255},
		ShiftAccent:  RGB{255, 191, 63},
		EditCC:       RGB{191, 191, 255},
		ManualNote:   RGB{0, 255, 0},
		ManualAlt:    RGB{0, 191, 191},
		RecordNote:   RGB{255, 0, 0},
		ManualCC:     RGB{0, 255, 63},
		CurrentSlot:  RGB{11, 255, 11},
		SavedSlot:    RGB{191, 191, 11},
		DeleteSlot:   RGB{191, 11, 11},
		Confirm:      RGB{0, 255, 0},
		Decline:      RGB{255, 0, 0},
		LastStep:     RGB{255, 11, 191},
		PatternShift: RGB{255, 11, 11},
	}
}

// GridColors is the on/off/accent/column set used to paint a note grid.
type GridColors struct {
	On, Off, Accent, Column RGB
}

// Primary returns the colors for the on-beat grid
func (p LEDPalette) Primary() GridColors {
	return GridColors{On: p.NoteOn, Off: p.NoteOff, Accent: p.Accent, Column: p.Column}
}

// Shift returns the colors for the off-beat grid
func (p LEDPalette) Shift() GridColors {
	return GridColors{On: p.ShiftNoteOn, Off: p.NoteOff, Accent: p.ShiftAccent, Column: p.ShiftColumn}
}

// Cell picks the color for a cell's on/accent state.
func (c GridColors) Cell(on, accented bool) RGB {
	switch {
	case on && accented:
		return c.Accent
	case on:
		return c.On
	default:
		return c.Off
	}
}
