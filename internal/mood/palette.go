package mood

import "strings"

// Preset is a named capture color offered to the user.
type Preset struct {
	Name  string
	Color RGB
}

var palette = []Preset{
	// Reds and oranges
	{"Angry", RGB{0xFF, 0x00, 0x00}},
	{"Frustrated", RGB{0xFF, 0x45, 0x00}},
	{"Energetic", RGB{0xFF, 0xA5, 0x00}},
	{"Excited", RGB{0xFF, 0xD7, 0x00}},
	{"Happy", RGB{0xFF, 0xFF, 0x00}},
	// Greens and teals
	{"Calm", RGB{0x90, 0xEE, 0x90}},
	{"Hopeful", RGB{0x32, 0xCD, 0x32}},
	{"Content", RGB{0x00, 0x80, 0x00}},
	{"Peaceful", RGB{0x00, 0x64, 0x00}},
	{"Balanced", RGB{0x00, 0x80, 0x80}},
	// Blues
	{"Relaxed", RGB{0xAD, 0xD8, 0xE6}},
	{"Serene", RGB{0x87, 0xCE, 0xFA}},
	{"Neutral", RGB{0x46, 0x82, 0xB4}},
	{"Sad", RGB{0x1E, 0x90, 0xFF}},
	{"Depressed", RGB{0x00, 0x00, 0xCD}},
	// Purples and indigos
	{"Creative", RGB{0x93, 0x70, 0xDB}},
	{"Anxious", RGB{0x8A, 0x2B, 0xE2}},
	{"Confused", RGB{0x94, 0x00, 0xD3}},
	{"Mysterious", RGB{0x80, 0x00, 0x80}},
	{"Introspective", RGB{0x4B, 0x00, 0x82}},
}

// Palette returns the preset capture colors in display order.
func Palette() []Preset {
	out := make([]Preset, len(palette))
	copy(out, palette)
	return out
}

// LookupPreset finds a preset by name, case-insensitively.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range palette {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Preset{}, false
}
