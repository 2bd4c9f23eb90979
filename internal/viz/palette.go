package viz

import (
	"sort"

	"github.com/san-kum/idealgas/internal/gas"
)

var palette = map[gas.Color]string{
	"black":   "#000000",
	"blue":    "#0079f1",
	"cyan":    "#00ffff",
	"gray":    "#828282",
	"green":   "#00e430",
	"magenta": "#ff00ff",
	"orange":  "#ffa100",
	"pink":    "#ff6dc2",
	"purple":  "#c87aff",
	"red":     "#e62937",
	"white":   "#ffffff",
	"yellow":  "#fdf900",
}

// Hex resolves a named color. "#rrggbb" strings pass through and anything
// unknown falls back to white.
func Hex(c gas.Color) string {
	if h, ok := palette[c]; ok {
		return h
	}
	if isHex(string(c)) {
		return string(c)
	}
	return palette["white"]
}

func RGB(c gas.Color) (r, g, b uint8) {
	ri, gi, bi := parseHex(Hex(c))
	return uint8(ri), uint8(gi), uint8(bi)
}

func KnownColor(c gas.Color) bool {
	_, ok := palette[c]
	return ok || isHex(string(c))
}

func ColorNames() []string {
	names := make([]string, 0, len(palette))
	for k := range palette {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

func isHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
