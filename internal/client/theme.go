package client

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/pepperd/internal/client/core"
)

// Theme maps syntax token kinds and a handful of UI surfaces to styles.
// It is rebuilt whenever the server pushes an OpTheme operation.
type Theme struct {
	TokenStyles map[string]core.Style
	StatusBar   core.Style
	StatusError core.Style
	Selection   core.Style
	Cursor      core.Style
}

// themeDoc is the TOML shape of a Theme operation's blob: [tokens] and
// [ui] tables whose entries are "{fg=..., bg=..., bold=...}" tables. A
// bare "#rrggbb" string entry does not decode.
type themeDoc struct {
	Tokens map[string]themeColor `toml:"tokens"`
	UI     map[string]themeColor `toml:"ui"`
}

type themeColor struct {
	Fg   string `toml:"fg"`
	Bg   string `toml:"bg"`
	Bold bool   `toml:"bold"`
}

// DefaultTheme returns a minimal built-in theme used before the first
// OpTheme operation arrives from the server.
func DefaultTheme() *Theme {
	return &Theme{
		TokenStyles: map[string]core.Style{
			"keyword": core.NewStyle(core.ColorBlue).Bold(),
			"string":  core.NewStyle(core.ColorGreen),
			"comment": core.NewStyle(core.ColorGray).Italic(),
			"type":    core.NewStyle(core.ColorCyan),
			"symbol":  core.DefaultStyle(),
			"literal": core.NewStyle(core.ColorMagenta),
			"text":    core.DefaultStyle(),
		},
		StatusBar:   core.DefaultStyle().WithBackground(core.ColorGray),
		StatusError: core.NewStyle(core.ColorRed).Bold(),
		Selection:   core.DefaultStyle().Reverse(),
		Cursor:      core.DefaultStyle().Reverse(),
	}
}

// ParseTheme decodes a Theme operation's blob (TOML) into a Theme,
// resolving each color through go-colorful so malformed hex values are
// rejected before they ever reach the terminal backend.
func ParseTheme(blob []byte) (*Theme, error) {
	var doc themeDoc
	if err := toml.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("parse theme: %w", err)
	}

	th := &Theme{TokenStyles: make(map[string]core.Style, len(doc.Tokens))}
	for name, tc := range doc.Tokens {
		style, err := resolveThemeColor(tc)
		if err != nil {
			return nil, fmt.Errorf("theme token %q: %w", name, err)
		}
		th.TokenStyles[name] = style
	}

	for name, tc := range doc.UI {
		style, err := resolveThemeColor(tc)
		if err != nil {
			return nil, fmt.Errorf("theme ui %q: %w", name, err)
		}
		switch name {
		case "status-bar":
			th.StatusBar = style
		case "status-error":
			th.StatusError = style
		case "selection":
			th.Selection = style
		case "cursor":
			th.Cursor = style
		}
	}

	return th, nil
}

func resolveThemeColor(tc themeColor) (core.Style, error) {
	style := core.DefaultStyle()
	if tc.Fg != "" {
		c, err := colorFromHex(tc.Fg)
		if err != nil {
			return style, err
		}
		style = style.WithForeground(c)
	}
	if tc.Bg != "" {
		c, err := colorFromHex(tc.Bg)
		if err != nil {
			return style, err
		}
		style = style.WithBackground(c)
	}
	if tc.Bold {
		style = style.Bold()
	}
	return style, nil
}

// colorFromHex parses a hex color with go-colorful, which validates the
// string, and clamps the result to the 8-bit Color the backend renders.
func colorFromHex(hex string) (core.Color, error) {
	cc, err := colorful.Hex(hex)
	if err != nil {
		return core.Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := cc.Clamped().RGB255()
	return core.ColorFromRGB(r, g, b), nil
}

// StyleFor returns the style for a syntax token-kind name, falling back
// to the theme's plain text style for unknown kinds.
func (t *Theme) StyleFor(kind string) core.Style {
	if s, ok := t.TokenStyles[kind]; ok {
		return s
	}
	if s, ok := t.TokenStyles["text"]; ok {
		return s
	}
	return core.DefaultStyle()
}

// Blend mixes two colors in perceptual (Lab) space via go-colorful; t=0
// yields a and t=1 yields b.
func Blend(a, b core.Color, t float64) core.Color {
	ca, _ := colorful.MakeColor(toRGBA(a))
	cb, _ := colorful.MakeColor(toRGBA(b))
	mixed := ca.BlendLab(cb, t)
	r, g, bl := mixed.Clamped().RGB255()
	return core.ColorFromRGB(r, g, bl)
}

func toRGBA(c core.Color) rgba { return rgba{c.R, c.G, c.B} }

// rgba adapts core.Color to the color.Color interface go-colorful expects.
type rgba struct{ r, g, b uint8 }

func (c rgba) RGBA() (r, g, b, a uint32) {
	r = uint32(c.r) * 0x101
	g = uint32(c.g) * 0x101
	b = uint32(c.b) * 0x101
	a = 0xffff
	return
}
