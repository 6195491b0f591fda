// Package render turns a network snapshot into something a person can look
// at: coloured terminal text, Graphviz DOT or a YAML document. Layout is left
// to the consumer (Graphviz, the TUI); this package only describes nodes,
// edges and their colours.
package render

import (
	"fmt"
	"io"

	"github.com/valter-silva-au/reseau/pkg/models"
)

// Formats accepted by Render.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatYAML = "yaml"
)

// Formats lists every supported format.
func Formats() []string {
	return []string{FormatText, FormatDOT, FormatYAML}
}

// Render writes snap to w in the named format. colors maps relationship types
// to colour names; nil means models.DefaultTypeColors.
func Render(w io.Writer, format string, snap models.NetworkSnapshot, colors map[models.RelationshipType]string) error {
	if colors == nil {
		colors = models.DefaultTypeColors()
	}
	switch format {
	case FormatText:
		return Text(w, snap, colors)
	case FormatDOT:
		return DOT(w, snap, colors)
	case FormatYAML:
		return YAML(w, snap)
	default:
		return fmt.Errorf("unknown render format %q (want text, dot or yaml)", format)
	}
}

// ColorFor returns the colour name for t, falling back to gray.
func ColorFor(colors map[models.RelationshipType]string, t models.RelationshipType) string {
	if c, ok := colors[t]; ok && c != "" {
		return c
	}
	return models.UnknownTypeColor
}

// HistoryLine formats a history entry the way the history panel shows it.
func HistoryLine(e models.HistoryEntry) string {
	return fmt.Sprintf("%s is in a %s with %s.", e.PersonA, e.Type.Label(), e.PersonB)
}

// ansi256 maps the colour names used in the type table onto xterm-256 codes.
var ansi256 = map[string]string{
	"black":   "0",
	"white":   "15",
	"blue":    "33",
	"green":   "34",
	"red":     "196",
	"orange":  "208",
	"yellow":  "226",
	"gray":    "245",
	"grey":    "245",
	"purple":  "129",
	"magenta": "201",
	"cyan":    "51",
	"brown":   "130",
	"pink":    "218",
}

// TerminalColor converts a colour name into a value lipgloss.Color accepts.
// Hex strings pass through unchanged; unknown names become gray.
func TerminalColor(name string) string {
	if len(name) > 0 && name[0] == '#' {
		return name
	}
	if code, ok := ansi256[name]; ok {
		return code
	}
	return ansi256[models.UnknownTypeColor]
}
