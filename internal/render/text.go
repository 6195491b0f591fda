package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/valter-silva-au/reseau/pkg/models"
)

var (
	headingColor = color.New(color.Bold, color.Underline)
	nameColor    = color.New(color.Bold)
	indexColor   = color.New(color.FgHiBlack)
)

// textAttributes maps colour names onto the closest 16-colour attribute.
var textAttributes = map[string]color.Attribute{
	"black":   color.FgBlack,
	"white":   color.FgWhite,
	"blue":    color.FgBlue,
	"green":   color.FgGreen,
	"red":     color.FgRed,
	"orange":  color.FgHiRed,
	"yellow":  color.FgYellow,
	"gray":    color.FgHiBlack,
	"grey":    color.FgHiBlack,
	"purple":  color.FgMagenta,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"brown":   color.FgHiYellow,
	"pink":    color.FgHiMagenta,
}

func typeColor(colors map[models.RelationshipType]string, t models.RelationshipType) *color.Color {
	attr, ok := textAttributes[ColorFor(colors, t)]
	if !ok {
		attr = color.FgHiBlack
	}
	return color.New(attr, color.Bold)
}

// Text writes a human-readable listing of people, relationships and history.
// Colour codes are emitted only when fatih/color decides the output supports
// them (a terminal without NO_COLOR set).
func Text(w io.Writer, snap models.NetworkSnapshot, colors map[models.RelationshipType]string) error {
	ew := &errWriter{w: w}

	ew.printf("%s\n", headingColor.Sprintf("People (%d)", len(snap.People)))
	if len(snap.People) == 0 {
		ew.printf("  nobody yet\n")
	}
	for _, p := range snap.People {
		ew.printf("  %s\n", nameColor.Sprint(p))
	}

	ew.printf("\n%s\n", headingColor.Sprintf("Relationships (%d)", len(snap.Relationships)))
	if len(snap.Relationships) == 0 {
		ew.printf("  none\n")
	}
	for _, r := range snap.Relationships {
		ew.printf("  %s -- %s -- %s\n",
			nameColor.Sprint(r.PersonA),
			typeColor(colors, r.Type).Sprint(r.Type),
			nameColor.Sprint(r.PersonB))
	}

	ew.printf("\n%s\n", headingColor.Sprintf("History (%d)", len(snap.History)))
	if len(snap.History) == 0 {
		ew.printf("  No relationship has been added yet.\n")
	}
	for _, d := range snap.History {
		e := d.Entry
		ew.printf("  %s %s is in a %s with %s.\n",
			indexColor.Sprintf("[%d]", d.Index),
			nameColor.Sprint(e.PersonA),
			typeColor(colors, e.Type).Sprint(e.Type.Label()),
			nameColor.Sprint(e.PersonB))
	}

	return ew.err
}

// errWriter keeps the first write error so callers check once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
