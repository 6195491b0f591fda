package render

import (
	"io"
	"strings"

	"github.com/valter-silva-au/reseau/pkg/models"
)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// DOT writes the graph in Graphviz DOT syntax. Nodes are drawn as black
// circles with white labels and each edge takes the colour of its type.
func DOT(w io.Writer, snap models.NetworkSnapshot, colors map[models.RelationshipType]string) error {
	ew := &errWriter{w: w}

	ew.printf("graph reseau {\n")
	ew.printf("  layout=neato;\n")
	ew.printf("  node [shape=circle, style=filled, fillcolor=black, fontcolor=white, fontsize=10];\n")
	ew.printf("  edge [penwidth=2];\n")
	for _, p := range snap.People {
		ew.printf("  %s;\n", dotQuote(p))
	}
	for _, r := range snap.Relationships {
		ew.printf("  %s -- %s [color=%s, tooltip=%s];\n",
			dotQuote(r.PersonA), dotQuote(r.PersonB),
			dotQuote(ColorFor(colors, r.Type)), dotQuote(r.Type.Label()))
	}
	ew.printf("}\n")

	return ew.err
}
