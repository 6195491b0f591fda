package render

import (
	"fmt"
	"io"

	"github.com/valter-silva-au/reseau/pkg/models"
	"gopkg.in/yaml.v3"
)

// YAML writes the snapshot as a YAML document. It is an export format only;
// nothing reads it back.
func YAML(w io.Writer, snap models.NetworkSnapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flushing YAML: %w", err)
	}
	return nil
}
