package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/supplierdb/internal/ingest"
	"github.com/JonMunkholm/supplierdb/internal/mapping"
	"github.com/spf13/cobra"
)

// inputFlags are shared by every command that reads a spreadsheet.
type inputFlags struct {
	sheet string
	maps  []string
}

func (f *inputFlags) register(cmd *cobra.Command, withMap bool) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	if withMap {
		cmd.Flags().StringArrayVarP(&f.maps, "map", "m", nil,
			`Override a column mapping as field=column, e.g. --map supplier="Vendor Name"; `+
				`use field= to leave a field unmapped (repeatable)`)
	}
}

// choices parses --map values. Columns are normalized the way headers are so
// the original spelling from the file can be used.
func (f *inputFlags) choices() (map[string]string, error) {
	out := make(map[string]string, len(f.maps))
	for _, m := range f.maps {
		field, column, ok := strings.Cut(m, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --map %q: want field=column", m)
		}
		column = strings.Trim(strings.TrimSpace(column), `"'`)
		if column != mapping.NotMapped {
			column = mapping.NormalizeHeader(column)
		}
		out[strings.TrimSpace(field)] = column
	}
	return out, nil
}

// infer parses path and infers its mapping.
func (f *inputFlags) infer(path string) (*mapping.Inference, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := ingest.Parse(path, file, ingest.Options{Sheet: f.sheet})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mapping.NewEngine().Infer(raw), nil
}

// standardize parses path and applies the inferred mapping with --map
// overrides on top. The result is returned with any mapping error so callers
// can still report what was matched.
func (f *inputFlags) standardize(path string) (*mapping.Result, error) {
	inf, err := f.infer(path)
	if err != nil {
		return nil, err
	}
	choices, err := f.choices()
	if err != nil {
		return nil, err
	}
	override, err := mapping.ParseOverride(choices, inf.Table.Columns)
	if err != nil {
		return nil, err
	}
	return mapping.NewEngine().Apply(inf, override)
}
