package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/vistas/pkg/frame"
)

// NormalizeName trims surrounding whitespace and lower-cases a column name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ColumnNames renames every column to its normalized form. Names that collide
// after normalization fail with frame.ErrParse.
type ColumnNames struct{}

func (t *ColumnNames) Name() string { return "column_names" }

func (t *ColumnNames) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	names := f.Names()
	changed := false
	for i, n := range names {
		if nn := NormalizeName(n); nn != n {
			names[i] = nn
			changed = true
		}
	}
	if !changed {
		return f, nil
	}
	return f.Rename(names)
}
