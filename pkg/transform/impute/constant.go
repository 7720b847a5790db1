package impute

import (
	"context"

	"github.com/wdm0006/vistas/pkg/frame"
)

// Constant fills null cells of a string column with Value, in place.
// Columns of other kinds are left alone.
type Constant struct {
	Column string
	Value  string
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	c, ok := col.(*frame.StringColumn)
	if !ok {
		return f, nil
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			c.Set(i, t.Value)
		}
	}
	return f, nil
}
