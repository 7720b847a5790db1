package impute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/vistas/pkg/frame"
)

func makeKeyFrame() *frame.Frame {
	f := frame.MustFrame(frame.StringSchema("usuario", "view_date"))
	f.AppendStrings([]string{"ana", "2024-01-05"})
	f.AppendStrings([]string{"", "2024-01-06"})
	f.AppendStrings([]string{"", ""})
	return f
}

func TestConstantFillsStringNulls(t *testing.T) {
	f := makeKeyFrame()
	out, err := (&Constant{Column: "usuario", Value: "null"}).Apply(context.Background(), f)
	require.NoError(t, err)

	got := make([]string, out.Rows())
	for i := range got {
		got[i], _ = out.StringAt(i, "usuario")
	}
	assert.Equal(t, []string{"ana", "null", "null"}, got)

	// other columns keep their nulls
	c, _ := out.ColumnByName("view_date")
	assert.True(t, c.IsNull(2))
}

func TestConstantSkipsNonStringColumns(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "n", Type: frame.KindInt, Nullable: true}}}
	f := frame.MustFrame(s)
	f.AppendNullRow()
	out, err := (&Constant{Column: "n", Value: "null"}).Apply(context.Background(), f)
	require.NoError(t, err)
	col, _ := out.ColumnByName("n")
	assert.True(t, col.IsNull(0))
}
