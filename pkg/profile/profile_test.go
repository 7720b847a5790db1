package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/vistas/pkg/frame"
)

func sample() *frame.Frame {
	f := frame.MustFrame(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "usuario", Type: frame.KindString, Nullable: true},
		{Name: "edad", Type: frame.KindInt, Nullable: true},
		{Name: "vacia", Type: frame.KindFloat, Nullable: true},
	}})
	f.AppendStrings([]string{"ana", "30"})
	f.AppendStrings([]string{"ana", "40"})
	f.AppendStrings([]string{"luis", ""})
	f.AppendStrings([]string{"", "20"})
	return f
}

func TestCollector(t *testing.T) {
	c := NewCollector(sample().Schema(), 2)
	c.ConsumeFrame(sample())
	assert.Equal(t, 4, c.Rows())

	user := c.cols[0]
	assert.Equal(t, 3, user.Text.Count)
	assert.Equal(t, 1, user.Text.Nulls)
	assert.Equal(t, 2, user.Text.Freqs["ana"])

	age := c.cols[1].Num
	assert.Equal(t, 3, age.Count)
	assert.Equal(t, 1, age.Nulls)
	assert.Equal(t, 20.0, age.Min)
	assert.Equal(t, 40.0, age.Max)

	txt := c.ReportText()
	assert.Contains(t, txt, "Profile Summary (4 rows)")
	assert.Contains(t, txt, "- usuario (string): count=3 nulls=1 distinct=2")
	assert.Contains(t, txt, `* "ana": 2`)
}

func TestReportJSON(t *testing.T) {
	c := NewCollector(sample().Schema(), 1)
	c.ConsumeFrame(sample())
	rep := c.ReportJSON()
	b, err := json.Marshal(rep)
	require.NoError(t, err)

	var back JSONProfile
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back.Columns, 3)
	assert.Equal(t, "string", back.Columns[0].Kind)
	require.Len(t, back.Columns[0].Text.Top, 1)
	assert.Equal(t, "ana", back.Columns[0].Text.Top[0].Value)
	assert.Equal(t, 4, back.Columns[2].Num.Nulls)
}
