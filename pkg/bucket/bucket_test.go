package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/vistas/pkg/frame"
)

func views(rows ...[]string) *frame.Frame {
	f := frame.MustFrame(frame.StringSchema("usuario", "view_date"))
	for _, r := range rows {
		f.AppendStrings(r)
	}
	return f
}

func TestMonthNames(t *testing.T) {
	assert.Equal(t, "Enero", Key{2024, time.January}.MonthName())
	assert.Equal(t, "Septiembre", Key{2024, time.September}.MonthName())
	assert.Equal(t, "Diciembre", Key{2024, time.December}.MonthName())
	assert.Equal(t, "2024-02", Key{2024, time.February}.String())
}

func TestGroupOrdersAndKeepsRowOrder(t *testing.T) {
	f := views(
		[]string{"c", "2024-02-01"},
		[]string{"a", "2024-01-05"},
		[]string{"z", "2023-12-31 23:59:00"},
		[]string{"b", "2024-01-31"},
		[]string{"x", "not-a-date"},
		[]string{"y", ""},
	)
	buckets, dropped, err := Group(f, "VIEW_DATE", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	require.Len(t, buckets, 3)
	assert.Equal(t, Key{2023, time.December}, buckets[0].Key)
	assert.Equal(t, Key{2024, time.January}, buckets[1].Key)
	assert.Equal(t, Key{2024, time.February}, buckets[2].Key)

	jan := buckets[1].Rows
	require.Equal(t, 2, jan.Rows())
	assert.Equal(t, []string{"a", "2024-01-05"}, jan.Record(0))
	assert.Equal(t, []string{"b", "2024-01-31"}, jan.Record(1))

	total := 0
	for _, b := range buckets {
		total += b.Rows.Rows()
	}
	assert.Equal(t, f.Rows()-dropped, total)
}

func TestGroupLocation(t *testing.T) {
	// early Feb 1 UTC is still January in a western zone
	loc := time.FixedZone("UTC-5", -5*3600)
	f := views([]string{"a", "2024-02-01T02:00:00Z"}, []string{"b", "2024-02-01 02:00:00"})
	buckets, _, err := Group(f, "view_date", func(s string) (time.Time, error) {
		t, err := ParseIn(loc)(s)
		return t.In(loc), err
	})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, time.January, buckets[0].Key.Month)
	assert.Equal(t, time.February, buckets[1].Key.Month)
}

func TestGroupErrors(t *testing.T) {
	_, _, err := Group(nil, "view_date", nil)
	assert.ErrorIs(t, err, frame.ErrDataNotLoaded)

	_, _, err = Group(views(), "fecha", nil)
	var cnf *frame.ColumnNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, []string{"usuario", "view_date"}, cnf.Available)
}

func TestDir(t *testing.T) {
	assert.Equal(t, "/out/2024/Marzo", Dir("/out", Key{2024, time.March}))
}

func TestGroupDayFirstDates(t *testing.T) {
	f := views(
		[]string{"a", "31/01/2024"},
		[]string{"b", "13/02/2024"},
		[]string{"c", "05/01/2024"},
	)
	buckets, dropped, err := Group(f, "view_date", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, dropped)
	require.Len(t, buckets, 3)
	assert.Equal(t, Key{2024, time.January}, buckets[0].Key)
	assert.Equal(t, []string{"a", "31/01/2024"}, buckets[0].Rows.Record(0))
	assert.Equal(t, Key{2024, time.February}, buckets[1].Key)
	// ambiguous slash dates stay month first
	assert.Equal(t, Key{2024, time.May}, buckets[2].Key)
}
