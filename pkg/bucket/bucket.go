// Package bucket groups rows by the year and month of a date column and lays
// each group out as <root>/<year>/<month name>/<base name><ext>.
package bucket

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/transform/standardize"
)

// DefaultDateColumn holds the view date.
const DefaultDateColumn = "view_date"

// MonthNames are the directory names for January through December.
var MonthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

type Key struct {
	Year  int
	Month time.Month
}

// MonthName returns the directory name for k.Month.
func (k Key) MonthName() string {
	return MonthNames[k.Month-1]
}

func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Less orders by year, then month.
func (k Key) Less(o Key) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// Dir is the directory a bucket is written to under root.
func Dir(root string, k Key) string {
	return filepath.Join(root, strconv.Itoa(k.Year), k.MonthName())
}

// ParseFunc turns date text into a time.
type ParseFunc func(string) (time.Time, error)

// ParseIn parses dates in any common layout; dates without an offset are read in loc.
// Slash dates are month first unless that is impossible (31/01/2024), then day first.
func ParseIn(loc *time.Location) ParseFunc {
	if loc == nil {
		loc = time.UTC
	}
	return func(s string) (time.Time, error) {
		return dateparse.ParseIn(s, loc, dateparse.RetryAmbiguousDateWithSwap(true))
	}
}

// Bucket is the rows of one (year, month), in input order.
type Bucket struct {
	Key  Key
	Rows *frame.Frame
}

// Group buckets the rows of f by the parsed value of dateColumn. Rows whose
// date is null or unparseable are left out and counted in dropped. Buckets
// come back ordered by year then month.
func Group(f *frame.Frame, dateColumn string, parse ParseFunc) (buckets []Bucket, dropped int, err error) {
	if f == nil {
		return nil, 0, frame.ErrDataNotLoaded
	}
	if parse == nil {
		parse = ParseIn(time.UTC)
	}
	name := standardize.NormalizeName(dateColumn)
	col, err := f.Require(name)
	if err != nil {
		return nil, 0, err
	}
	rows := make(map[Key][]int)
	for i := 0; i < f.Rows(); i++ {
		s, ok := frame.Format(col, i)
		if !ok {
			dropped++
			continue
		}
		t, err := parse(s)
		if err != nil {
			dropped++
			continue
		}
		k := Key{Year: t.Year(), Month: t.Month()}
		rows[k] = append(rows[k], i)
	}
	keys := make([]Key, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	buckets = make([]Bucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, Bucket{Key: k, Rows: f.Take(rows[k])})
	}
	return buckets, dropped, nil
}
