// Package profile summarizes the columns of a Frame.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wdm0006/vistas/pkg/frame"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

type TextStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind frame.Kind
	Num  *NumStats
	Text *TextStats
}

// Collector accumulates per-column counts over one or more Frames sharing a schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
	rows  int
}

func NewCollector(schema frame.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		default:
			cp.Text = &TextStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// Rows is the number of rows consumed so far.
func (c *Collector) Rows() int { return c.rows }

func (c *Collector) ConsumeFrame(f *frame.Frame) {
	c.rows += f.Rows()
	for _, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col, _ := f.ColumnByName(cs.Name)
		for i := 0; i < col.Len(); i++ {
			switch v := col.Value(i).(type) {
			case nil:
				cp.nulls()
			case float64:
				cp.Num.add(v)
			case int64:
				cp.Num.add(float64(v))
			default:
				s, _ := frame.Format(col, i)
				cp.Text.Count++
				if c.topK > 0 {
					cp.Text.Freqs[s]++
				}
			}
		}
	}
}

func (cp *ColumnProfile) nulls() {
	if cp.Num != nil {
		cp.Num.Nulls++
		return
	}
	cp.Text.Nulls++
}

func (n *NumStats) add(v float64) {
	n.Count++
	if v < n.Min {
		n.Min = v
	}
	if v > n.Max {
		n.Max = v
	}
	n.Sum += v
}

// ValueCount is one entry of a top-values list.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// top returns the k most frequent values, ties broken by value.
func top(freqs map[string]int, k int) []ValueCount {
	arr := make([]ValueCount, 0, len(freqs))
	for v, n := range freqs {
		arr = append(arr, ValueCount{v, n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if k > 0 && k < len(arr) {
		arr = arr[:k]
	}
	return arr
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", c.rows)
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			mean := 0.0
			if cp.Num.Count > 0 {
				mean = cp.Num.Sum / float64(cp.Num.Count)
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, mean)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d distinct=%d\n", cp.Text.Count, cp.Text.Nulls, len(cp.Text.Freqs))
			if c.topK > 0 {
				for _, e := range top(cp.Text.Freqs, c.topK) {
					fmt.Fprintf(&b, "  * %q: %d\n", e.Value, e.Count)
				}
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Rows    int          `json:"rows"`
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string    `json:"name"`
	Kind string    `json:"kind"`
	Num  *NumStats `json:"num,omitempty"`
	Text *JSONText `json:"text,omitempty"`
}

type JSONText struct {
	Count    int  `json:"count"`
	Nulls    int  `json:"nulls"`
	Distinct int  `json:"distinct"`
	Top      []ValueCount `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Rows: c.rows, Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String(), Num: cp.Num}
		if cp.Num != nil && cp.Num.Count == 0 {
			// infinities do not encode
			n := *cp.Num
			n.Min, n.Max = 0, 0
			jc.Num = &n
		}
		if cp.Text != nil {
			jc.Text = &JSONText{Count: cp.Text.Count, Nulls: cp.Text.Nulls, Distinct: len(cp.Text.Freqs)}
			if c.topK > 0 {
				jc.Text.Top = top(cp.Text.Freqs, c.topK)
			}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
