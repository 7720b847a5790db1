package frame

import (
	"fmt"
	"strconv"
)

// Schema describes the logical shape of a record set.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	// Value returns the cell as a Go value, nil when null.
	Value(i int) any
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

// Frame is a columnar container for tabular data. Column names are unique.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

// NewFrame builds an empty frame. Duplicate column names are rejected with ErrParse.
func NewFrame(s Schema) (*Frame, error) {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		if _, dup := f.index[cs.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrParse, cs.Name)
		}
		switch cs.Type {
		case KindInt:
			f.cols[i] = NewIntColumn(cs.Name, 0)
		case KindFloat:
			f.cols[i] = NewFloatColumn(cs.Name, 0)
		case KindString:
			f.cols[i] = NewStringColumn(cs.Name, 0)
		default:
			return nil, fmt.Errorf("column %s: invalid kind %d", cs.Name, cs.Type)
		}
		f.index[cs.Name] = i
	}
	return f, nil
}

// MustFrame is NewFrame for schemas known to be valid.
func MustFrame(s Schema) *Frame {
	f, err := NewFrame(s)
	if err != nil {
		panic(err)
	}
	return f
}

// StringSchema is a schema where every column is a nullable string.
func StringSchema(names ...string) Schema {
	s := Schema{Columns: make([]ColumnSchema, len(names))}
	for i, n := range names {
		s.Columns[i] = ColumnSchema{Name: n, Type: KindString, Nullable: true}
	}
	return s
}

func (f *Frame) Schema() Schema  { return f.schema }
func (f *Frame) Rows() int       { return f.nrows }
func (f *Frame) Cols() int       { return len(f.cols) }
func (f *Frame) Names() []string { return f.schema.Names() }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Require returns the named column or a *ColumnNotFoundError listing what exists.
func (f *Frame) Require(name string) (Column, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, &ColumnNotFoundError{Column: name, Available: f.Names()}
	}
	return c, nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		switch col := c.(type) {
		case *IntColumn:
			col.AppendNull()
		case *FloatColumn:
			col.AppendNull()
		case *StringColumn:
			col.AppendNull()
		default:
			panic("unknown column type")
		}
	}
	f.nrows++
}

// AppendStrings appends one row from text cells in schema order. Cells beyond
// the record are left null; empty cells stay null; cells that do not parse
// as the column kind stay null.
func (f *Frame) AppendStrings(rec []string) {
	f.AppendNullRow()
	row := f.nrows - 1
	for i, c := range f.cols {
		if i >= len(rec) || rec[i] == "" {
			continue
		}
		_ = f.setText(c, row, rec[i])
	}
}

func (f *Frame) setText(c Column, row int, val string) error {
	switch col := c.(type) {
	case *FloatColumn:
		x, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		col.Set(row, x)
	case *IntColumn:
		x, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return err
		}
		col.Set(row, x)
	case *StringColumn:
		col.Set(row, val)
	}
	return nil
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}

// Format renders a cell as text; ok is false for null cells.
func Format(c Column, row int) (string, bool) {
	switch v := c.Value(row).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// StringAt renders the cell at (row, name) as text.
func (f *Frame) StringAt(row int, name string) (string, bool) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return "", false
	}
	return Format(c, row)
}

// Record renders one row as text cells in schema order; nulls become "".
func (f *Frame) Record(row int) []string {
	rec := make([]string, len(f.cols))
	for i, c := range f.cols {
		rec[i], _ = Format(c, row)
	}
	return rec
}

// Take returns a new frame holding the given rows, in the given order.
func (f *Frame) Take(rows []int) *Frame {
	out := MustFrame(f.schema)
	for _, r := range rows {
		out.AppendNullRow()
		dst := out.nrows - 1
		for i, c := range f.cols {
			_ = out.SetCell(dst, f.schema.Columns[i].Name, c.Value(r))
		}
	}
	return out
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	rows := make([]int, f.nrows)
	for i := range rows {
		rows[i] = i
	}
	return f.Take(rows)
}

// Rename returns a copy of the frame with new column names (same order, same kinds).
func (f *Frame) Rename(names []string) (*Frame, error) {
	if len(names) != len(f.cols) {
		return nil, fmt.Errorf("rename: got %d names for %d columns", len(names), len(f.cols))
	}
	s := Schema{Columns: make([]ColumnSchema, len(names))}
	for i, cs := range f.schema.Columns {
		cs.Name = names[i]
		s.Columns[i] = cs
	}
	out, err := NewFrame(s)
	if err != nil {
		return nil, err
	}
	for r := 0; r < f.nrows; r++ {
		out.AppendNullRow()
		for i, c := range f.cols {
			_ = out.SetCell(r, names[i], c.Value(r))
		}
	}
	return out, nil
}

// CastString returns a copy where the named column is a string column holding
// the text form of each cell. Frames where it already is a string are returned as is.
func (f *Frame) CastString(name string) (*Frame, error) {
	c, err := f.Require(name)
	if err != nil {
		return nil, err
	}
	if c.Kind() == KindString {
		return f, nil
	}
	s := Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)}
	s.Columns[f.index[name]].Type = KindString
	out := MustFrame(s)
	for r := 0; r < f.nrows; r++ {
		out.AppendNullRow()
		for i, col := range f.cols {
			v := col.Value(r)
			if col == c && v != nil {
				v, _ = Format(col, r)
			}
			_ = out.SetCell(r, s.Columns[i].Name, v)
		}
	}
	return out, nil
}
