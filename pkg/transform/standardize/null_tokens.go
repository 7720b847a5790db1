package standardize

import (
	"context"
	"regexp"

	"github.com/wdm0006/vistas/pkg/frame"
)

// DefaultNullPattern matches the empty string and the null/none/nan tokens in
// any letter case, after trimming.
const DefaultNullPattern = `(?i)^\s*(null|none|nan)?\s*$`

// Nullify sets cells of a string column to null when they match Pattern.
type Nullify struct {
	Column  string
	Pattern string
	re      *regexp.Regexp
}

// NewNullTokens returns a Nullify using DefaultNullPattern.
func NewNullTokens(column string) *Nullify {
	return &Nullify{Column: column, Pattern: DefaultNullPattern}
}

func (t *Nullify) Name() string { return "nullify" }

func (t *Nullify) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if t.re == nil {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return f, err
		}
		t.re = re
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	if c, ok := col.(*frame.StringColumn); ok {
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			v, _ := c.Get(i)
			if t.re.MatchString(v) {
				c.SetNull(i)
			}
		}
	}
	return f, nil
}

// IsNullToken reports whether v would be coerced to null by the default pattern.
func IsNullToken(v string) bool {
	return defaultNullRe.MatchString(v)
}

var defaultNullRe = regexp.MustCompile(DefaultNullPattern)
