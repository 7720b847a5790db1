package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/wdm0006/vistas/pkg/frame"
	iox "github.com/wdm0006/vistas/pkg/io/ioutils"
)

// WriteAll writes one JSON object per row, keys in schema order, nulls omitted.
func WriteAll(path string, f *frame.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func Write(out io.Writer, f *frame.Frame) error {
	w := bufio.NewWriter(out)
	names := f.Names()
	cols := make([]frame.Column, len(names))
	keys := make([][]byte, len(names))
	for i, n := range names {
		cols[i], _ = f.ColumnByName(n)
		keys[i], _ = json.Marshal(n)
	}
	for r := 0; r < f.Rows(); r++ {
		_ = w.WriteByte('{')
		first := true
		for i, c := range cols {
			v := c.Value(r)
			if v == nil {
				continue
			}
			if !first {
				_ = w.WriteByte(',')
			}
			first = false
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			_, _ = w.Write(keys[i])
			_ = w.WriteByte(':')
			_, _ = w.Write(b)
		}
		if _, err := w.WriteString("}\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
