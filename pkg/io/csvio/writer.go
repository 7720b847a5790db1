package csvio

import (
	"encoding/csv"
	"io"

	"github.com/wdm0006/vistas/pkg/frame"
	iox "github.com/wdm0006/vistas/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. Paths ending in .gz are compressed.
func WriteAll(path string, f *frame.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write encodes a Frame as CSV: one header row, then one line per row.
// Null cells are written empty.
func Write(out io.Writer, f *frame.Frame, opt WriterOptions) error {
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	if err := w.Write(f.Names()); err != nil {
		return err
	}
	for r := 0; r < f.Rows(); r++ {
		if err := w.Write(f.Record(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
