package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/vistas/pkg/frame"
)

// ReadAll loads a flat Parquet file into a Frame of string columns, keeping the
// file's column order.
func ReadAll(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	st, err := file.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(file, st.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frame.ErrParse, err)
	}

	var names []string
	for _, el := range pf.Metadata().Schema[1:] {
		if el.NumChildren > 0 {
			return nil, fmt.Errorf("%w: nested column %q is not supported", frame.ErrParse, el.Name)
		}
		names = append(names, el.Name)
	}
	f, err := frame.NewFrame(frame.StringSchema(names...))
	if err != nil {
		return nil, err
	}

	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				f.AppendNullRow()
				r := f.Rows() - 1
				for _, v := range row {
					if v.IsNull() || v.Column() >= len(names) {
						continue
					}
					_ = f.SetCell(r, names[v.Column()], valueText(v))
				}
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("parquet read rows: %w", err)
			}
			if n == 0 {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func valueText(v parquet.Value) string {
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	default:
		return v.String()
	}
}
