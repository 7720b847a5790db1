// Package recordio picks a reader or writer for a record file by format.
package recordio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/csvio"
	iox "github.com/wdm0006/vistas/pkg/io/ioutils"
	"github.com/wdm0006/vistas/pkg/io/jsonlio"
	"github.com/wdm0006/vistas/pkg/io/parquetio"
	"github.com/wdm0006/vistas/pkg/io/xlsxio"
)

type Format string

const (
	FormatAuto    Format = ""
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
	FormatXLSX    Format = "xlsx"
)

// ParseFormat accepts the config spelling of a format; "" and "auto" mean detect.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv", "txt":
		return FormatCSV, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "parquet":
		return FormatParquet, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Ext is the file extension written for a format, with the dot.
func (f Format) Ext() string {
	if f == FormatAuto {
		return "." + string(FormatCSV)
	}
	return "." + string(f)
}

// Detect infers the format from a path's extension, ignoring a trailing .gz.
// Unknown extensions are read as CSV.
func Detect(path string) Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(iox.TrimCompressionExt(path))), ".")
	if f, err := ParseFormat(ext); err == nil && f != FormatAuto {
		return f
	}
	return FormatCSV
}

// BaseName is the file name without directory, compression suffix or extension.
func BaseName(path string) string {
	name := filepath.Base(iox.TrimCompressionExt(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

type ReadOptions struct {
	Format Format
	CSV    csvio.ReaderOptions
}

// Read loads a record file. A path that does not resolve to a regular,
// readable file fails with frame.ErrFileNotFound.
func Read(path string, opt ReadOptions) (*frame.Frame, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", frame.ErrFileNotFound, path)
		}
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", frame.ErrFileNotFound, path)
	}
	format := opt.Format
	if format == FormatAuto {
		format = Detect(path)
	}
	switch format {
	case FormatCSV:
		f, err := csvio.ReadFile(path, opt.CSV)
		return f, notFound(path, err)
	case FormatJSONL:
		r, err := jsonlio.Open(path)
		if err != nil {
			return nil, notFound(path, err)
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	case FormatParquet:
		f, err := parquetio.ReadAll(path)
		return f, notFound(path, err)
	case FormatXLSX:
		f, err := xlsxio.ReadAll(path)
		return f, notFound(path, err)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func notFound(path string, err error) error {
	if err != nil && errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s: %v", frame.ErrFileNotFound, path, err)
	}
	return err
}

type WriteOptions struct {
	Format Format
	CSV    csvio.WriterOptions
}

// Write stores a Frame in the given format, creating or truncating path.
func Write(path string, f *frame.Frame, opt WriteOptions) error {
	switch opt.Format {
	case FormatAuto, FormatCSV:
		return csvio.WriteAll(path, f, opt.CSV)
	case FormatJSONL:
		return jsonlio.WriteAll(path, f)
	case FormatParquet:
		return parquetio.WriteAll(path, f)
	case FormatXLSX:
		return xlsxio.WriteAll(path, f)
	default:
		return fmt.Errorf("unsupported format %q", opt.Format)
	}
}
