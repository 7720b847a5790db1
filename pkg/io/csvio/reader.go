package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/wdm0006/vistas/pkg/frame"
	iox "github.com/wdm0006/vistas/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = ','
	Sniff      bool // guess the delimiter from the first 4KiB; overrides Delimiter
	InferKinds bool // sample rows to type columns as int/float; default is all strings
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
	LazyQuotes bool // keep bare quotes in unquoted fields as text
}

type Reader struct {
	r      *csv.Reader
	closer io.Closer
	opt    ReaderOptions
	buf    [][]string
	row    int
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a (possibly gzip compressed) CSV file and returns a Reader.
// The caller closes the Reader.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(rc)
	if opt.Sniff {
		sample, _ := br.Peek(4096)
		opt.Delimiter = sniffDelimiter(sample)
	}
	r := NewReaderFrom(br, opt)
	r.closer = rc
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.TrimLeadingSpace = true
	rr.LazyQuotes = opt.LazyQuotes
	rr.ReuseRecord = true
	return &Reader{r: rr, opt: opt}
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) read() ([]string, error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return nil, err
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("%w: %w", frame.ErrParse, pe)
		}
		return nil, err
	}
	return rec, nil
}

// InferSchema reads the header (if present) and, with InferKinds, samples rows
// to determine column kinds. A file without a header row fails with frame.ErrParse.
func (r *Reader) InferSchema() (frame.Schema, error) {
	rec, err := r.read()
	if err == io.EOF {
		return frame.Schema{}, fmt.Errorf("%w: missing header row", frame.ErrParse)
	}
	if err != nil {
		return frame.Schema{}, err
	}
	names := make([]string, len(rec))
	if r.opt.HasHeader {
		for i := range rec {
			names[i] = strings.ToValidUTF8(rec[i], "?")
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
		r.buf = append(r.buf, append([]string(nil), rec...))
	}

	kinds := make([]frame.Kind, len(names))
	for i := range kinds {
		kinds[i] = frame.KindString
	}
	if r.opt.InferKinds {
		max := r.opt.SampleRows
		if max <= 0 {
			max = 100
		}
		for len(r.buf) < max {
			rr, err := r.read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return frame.Schema{}, err
			}
			// records are reused by the csv reader
			r.buf = append(r.buf, append([]string(nil), rr...))
		}
		kinds = inferKinds(r.buf, len(names))
	}

	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the rest of the CSV into a Frame. Cells are trimmed; empty
// cells are null.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f, err := frame.NewFrame(schema)
	if err != nil {
		return nil, err
	}
	// drain buffered records from inference (if any)
	for len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	for {
		rec, err := r.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *frame.Frame, rec []string) error {
	r.row++
	ncol := f.Cols()
	switch {
	case len(rec) > ncol:
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("%w: csv long record at row %d: need %d fields, got %d", frame.ErrParse, r.row, ncol, len(rec))
		}
	case len(rec) < ncol:
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("%w: csv short record at row %d: need %d fields, got %d", frame.ErrParse, r.row, ncol, len(rec))
		}
	}
	n := len(rec)
	if n > ncol {
		n = ncol
	}
	vals := make([]string, n)
	for i := 0; i < n; i++ {
		vals[i] = strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
	}
	f.AppendStrings(vals)
	return nil
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

func inferKinds(rows [][]string, ncol int) []frame.Kind {
	kinds := make([]frame.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, str := 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			} else {
				str++
			}
		}
		// a single text cell keeps the column textual so nothing is lost on write
		switch {
		case num > 0 && str == 0 && integer == num:
			kinds[c] = frame.KindInt
		case num > 0 && str == 0:
			kinds[c] = frame.KindFloat
		default:
			kinds[c] = frame.KindString
		}
	}
	return kinds
}

func sniffDelimiter(sample []byte) rune {
	if len(sample) == 0 {
		return ','
	}
	// only the first line: values may contain any candidate
	if i := strings.IndexByte(string(sample), '\n'); i > 0 {
		sample = sample[:i]
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	return rune(best)
}

// ReadFile loads a whole CSV file. A file that fails only because of a bare
// quote in an unquoted field (El "Chapo") is read again with LazyQuotes.
func ReadFile(path string, opt ReaderOptions) (*frame.Frame, error) {
	f, err := readWhole(path, opt)
	var pe *csv.ParseError
	if err != nil && !opt.LazyQuotes && errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrBareQuote) {
		opt.LazyQuotes = true
		return readWhole(path, opt)
	}
	return f, err
}

func readWhole(path string, opt ReaderOptions) (*frame.Frame, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
