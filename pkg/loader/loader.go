// Package loader reads a views file into a normalized Frame.
package loader

import (
	"context"
	"log/slog"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/csvio"
	"github.com/wdm0006/vistas/pkg/io/recordio"
	"github.com/wdm0006/vistas/pkg/transform/standardize"
)

// DefaultKeyColumn is the nullable user identifier column.
const DefaultKeyColumn = "usuario"

type Options struct {
	// KeyColumn is normalized to null when empty or a null token. Leave it
	// empty to load without touching any values.
	KeyColumn string
	Format    recordio.Format
	CSV       csvio.ReaderOptions
	Logger    *slog.Logger
}

// DefaultOptions loads comma separated text with a header, every column as text.
func DefaultOptions() Options {
	return Options{
		KeyColumn: DefaultKeyColumn,
		CSV:       csvio.ReaderOptions{HasHeader: true},
	}
}

// Load reads path and returns a Frame whose column names are trimmed and
// lower-cased, whose text cells are trimmed, and whose key column (when
// present) holds null for "", "null", "none" and "nan" in any case.
func Load(ctx context.Context, path string, opt Options) (*frame.Frame, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	raw, err := recordio.Read(path, recordio.ReadOptions{Format: opt.Format, CSV: opt.CSV})
	if err != nil {
		return nil, err
	}
	f, err := Normalize(ctx, raw, opt.KeyColumn)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded", "path", path, "rows", f.Rows(), "columns", f.Names())
	return f, nil
}

// Normalize applies the load-time normalization to an in-memory Frame.
// The input Frame is not changed.
func Normalize(ctx context.Context, f *frame.Frame, keyColumn string) (*frame.Frame, error) {
	if f == nil {
		return nil, frame.ErrDataNotLoaded
	}
	p := frame.NewPipeline().Add(&standardize.ColumnNames{})
	named, err := p.Run(ctx, f)
	if err != nil {
		return nil, err
	}
	if named == f {
		named = f.Clone()
	}

	key := standardize.NormalizeName(keyColumn)
	p = frame.NewPipeline()
	for _, n := range named.Names() {
		p.Add(&standardize.Trim{Column: n})
	}
	if _, ok := named.ColumnByName(key); ok && key != "" {
		p.Add(&castString{Column: key})
		p.Add(standardize.NewNullTokens(key))
	}
	return p.Run(ctx, named)
}

// castString keeps the key column textual when kinds were inferred.
type castString struct{ Column string }

func (t *castString) Name() string { return "cast_string" }

func (t *castString) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return f.CastString(t.Column)
}
