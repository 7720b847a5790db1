package bucket

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wdm0006/vistas/pkg/io/recordio"
	"github.com/wdm0006/vistas/pkg/loader"
)

// Organizer writes one file per (year, month) for each input it is given.
type Organizer struct {
	OutRoot    string
	DateColumn string
	// Load options for inputs. KeyColumn is usually empty so that values
	// written by the partition stage are kept as they are.
	Load     loader.Options
	Format   recordio.Format
	Location *time.Location
	Logger   *slog.Logger
}

// NewOrganizer returns an Organizer with the default date column and UTC dates.
func NewOrganizer(outRoot string) *Organizer {
	opt := loader.DefaultOptions()
	opt.KeyColumn = ""
	return &Organizer{
		OutRoot:    outRoot,
		DateColumn: DefaultDateColumn,
		Load:       opt,
		Location:   time.UTC,
	}
}

// FileResult lists what one input produced.
type FileResult struct {
	Input   string   `json:"input"`
	Paths   []string `json:"paths"`
	Rows    int      `json:"rows"`
	Dropped int      `json:"dropped"`
}

func (o *Organizer) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// OrganizeFile loads input, buckets it by date and writes each bucket to
// <OutRoot>/<year>/<month>/<input base name><ext>. It returns the absolute
// paths written, in bucket order. An input with no parseable dates writes nothing.
func (o *Organizer) OrganizeFile(ctx context.Context, input string) ([]string, error) {
	res, err := o.organize(ctx, input)
	if err != nil {
		return nil, err
	}
	return res.Paths, nil
}

// OrganizeFiles runs OrganizeFile over each input in turn and stops at the first error.
func (o *Organizer) OrganizeFiles(ctx context.Context, inputs []string) ([]FileResult, error) {
	out := make([]FileResult, 0, len(inputs))
	for _, in := range inputs {
		res, err := o.organize(ctx, in)
		if err != nil {
			return out, err
		}
		out = append(out, *res)
	}
	return out, nil
}

func (o *Organizer) organize(ctx context.Context, input string) (*FileResult, error) {
	log := o.logger()
	opt := o.Load
	if opt.Logger == nil {
		opt.Logger = log
	}
	f, err := loader.Load(ctx, input, opt)
	if err != nil {
		return nil, err
	}
	dateColumn := o.DateColumn
	if dateColumn == "" {
		dateColumn = DefaultDateColumn
	}
	buckets, dropped, err := Group(f, dateColumn, ParseIn(o.Location))
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		log.Debug("dropped rows without a parseable date", "input", input, "column", dateColumn, "dropped", dropped)
	}
	root, err := filepath.Abs(o.OutRoot)
	if err != nil {
		return nil, err
	}
	base := recordio.BaseName(input) + o.Format.Ext()
	res := &FileResult{Input: input, Rows: f.Rows(), Dropped: dropped, Paths: make([]string, 0, len(buckets))}
	for _, b := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := Dir(root, b.Key)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bucket dir: %w", err)
		}
		p := filepath.Join(dir, base)
		if err := recordio.Write(p, b.Rows, recordio.WriteOptions{Format: o.Format}); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		log.Debug("bucket written", "input", input, "bucket", b.Key.String(), "rows", b.Rows.Rows(), "path", p)
		res.Paths = append(res.Paths, p)
	}
	return res, nil
}

