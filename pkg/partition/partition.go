// Package partition splits a Frame by whether its key column holds a value.
package partition

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/recordio"
	"github.com/wdm0006/vistas/pkg/transform/impute"
	"github.com/wdm0006/vistas/pkg/transform/standardize"
)

const (
	NotNullBase = "usuarios_no_nulos"
	NullBase    = "usuarios_nulos"

	// NullLiteral replaces null keys in the null partition's file.
	NullLiteral = "null"
)

// Counts always satisfies NotNull+Null == Total.
type Counts struct {
	NotNull int `json:"not_null"`
	Null    int `json:"null"`
	Total   int `json:"total"`
}

type Partitions struct {
	NotNull   *frame.Frame
	Null      *frame.Frame
	KeyColumn string
	Counts    Counts
}

// Split partitions f by its key column, keeping input order inside each side.
// keyColumn is matched after trimming and lower-casing.
func Split(f *frame.Frame, keyColumn string) (*Partitions, error) {
	if f == nil {
		return nil, frame.ErrDataNotLoaded
	}
	key := standardize.NormalizeName(keyColumn)
	col, err := f.Require(key)
	if err != nil {
		return nil, err
	}
	var present, missing []int
	for i := 0; i < f.Rows(); i++ {
		if col.IsNull(i) {
			missing = append(missing, i)
		} else {
			present = append(present, i)
		}
	}
	return &Partitions{
		NotNull:   f.Take(present),
		Null:      f.Take(missing),
		KeyColumn: key,
		Counts:    Counts{NotNull: len(present), Null: len(missing), Total: f.Rows()},
	}, nil
}

type SaveOptions struct {
	Format recordio.Format
}

type Result struct {
	NotNullPath string `json:"not_null_path"`
	NullPath    string `json:"null_path"`
	Counts      Counts `json:"counts"`
}

// Save writes both partitions into outDir, creating it if needed. The null
// side is written from a copy whose key cells read NullLiteral; p is unchanged.
func Save(ctx context.Context, p *Partitions, outDir string, opt SaveOptions) (*Result, error) {
	if p == nil || p.NotNull == nil || p.Null == nil {
		return nil, frame.ErrDataNotLoaded
	}
	dir, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	res := &Result{
		NotNullPath: filepath.Join(dir, NotNullBase+opt.Format.Ext()),
		NullPath:    filepath.Join(dir, NullBase+opt.Format.Ext()),
		Counts:      p.Counts,
	}
	wo := recordio.WriteOptions{Format: opt.Format}
	if err := recordio.Write(res.NotNullPath, p.NotNull, wo); err != nil {
		return nil, fmt.Errorf("write %s: %w", res.NotNullPath, err)
	}

	display, err := frame.NewPipeline().
		Add(&impute.Constant{Column: p.KeyColumn, Value: NullLiteral}).
		Run(ctx, p.Null.Clone())
	if err != nil {
		return nil, err
	}
	if err := recordio.Write(res.NullPath, display, wo); err != nil {
		return nil, fmt.Errorf("write %s: %w", res.NullPath, err)
	}
	return res, nil
}
