// Package etl runs the split and organize stages for one configuration.
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/wdm0006/vistas/pkg/bucket"
	"github.com/wdm0006/vistas/pkg/config"
	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/csvio"
	"github.com/wdm0006/vistas/pkg/io/recordio"
	"github.com/wdm0006/vistas/pkg/loader"
	"github.com/wdm0006/vistas/pkg/partition"
)

type Report struct {
	RunID     string              `json:"run_id"`
	Input     string              `json:"input,omitempty"`
	Partition *partition.Result   `json:"partition,omitempty"`
	Buckets   []bucket.FileResult `json:"buckets,omitempty"`
	Files     int                 `json:"files"`
	Elapsed   time.Duration       `json:"elapsed_ns"`
	// Loaded is the normalized input, kept for profiling. Nil when split did not run.
	Loaded *frame.Frame `json:"-"`
}

// Run executes the configured stages. cfg must have passed Validate.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()
	rep := &Report{RunID: uuid.New().String()}
	log = log.With("run_id", rep.RunID)

	outFormat, err := cfg.OutFormat()
	if err != nil {
		return nil, err
	}
	loadOpt, err := loadOptions(cfg)
	if err != nil {
		return nil, err
	}
	loadOpt.Logger = log

	organizeInputs := resolveAll(cfg, cfg.OrganizeInputs)

	if cfg.RunsStage(config.StageSplit) {
		rep.Input = cfg.Resolve(cfg.Input.Path)
		log.Info("split started", "input", rep.Input, "key_column", cfg.KeyColumn)
		f, err := loader.Load(ctx, rep.Input, loadOpt)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", rep.Input, err)
		}
		rep.Loaded = f
		parts, err := partition.Split(f, cfg.KeyColumn)
		if err != nil {
			return nil, fmt.Errorf("split: %w", err)
		}
		res, err := partition.Save(ctx, parts, cfg.Resolve(cfg.OutputDir), partition.SaveOptions{Format: outFormat})
		if err != nil {
			return nil, fmt.Errorf("save partitions: %w", err)
		}
		rep.Partition = res
		rep.Files += 2
		log.Info("split finished",
			"not_null", res.Counts.NotNull, "null", res.Counts.Null, "total", res.Counts.Total,
			"not_null_path", res.NotNullPath, "null_path", res.NullPath)
		if len(organizeInputs) == 0 {
			organizeInputs = []string{res.NotNullPath, res.NullPath}
		}
	}

	if cfg.RunsStage(config.StageOrganize) {
		if len(organizeInputs) == 0 {
			// organize without split reads what an earlier split wrote
			dir := cfg.Resolve(cfg.OutputDir)
			organizeInputs = []string{
				filepath.Join(dir, partition.NotNullBase+outFormat.Ext()),
				filepath.Join(dir, partition.NullBase+outFormat.Ext()),
			}
		}
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		org := bucket.NewOrganizer(cfg.Resolve(cfg.BucketRoot))
		org.DateColumn = cfg.DateColumn
		org.Format = outFormat
		org.Location = loc
		org.Logger = log
		// stage inputs are always headed; the delimiter is sniffed since
		// split output is comma separated whatever the input used
		org.Load.CSV = csvio.ReaderOptions{HasHeader: true, Sniff: true}
		log.Info("organize started", "inputs", organizeInputs, "date_column", cfg.DateColumn)
		results, err := org.OrganizeFiles(ctx, organizeInputs)
		rep.Buckets = results
		if err != nil {
			return nil, fmt.Errorf("organize: %w", err)
		}
		for _, r := range results {
			rep.Files += len(r.Paths)
			log.Info("organized", "input", r.Input, "rows", r.Rows, "dropped", r.Dropped, "files", len(r.Paths))
		}
	}
	rep.Elapsed = time.Since(start)
	log.Info("run finished", "files", rep.Files, "elapsed", rep.Elapsed)
	return rep, nil
}

func loadOptions(cfg *config.Config) (loader.Options, error) {
	opt := loader.DefaultOptions()
	opt.KeyColumn = cfg.KeyColumn
	f, err := recordio.ParseFormat(cfg.Input.Format)
	if err != nil {
		return opt, err
	}
	opt.Format = f
	delim, err := cfg.Delimiter()
	if err != nil {
		return opt, err
	}
	opt.CSV = csvio.ReaderOptions{
		HasHeader:  cfg.Input.HasHeader,
		Delimiter:  delim,
		Sniff:      delim == 0,
		InferKinds: cfg.Input.InferTypes,
		Strict:     cfg.Input.Strict,
	}
	return opt, nil
}

func resolveAll(cfg *config.Config, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = cfg.Resolve(p)
	}
	return out
}
