package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/wdm0006/vistas/pkg/config"
	"github.com/wdm0006/vistas/pkg/etl"
	"github.com/wdm0006/vistas/pkg/profile"
)

var (
	version = "0.1.0-dev"
)

type options struct {
	showVersion bool
	configPath  string
	envFile     string
	profile     bool
	topK        int
	jsonOut     bool

	input        string
	keyColumn    string
	dateColumn   string
	outputDir    string
	bucketRoot   string
	outputFormat string
	stages       string
	logLevel     string
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	fs.StringVar(&o.configPath, "config", "", "Path to config file (.json, .toml, .yaml)")
	fs.StringVar(&o.envFile, "env-file", ".env", "Dotenv file with VISTAS_* overrides; skipped if missing")
	fs.BoolVar(&o.profile, "profile", false, "Print a column profile of the loaded input")
	fs.IntVar(&o.topK, "top", 5, "Top values shown per text column with -profile")
	fs.BoolVar(&o.jsonOut, "json", false, "Print the run report (and profile) as JSON")
	fs.StringVar(&o.input, "input", "", "Input views file")
	fs.StringVar(&o.keyColumn, "key-column", "", "Nullable user column (default usuario)")
	fs.StringVar(&o.dateColumn, "date-column", "", "Date column (default view_date)")
	fs.StringVar(&o.outputDir, "output-dir", "", "Directory for the partition files (default data)")
	fs.StringVar(&o.bucketRoot, "bucket-root", "", "Root of the year/month tree (default order)")
	fs.StringVar(&o.outputFormat, "output-format", "", "csv, jsonl, parquet or xlsx (default csv)")
	fs.StringVar(&o.stages, "stages", "", "Comma separated stages to run: split,organize")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.input == "" && fs.NArg() > 0 {
		o.input = fs.Arg(0)
	}
	return o, nil
}

// apply overlays flags that were given on top of the loaded config.
func (o *options) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Input.Path, o.input)
	set(&cfg.KeyColumn, o.keyColumn)
	set(&cfg.DateColumn, o.dateColumn)
	set(&cfg.OutputDir, o.outputDir)
	set(&cfg.BucketRoot, o.bucketRoot)
	set(&cfg.OutputFormat, o.outputFormat)
	set(&cfg.Log.Level, o.logLevel)
	if o.stages != "" {
		cfg.Stages = nil
		for _, s := range strings.Split(o.stages, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Stages = append(cfg.Stages, s)
			}
		}
	}
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	lvl, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: lvl}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vistas", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.showVersion {
		fmt.Fprintln(stdout, "vistas", version)
		return 0
	}

	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "invalid configuration:", err)
		return 2
	}
	log := newLogger(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := etl.Run(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	var prof *profile.Collector
	if o.profile && rep.Loaded != nil {
		prof = profile.NewCollector(rep.Loaded.Schema(), o.topK)
		prof.ConsumeFrame(rep.Loaded)
	}

	if o.jsonOut {
		out := struct {
			*etl.Report
			Profile *profile.JSONProfile `json:"profile,omitempty"`
		}{Report: rep}
		if prof != nil {
			p := prof.ReportJSON()
			out.Profile = &p
		}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, string(b))
		return 0
	}
	printReport(stdout, rep)
	if prof != nil {
		fmt.Fprint(stdout, prof.ReportText())
	}
	return 0
}

func printReport(w io.Writer, rep *etl.Report) {
	fmt.Fprintf(w, "Run: %s\n", rep.RunID)
	if p := rep.Partition; p != nil {
		fmt.Fprintf(w, "Input: %s\n", rep.Input)
		fmt.Fprintf(w, "Rows: %d (with user: %d, without user: %d)\n", p.Counts.Total, p.Counts.NotNull, p.Counts.Null)
		fmt.Fprintf(w, "Wrote: %s\n", p.NotNullPath)
		fmt.Fprintf(w, "Wrote: %s\n", p.NullPath)
	}
	for _, b := range rep.Buckets {
		fmt.Fprintf(w, "Organized %s: %d rows, %d without a date, %d files\n", b.Input, b.Rows, b.Dropped, len(b.Paths))
		for _, p := range b.Paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	fmt.Fprintf(w, "Files written: %d in %s\n", rep.Files, rep.Elapsed)
}
