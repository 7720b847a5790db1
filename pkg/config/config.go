// Package config holds the run configuration and its file and environment layers.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/vistas/pkg/io/recordio"
)

// EnvPrefix prefixes every environment override, e.g. VISTAS_KEY_COLUMN.
const EnvPrefix = "VISTAS"

const (
	StageSplit    = "split"
	StageOrganize = "organize"
)

type Input struct {
	Path       string `json:"path" toml:"path" yaml:"path" split_words:"true"`
	Format     string `json:"format" toml:"format" yaml:"format" split_words:"true"`
	Delimiter  string `json:"delimiter" toml:"delimiter" yaml:"delimiter" split_words:"true"`
	HasHeader  bool   `json:"has_header" toml:"has_header" yaml:"has_header" split_words:"true"`
	InferTypes bool   `json:"infer_types" toml:"infer_types" yaml:"infer_types" split_words:"true"`
	Strict     bool   `json:"strict" toml:"strict" yaml:"strict" split_words:"true"`
}

type Log struct {
	Level  string `json:"level" toml:"level" yaml:"level" split_words:"true"`
	Format string `json:"format" toml:"format" yaml:"format" split_words:"true"` // text|json
}

type Config struct {
	// BaseDir anchors relative paths. Empty means the working directory.
	BaseDir        string   `json:"base_dir" toml:"base_dir" yaml:"base_dir" split_words:"true"`
	Input          Input    `json:"input" toml:"input" yaml:"input" split_words:"true"`
	KeyColumn      string   `json:"key_column" toml:"key_column" yaml:"key_column" split_words:"true"`
	DateColumn     string   `json:"date_column" toml:"date_column" yaml:"date_column" split_words:"true"`
	OutputDir      string   `json:"output_dir" toml:"output_dir" yaml:"output_dir" split_words:"true"`
	BucketRoot     string   `json:"bucket_root" toml:"bucket_root" yaml:"bucket_root" split_words:"true"`
	OutputFormat   string   `json:"output_format" toml:"output_format" yaml:"output_format" split_words:"true"`
	Stages         []string `json:"stages" toml:"stages" yaml:"stages" split_words:"true"`
	OrganizeInputs []string `json:"organize_inputs" toml:"organize_inputs" yaml:"organize_inputs" split_words:"true"`
	Timezone       string   `json:"timezone" toml:"timezone" yaml:"timezone" split_words:"true"`
	Log            Log      `json:"log" toml:"log" yaml:"log" split_words:"true"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Input:        Input{HasHeader: true, Delimiter: ","},
		KeyColumn:    "usuario",
		DateColumn:   "view_date",
		OutputDir:    "data",
		BucketRoot:   "order",
		OutputFormat: string(recordio.FormatCSV),
		Stages:       []string{StageSplit, StageOrganize},
		Timezone:     "UTC",
		Log:          Log{Level: "info", Format: "text"},
	}
}

// Load layers the defaults, an optional dotenv file, an optional config file
// and VISTAS_* environment variables, in that order. Empty paths are skipped;
// a missing dotenv file is not an error, a missing config file is.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, cfg)
	case ".toml":
		err = toml.Unmarshal(b, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("unsupported config file extension %q (want .json, .toml, .yaml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first setting that cannot be run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.KeyColumn) == "" {
		return errors.New("key_column is required")
	}
	if strings.TrimSpace(c.DateColumn) == "" {
		return errors.New("date_column is required")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.BucketRoot == "" {
		return errors.New("bucket_root is required")
	}
	if len(c.Stages) == 0 {
		return errors.New("stages is empty")
	}
	for _, s := range c.Stages {
		if s != StageSplit && s != StageOrganize {
			return fmt.Errorf("unknown stage %q (want %s or %s)", s, StageSplit, StageOrganize)
		}
	}
	if c.RunsStage(StageSplit) && c.Input.Path == "" {
		return errors.New("input.path is required")
	}
	if _, err := recordio.ParseFormat(c.Input.Format); err != nil {
		return fmt.Errorf("input.format: %w", err)
	}
	if _, err := c.OutFormat(); err != nil {
		return err
	}
	if _, err := c.Delimiter(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("log.format %q (want text or json)", f)
	}
	return nil
}

// RunsStage reports whether stage is enabled.
func (c *Config) RunsStage(stage string) bool {
	for _, s := range c.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// Resolve makes a relative path absolute against BaseDir.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// OutFormat is the format stage outputs are written in; auto means CSV.
func (c *Config) OutFormat() (recordio.Format, error) {
	f, err := recordio.ParseFormat(c.OutputFormat)
	if err != nil {
		return "", fmt.Errorf("output_format: %w", err)
	}
	if f == recordio.FormatAuto {
		f = recordio.FormatCSV
	}
	return f, nil
}

// Delimiter returns the single-character input delimiter, or 0 for "auto".
func (c *Config) Delimiter() (rune, error) {
	d := c.Input.Delimiter
	switch {
	case d == "":
		return ',', nil
	case d == "auto":
		return 0, nil
	case d == `\t`:
		return '\t', nil
	case utf8.RuneCountInString(d) == 1:
		r, _ := utf8.DecodeRuneInString(d)
		return r, nil
	default:
		return 0, fmt.Errorf("input.delimiter %q must be one character or auto", d)
	}
}

// Location loads Timezone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

// LogLevel parses Log.Level; empty means info.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
