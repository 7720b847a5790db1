package recordio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/csvio"
)

func TestDetect(t *testing.T) {
	cases := map[string]Format{
		"data/usuarios_nulos.csv":     FormatCSV,
		"views.CSV.gz":                FormatCSV,
		"views.jsonl":                 FormatJSONL,
		"views.ndjson.gz":             FormatJSONL,
		"order/2024/Enero/a.parquet":  FormatParquet,
		"report.xlsx":                 FormatXLSX,
		"main_views":                  FormatCSV,
	}
	for p, want := range cases {
		assert.Equal(t, want, Detect(p), p)
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "usuarios_no_nulos", BaseName("/x/data/usuarios_no_nulos.csv"))
	assert.Equal(t, "usuarios_nulos", BaseName("usuarios_nulos.csv.gz"))
	assert.Equal(t, "main.views", BaseName("main.views.parquet"))
	assert.Equal(t, "plain", BaseName("plain"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" Parquet ")
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, f)
	_, err = ParseFormat("avro")
	assert.Error(t, err)
	assert.Equal(t, ".csv", FormatAuto.Ext())
	assert.Equal(t, ".xlsx", FormatXLSX.Ext())
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"), ReadOptions{})
	assert.ErrorIs(t, err, frame.ErrFileNotFound)

	_, err = Read(t.TempDir(), ReadOptions{})
	assert.ErrorIs(t, err, frame.ErrFileNotFound)
}

func TestWriteReadEachFormat(t *testing.T) {
	f := frame.MustFrame(frame.StringSchema("usuario", "view_date"))
	f.AppendStrings([]string{"ana", "2024-01-05"})
	f.AppendStrings([]string{"", "2024-02-01"})

	dir := t.TempDir()
	for _, format := range []Format{FormatCSV, FormatJSONL, FormatParquet, FormatXLSX} {
		p := filepath.Join(dir, "views"+format.Ext())
		require.NoError(t, Write(p, f, WriteOptions{Format: format}), format)
		back, err := Read(p, ReadOptions{CSV: csvio.ReaderOptions{HasHeader: true}})
		require.NoError(t, err, format)
		assert.Equal(t, f.Names(), back.Names(), format)
		require.Equal(t, f.Rows(), back.Rows(), format)
		assert.Equal(t, f.Record(1), back.Record(1), format)
	}
}

func TestReadCSVParseError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	_, err := Read(p, ReadOptions{CSV: csvio.ReaderOptions{HasHeader: true}})
	assert.ErrorIs(t, err, frame.ErrParse)
}
