package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "main_views.csv")
	require.NoError(t, os.WriteFile(p, []byte("usuario,view_date\nana,2024-01-05\n,2024-02-01\nnan,bad\n"), 0o644))
	return dir
}

func TestRunText(t *testing.T) {
	dir := fixture(t)
	var out, errb bytes.Buffer
	code := run([]string{
		"-env-file", "",
		"-input", filepath.Join(dir, "main_views.csv"),
		"-output-dir", filepath.Join(dir, "data"),
		"-bucket-root", filepath.Join(dir, "order"),
		"-profile",
	}, &out, &errb)
	require.Equal(t, 0, code, errb.String())
	assert.Contains(t, out.String(), "Rows: 3 (with user: 1, without user: 2)")
	assert.Contains(t, out.String(), filepath.Join(dir, "order", "2024", "Febrero", "usuarios_nulos.csv"))
	assert.Contains(t, out.String(), "Profile Summary (3 rows)")
	assert.FileExists(t, filepath.Join(dir, "order", "2024", "Enero", "usuarios_no_nulos.csv"))
}

func TestRunJSON(t *testing.T) {
	dir := fixture(t)
	var out, errb bytes.Buffer
	code := run([]string{
		"-env-file", "",
		"-json",
		"-stages", "split",
		"-output-dir", filepath.Join(dir, "data"),
		filepath.Join(dir, "main_views.csv"),
	}, &out, &errb)
	require.Equal(t, 0, code, errb.String())
	var rep struct {
		RunID     string `json:"run_id"`
		Files     int    `json:"files"`
		Partition struct {
			Counts struct {
				Null int `json:"null"`
			} `json:"counts"`
		} `json:"partition"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 2, rep.Files)
	assert.Equal(t, 2, rep.Partition.Counts.Null)
}

func TestRunExitCodes(t *testing.T) {
	var out, errb bytes.Buffer
	assert.Equal(t, 0, run([]string{"-version"}, &out, &errb))
	assert.Contains(t, out.String(), "vistas")

	// no input configured
	assert.Equal(t, 2, run([]string{"-env-file", ""}, &out, &errb))
	assert.Equal(t, 2, run([]string{"-env-file", "", "-input", "x.csv", "-stages", "load"}, &out, &errb))

	dir := fixture(t)
	errb.Reset()
	code := run([]string{"-env-file", "", "-input", filepath.Join(dir, "main_views.csv"), "-key-column", "cliente", "-output-dir", filepath.Join(dir, "data")}, &out, &errb)
	assert.Equal(t, 1, code)
	assert.Contains(t, errb.String(), "available columns")
}
