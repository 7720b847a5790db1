package bucket

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/vistas/pkg/frame"
	"github.com/wdm0006/vistas/pkg/io/recordio"
)

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestOrganizeFile(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "usuarios_nulos.csv", "usuario,View_Date,serie\n"+
		"null,2024-01-05,Alpha\n"+
		"null,not-a-date,Beta\n"+
		"null,2024-02-01,Gamma\n"+
		"null,2024-01-31,Delta\n")
	root := filepath.Join(dir, "order")
	o := NewOrganizer(root)
	paths, err := o.OrganizeFile(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(root, "2024", "Enero", "usuarios_nulos.csv"), paths[0])
	assert.Equal(t, filepath.Join(root, "2024", "Febrero", "usuarios_nulos.csv"), paths[1])
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p))
	}

	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	// the literal null written by the partition stage is kept
	assert.Equal(t, "usuario,view_date,serie\nnull,2024-01-05,Alpha\nnull,2024-01-31,Delta\n", string(raw))
}

func TestOrganizeFilesReport(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "usuarios_no_nulos.csv", "usuario,view_date\nana,2024-03-02\nluis,2024-03-09\n")
	b := writeInput(t, dir, "usuarios_nulos.csv", "usuario,view_date\nnull,bogus\n")
	o := NewOrganizer(filepath.Join(dir, "order"))
	o.Format = recordio.FormatJSONL
	res, err := o.OrganizeFiles(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 2, res[0].Rows)
	require.Len(t, res[0].Paths, 1)
	assert.Equal(t, "usuarios_no_nulos.jsonl", filepath.Base(res[0].Paths[0]))
	assert.Equal(t, "Marzo", filepath.Base(filepath.Dir(res[0].Paths[0])))
	// nothing parseable means nothing written
	assert.Empty(t, res[1].Paths)
	assert.Equal(t, 1, res[1].Dropped)
}

func TestOrganizeEmptyInput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "views.csv", "usuario,view_date\n")
	root := filepath.Join(dir, "order")
	paths, err := NewOrganizer(root).OrganizeFile(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, paths)
	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}

func TestOrganizeErrors(t *testing.T) {
	dir := t.TempDir()
	o := NewOrganizer(filepath.Join(dir, "order"))
	_, err := o.OrganizeFile(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, frame.ErrFileNotFound)

	in := writeInput(t, dir, "views.csv", "usuario,fecha\nana,2024-01-01\n")
	_, err = o.OrganizeFile(context.Background(), in)
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)
	assert.Contains(t, err.Error(), "fecha")
}

func TestOrganizeCompressedInput(t *testing.T) {
	dir := t.TempDir()
	f := frame.MustFrame(frame.StringSchema("usuario", "view_date"))
	f.AppendStrings([]string{"ana", "2024-05-05"})
	in := filepath.Join(dir, "main_views.csv.gz")
	require.NoError(t, recordio.Write(in, f, recordio.WriteOptions{}))

	paths, err := NewOrganizer(filepath.Join(dir, "order")).OrganizeFile(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "main_views.csv", filepath.Base(paths[0]))
	assert.Equal(t, "Mayo", filepath.Base(filepath.Dir(paths[0])))
}

func TestOrganizeDayFirstDate(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "usuarios_no_nulos.csv", "usuario,view_date\nana,31/01/2024\n")
	root := filepath.Join(dir, "order")
	paths, err := NewOrganizer(root).OrganizeFile(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "2024", "Enero", "usuarios_no_nulos.csv")}, paths)
}
