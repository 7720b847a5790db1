package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/vistas/pkg/frame"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadNormalizes(t *testing.T) {
	p := writeFile(t, "views.csv", " Usuario , VIEW_DATE ,Serie\n"+
		" ana , 2024-01-05 , Alpha \n"+
		"NaN,2024-01-31,Beta\n"+
		" null ,2024-02-01,Gamma\n"+
		",2024-02-02,Delta\n"+
		"None,2024-02-03,null\n")
	f, err := Load(context.Background(), p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"usuario", "view_date", "serie"}, f.Names())
	require.Equal(t, 5, f.Rows())

	v, ok := f.StringAt(0, "usuario")
	assert.True(t, ok)
	assert.Equal(t, "ana", v)
	for r := 1; r < 5; r++ {
		_, ok := f.StringAt(r, "usuario")
		assert.False(t, ok, "row %d", r)
	}
	v, _ = f.StringAt(0, "serie")
	assert.Equal(t, "Alpha", v)
	// only the key column is value-normalized
	v, ok = f.StringAt(4, "serie")
	assert.True(t, ok)
	assert.Equal(t, "null", v)
}

func TestLoadWithoutKeyColumn(t *testing.T) {
	p := writeFile(t, "views.csv", "cliente,view_date\nnull,2024-01-05\n")
	f, err := Load(context.Background(), p, DefaultOptions())
	require.NoError(t, err)
	v, ok := f.StringAt(0, "cliente")
	assert.True(t, ok)
	assert.Equal(t, "null", v)
}

func TestLoadKeepsKeyTextual(t *testing.T) {
	p := writeFile(t, "views.csv", "usuario,edad\n10,31\n,40\n")
	opt := DefaultOptions()
	opt.CSV.InferKinds = true
	f, err := Load(context.Background(), p, opt)
	require.NoError(t, err)
	col, err := f.Require("usuario")
	require.NoError(t, err)
	assert.Equal(t, frame.KindString, col.Kind())
	age, _ := f.Require("edad")
	assert.Equal(t, frame.KindInt, age.Kind())
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	_, err := Load(ctx, filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	assert.ErrorIs(t, err, frame.ErrFileNotFound)

	_, err = Load(ctx, writeFile(t, "empty.csv", ""), DefaultOptions())
	assert.ErrorIs(t, err, frame.ErrParse)

	_, err = Load(ctx, writeFile(t, "dup.csv", "Usuario,usuario\na,b\n"), DefaultOptions())
	assert.ErrorIs(t, err, frame.ErrParse)
}

func TestNormalizeIdempotent(t *testing.T) {
	ctx := context.Background()
	f := frame.MustFrame(frame.StringSchema(" USUARIO", "View_Date "))
	f.AppendStrings([]string{" NULL ", "2024-01-05"})
	f.AppendStrings([]string{"ana", "2024-01-06"})

	once, err := Normalize(ctx, f, "usuario")
	require.NoError(t, err)
	twice, err := Normalize(ctx, once, "usuario")
	require.NoError(t, err)
	assert.Equal(t, once.Names(), twice.Names())
	for r := 0; r < once.Rows(); r++ {
		assert.Equal(t, once.Record(r), twice.Record(r))
	}
	// the caller's frame is left alone
	assert.Equal(t, " USUARIO", f.Names()[0])
	v, _ := f.StringAt(0, " USUARIO")
	assert.Equal(t, " NULL ", v)

	_, err = Normalize(ctx, nil, "usuario")
	assert.ErrorIs(t, err, frame.ErrDataNotLoaded)
}

func TestLoadBareQuoteInValue(t *testing.T) {
	p := writeFile(t, "views.csv", "usuario,view_date,serie\nana,2024-01-05,El \"Chapo\"\n")
	f, err := Load(context.Background(), p, DefaultOptions())
	require.NoError(t, err)
	v, _ := f.StringAt(0, "serie")
	assert.Equal(t, `El "Chapo"`, v)
}
