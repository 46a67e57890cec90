package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderFor(t *testing.T) {
	tests := []struct {
		path string
		want Loader
	}{
		{"poem.txt", &TextLoader{}},
		{"notes.MD", &TextLoader{}},
		{"book.pdf", &PDFLoader{}},
		{"BOOK.PDF", &PDFLoader{}},
		{"noext", &TextLoader{}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.IsType(t, tc.want, LoaderFor(tc.path, nil))
		})
	}
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffthe river\r\nbends"), 0o644))

	text, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "the river\nbends", text)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("", nil)
	assert.Error(t, err)

	missing := filepath.Join(t.TempDir(), "missing.txt")
	_, err = Load(missing, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.txt")

	// A file that is not a PDF fails to open rather than yielding garbage.
	bogus := filepath.Join(t.TempDir(), "bogus.pdf")
	require.NoError(t, os.WriteFile(bogus, []byte("plain words"), 0o644))
	_, err = Load(bogus, nil)
	assert.Error(t, err)
}

func TestNewPDFLoaderDefaultsLogger(t *testing.T) {
	l := NewPDFLoader(nil)
	require.NotNil(t, l.logger)
}
