package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "Month,Type,Amount in USD\n2024-01-01,Revenue,1000000\n2024-01-01,Cost,600000\n")

	f, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Month", "Type", "Amount in USD"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "Revenue", f.Value(0, "Type"))
}

func TestReadCSVRaggedRows(t *testing.T) {
	f, err := readCSV(strings.NewReader("a,b,c\n1,2\n1,2,3,4\n"), "ragged")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "", f.Value(0, "c"), "short rows read as empty cells")
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := readCSV(strings.NewReader(""), "empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(context.Background(), path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadEmptyLocation(t *testing.T) {
	_, err := Load(context.Background(), "", XLSXOptions{})
	assert.Error(t, err)
}

func TestLoadOptional(t *testing.T) {
	opt := LoadOptional(context.Background(), "", XLSXOptions{})
	assert.False(t, opt.Present())
	assert.Equal(t, "not configured", opt.Reason)

	opt = LoadOptional(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), XLSXOptions{})
	assert.False(t, opt.Present())
	assert.NotEmpty(t, opt.Reason)

	path := writeCSV(t, "Month,Amount in USD\n2024-01-01,5\n")
	opt = LoadOptional(context.Background(), path, XLSXOptions{})
	require.True(t, opt.Present())
	assert.Equal(t, 1, opt.Frame.Len())
}
