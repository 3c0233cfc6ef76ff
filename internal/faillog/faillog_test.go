package faillog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_OneLinePerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	l := New(path)

	require.NoError(t, l.Append("a.pdf", "b.pdf", "c.txt"))
	require.NoError(t, l.Append("a.pdf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.txt", "a.pdf"},
		strings.Split(strings.TrimSpace(string(data)), "\n"))
}

func TestAppend_NoKeysNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.txt")
	require.NoError(t, New(path).Append())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
