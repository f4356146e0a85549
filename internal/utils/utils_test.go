package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONAtomicCreatesParentsAndKeepsUnicode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.json")

	err := WriteJSONAtomic(path, map[string]string{"zoom": "画面に合わせる", "html": "<b>"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "画面に合わせる")
	assert.Contains(t, string(data), "<b>")
	assert.Contains(t, string(data), "\n  \"")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestWriteJSONAtomicFailureKeepsPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ok":true}`), 0o644))

	err := WriteJSONAtomic(path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestWriteFileAtomicFailsWhenParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := WriteFileAtomic(filepath.Join(blocker, "out.json"), []byte("{}"), 0o644)
	assert.Error(t, err)
}

func TestReadListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	content := "# inputs\n\n  /a/b.jpg  \n\"/c d/e.png\"\n#skip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := ReadListFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b.jpg", "/c d/e.png"}, lines)
}

func TestFileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.True(t, DirectoryExists(dir))
	assert.False(t, DirectoryExists(file))
	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "nope")))
}
