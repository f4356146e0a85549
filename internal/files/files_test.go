package files

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{"a.jpg", "b.PNG", "notes.txt", "sub/c.webp", "sub/deep/d.tif", "sub/e.doc"} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.jpg"), 0o755))
	return root
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("x/y.JPEG"))
	assert.True(t, IsImageFile("y.tiff"))
	assert.False(t, IsImageFile("y.txt"))
	assert.False(t, IsImageFile("jpg"))
}

func TestFindImagesFlat(t *testing.T) {
	root := makeTree(t)

	got, err := FindImages(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.jpg"), filepath.Join(root, "b.PNG")}, got)
}

func TestFindImagesRecursive(t *testing.T) {
	root := makeTree(t)

	got, err := FindImages(root, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.PNG"),
		filepath.Join(root, "sub", "c.webp"),
		filepath.Join(root, "sub", "deep", "d.tif"),
	}, got)
}

func TestFindImagesErrors(t *testing.T) {
	_, err := FindImages(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)

	f := filepath.Join(t.TempDir(), "file.jpg")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err = FindImages(f, false)
	assert.Error(t, err)
}

func TestOutputStem(t *testing.T) {
	assert.Equal(t, "photo_resized", OutputStem(filepath.Join("in", "photo.jpg")))
	assert.Equal(t, "a_b_resized", OutputStem("a:b.png"))
	assert.Equal(t, "image_resized", OutputStem(" .png"))

	long := strings.Repeat("写", 80)
	got := OutputStem(long + ".jpg")
	assert.True(t, strings.HasSuffix(got, OutputSuffix))
	assert.Equal(t, 60+1+8+len([]rune(OutputSuffix)), len([]rune(got)))
	assert.NotEqual(t, got, OutputStem(long+"x.jpg"))
}

func TestOutputNamerMirrorsLayout(t *testing.T) {
	n := NewOutputNamer("in", "out", false)
	got, err := n.Next(filepath.Join("in", "trip", "a.png"), ".jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "trip", "a_resized.jpg"), got)

	got, err = n.Next(filepath.Join("elsewhere", "a.png"), ".webp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "a_resized.webp"), got)
}

func TestOutputNamerNeverRepeats(t *testing.T) {
	out := t.TempDir()
	n := NewOutputNamer("", out, true)

	first, err := n.Next(filepath.Join("one", "x.png"), ".png")
	require.NoError(t, err)
	second, err := n.Next(filepath.Join("two", "x.png"), ".png")
	require.NoError(t, err)
	third, err := n.Next(filepath.Join("three", "X.png"), ".png")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "x_resized.png"), first)
	assert.Equal(t, filepath.Join(out, "x_resized_1.png"), second)
	assert.Equal(t, filepath.Join(out, "X_resized_2.png"), third)
}

func TestOutputNamerSkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(src, []byte("original"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo_resized.jpg"), []byte("earlier run"), 0o644))

	got, err := NewOutputNamer(dir, dir, true).Next(src, ".jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo_resized_1.jpg"), got)
	assert.NotEqual(t, src, got)
}

func TestOutputNamerConcurrent(t *testing.T) {
	n := NewOutputNamer("", t.TempDir(), true)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := n.Next("same.png", ".png")
			assert.NoError(t, err)
			mu.Lock()
			seen[p] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 20)
}

func TestDedupePaths(t *testing.T) {
	got := DedupePaths([]string{"/A/b.jpg", "/a/B.jpg", "/c.jpg", "/A/b.jpg"})
	assert.Equal(t, []string{"/A/b.jpg", "/c.jpg"}, got)
}

func TestNormalizeDroppedPath(t *testing.T) {
	assert.Equal(t, "/home/u/写真 1.jpg", normalizeDroppedPath("file:///home/u/%E5%86%99%E7%9C%9F%201.jpg", "linux"))
	assert.Equal(t, "/tmp/a.jpg", normalizeDroppedPath("file://localhost/tmp/a.jpg", "linux"))
	assert.Equal(t, "//server/share/a.jpg", normalizeDroppedPath("file://server/share/a.jpg", "linux"))
	assert.Equal(t, "C:/Users/a.jpg", normalizeDroppedPath("file:///C:/Users/a.jpg", "windows"))
	assert.Equal(t, "/C:/Users/a.jpg", normalizeDroppedPath("file:///C:/Users/a.jpg", "linux"))
	assert.Equal(t, "/plain/path.png", normalizeDroppedPath("  /plain/path.png ", "linux"))
	assert.Equal(t, "", normalizeDroppedPath("   ", "linux"))
}

func TestParseDropPaths(t *testing.T) {
	assert.Nil(t, ParseDropPaths("  "))

	got := ParseDropPaths("{/a/with space.jpg} /b.png {/c.jpg}")
	assert.Equal(t, []string{"/a/with space.jpg", "/b.png", "/c.jpg"}, got)

	got = ParseDropPaths("\"/x/one.jpg\"\r\n/x/two two.jpg\n\n/X/ONE.jpg\nfile:///x/three.png")
	assert.Equal(t, []string{"/x/one.jpg", "/x/two two.jpg", "/x/three.png"}, got)
}
