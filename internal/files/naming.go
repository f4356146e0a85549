package files

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"karukuresize/internal/validators"
)

// OutputSuffix is appended to every batch output stem.
const OutputSuffix = "_resized"

const (
	maxStemRunes  = 72
	keptStemRunes = 60
)

// ErrSameAsSource is returned when an output path would replace its input.
var ErrSameAsSource = errors.New("output path is the source file")

// OutputStem returns the sanitized "<stem>_resized" base name for src.
// Overlong stems are shortened and tagged with a short hash so distinct
// names stay distinct.
func OutputStem(src string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	safe := strings.Trim(validators.SanitizeFilename(stem), " .")
	if strings.TrimSpace(stem) == "" || safe == "" {
		safe = "image"
	}
	if utf8.RuneCountInString(safe) > maxStemRunes {
		sum := sha1.Sum([]byte(safe))
		safe = string([]rune(safe)[:keptStemRunes]) + "_" + hex.EncodeToString(sum[:])[:8]
	}
	return safe + OutputSuffix
}

// OutputNamer hands out destination paths for one batch. Paths mirror the
// source layout under the source root, never repeat within the batch and,
// unless CheckDisk is off, never point at an existing file. Safe for
// concurrent use.
type OutputNamer struct {
	srcRoot   string
	dstRoot   string
	checkDisk bool

	mu    sync.Mutex
	taken map[string]struct{}
}

// NewOutputNamer returns a namer for files under srcRoot written to dstRoot.
// An empty srcRoot puts every output directly in dstRoot.
func NewOutputNamer(srcRoot, dstRoot string, checkDisk bool) *OutputNamer {
	return &OutputNamer{
		srcRoot:   srcRoot,
		dstRoot:   dstRoot,
		checkDisk: checkDisk,
		taken:     make(map[string]struct{}),
	}
}

// Next reserves and returns the output path for src with extension ext
// (".jpg" and so on). Collisions get _1, _2, ... appended to the stem.
func (n *OutputNamer) Next(src, ext string) (string, error) {
	dir := filepath.Join(n.dstRoot, n.relDir(src))
	stem := OutputStem(src)

	n.mu.Lock()
	defer n.mu.Unlock()
	for i := 0; ; i++ {
		name := stem
		if i > 0 {
			name += "_" + strconv.Itoa(i)
		}
		candidate := filepath.Join(dir, name+ext)
		if samePath(candidate, src) {
			return "", fmt.Errorf("%w: %s", ErrSameAsSource, src)
		}
		key := pathKey(candidate)
		if _, ok := n.taken[key]; ok {
			continue
		}
		if n.checkDisk {
			if _, err := os.Lstat(candidate); err == nil {
				continue
			}
		}
		n.taken[key] = struct{}{}
		return candidate, nil
	}
}

// relDir is src's directory relative to the source root, or "" when src is
// outside it.
func (n *OutputNamer) relDir(src string) string {
	if n.srcRoot == "" {
		return ""
	}
	rel, err := filepath.Rel(n.srcRoot, filepath.Dir(src))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return rel
}

// pathKey folds case so names differing only in case count as one; several
// supported platforms have case-insensitive file systems.
func pathKey(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ToLower(filepath.Clean(p))
}

func samePath(a, b string) bool {
	if pathKey(a) == pathKey(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
