// Package validators checks user-supplied names, paths and numbers.
package validators

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFilenameBytes = 255

const invalidChars = `<>:"|?*`

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Validation errors.
var (
	ErrEmptyName     = errors.New("ファイル名が空です")
	ErrEmptyPath     = errors.New("パスが空です")
	ErrNameTooLong   = errors.New("ファイル名が長すぎます（最大255文字）")
	ErrParentRef     = errors.New("不正なパスです（親ディレクトリへの参照を含んでいます）")
	ErrReservedName  = errors.New("Windowsの予約語は使用できません")
	ErrInvalidChar   = errors.New("無効な文字が含まれています")
	ErrNotANumber    = errors.New("数値を入力してください")
	ErrValueRequired = errors.New("値が入力されていません")
)

// IsReservedName reports whether the stem of name is a reserved Windows
// device name.
func IsReservedName(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	_, ok := reservedNames[strings.ToUpper(stem)]
	return ok
}

// SanitizeFilename turns name into something every supported OS accepts as a
// single path element.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || strings.ContainsRune(invalidChars, r):
			b.WriteRune('_')
		case unicode.IsControl(r) || r == utf8.RuneError:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimRight(strings.TrimSpace(b.String()), ". ")
	if out == "" {
		return "untitled"
	}
	if IsReservedName(out) {
		out = "_" + out
	}
	return truncateBytes(out, maxFilenameBytes)
}

// truncateBytes shortens s to at most n bytes, keeping the extension when
// it fits and never splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	ext := filepath.Ext(s)
	if len(ext) >= n/2 {
		ext = ""
	}
	stem := strings.TrimSuffix(s, ext)
	limit := n - len(ext)
	for limit > 0 && !utf8.RuneStart(stem[limit]) {
		limit--
	}
	return stem[:limit] + ext
}

// ValidateFilename returns name unchanged if it is usable as a file name.
func ValidateFilename(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if IsReservedName(name) {
		return "", fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	if i := strings.IndexAny(name, invalidChars+`/\`); i >= 0 {
		return "", fmt.Errorf("ファイル名に%w: %c", ErrInvalidChar, name[i])
	}
	if len(name) > maxFilenameBytes {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ValidatePath cleans p, makes it absolute and rejects parent references,
// reserved device names and invalid characters. A drive letter colon is
// allowed.
func ValidatePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrEmptyPath
	}
	for _, part := range strings.FieldsFunc(p, isSeparator) {
		if part == ".." {
			return "", ErrParentRef
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}

	rest := strings.TrimPrefix(abs, filepath.VolumeName(abs))
	for _, part := range strings.FieldsFunc(rest, isSeparator) {
		if IsReservedName(part) {
			return "", fmt.Errorf("%w: %s", ErrReservedName, part)
		}
	}
	if i := strings.IndexAny(rest, invalidChars); i >= 0 {
		return "", fmt.Errorf("パスに%w: %c", ErrInvalidChar, rest[i])
	}
	return abs, nil
}

func isSeparator(r rune) bool { return r == '/' || r == '\\' }
