package imageproc

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"syscall"
)

// ProcessError is a failed operation on one file, with a message and a hint
// suitable for showing to the user.
type ProcessError struct {
	Path string
	Op   string
	Err  error
	Hint string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Message is a short user-facing description.
func (e *ProcessError) Message() string {
	switch {
	case errors.Is(e.Err, fs.ErrNotExist):
		return "ファイルが見つかりません"
	case errors.Is(e.Err, fs.ErrPermission):
		return "ファイルへのアクセスが拒否されました"
	case errors.Is(e.Err, syscall.ENOSPC):
		return "ディスクの空き容量が不足しています"
	case errors.Is(e.Err, ErrUnsupportedFormat):
		return "この出力形式には対応していません"
	case errors.Is(e.Err, image.ErrFormat):
		return "画像形式を認識できません"
	}
	return "画像の処理に失敗しました"
}

func newProcessError(path, op string, err error) *ProcessError {
	pe := &ProcessError{Path: path, Op: op, Err: err}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		pe.Hint = "ファイルが移動または削除されていないか確認してください"
	case errors.Is(err, fs.ErrPermission):
		pe.Hint = "出力先フォルダーの書き込み権限を確認してください"
	case errors.Is(err, syscall.ENOSPC):
		pe.Hint = "不要なファイルを削除して空き容量を確保してください"
	case errors.Is(err, ErrUnsupportedFormat):
		pe.Hint = "出力形式に JPEG または PNG を選択してください"
	case errors.Is(err, image.ErrFormat):
		pe.Hint = "JPEG・PNG・WebP・BMP・GIF・TIFF のいずれかを指定してください"
	default:
		pe.Hint = "設定を見直して再度お試しください"
	}
	return pe
}
