package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat は MIME タイプ・拡張子のどちらも画像として認識できない場合のエラーです。
	ErrUnsupportedFormat = errors.New("対応していない画像形式です")
	// ErrFileTooLarge は処理前の時点でサイズ上限を超えている場合のエラーです。
	ErrFileTooLarge = errors.New("ファイルサイズが上限を超えています")
	// ErrNormalizeAborted は利用者が変換失敗後に中止を選んだ場合のエラーです。
	ErrNormalizeAborted = errors.New("画像の正規化が中止されました")
	// ErrDecoderUnavailable はこのビルドに HEIC デコーダーが含まれていない場合のエラーです。
	ErrDecoderUnavailable = errors.New("HEIC デコーダーが利用できません")
	// ErrItemNotFound はギャラリーに該当 ID のアイテムが存在しない場合のエラーです。
	ErrItemNotFound = errors.New("ギャラリーアイテムが見つかりません")
)

// TranscodeError はレガシー形式から JPEG への変換失敗を表します。
// 利用者の確認により元のバイト列で続行できます。
type TranscodeError struct {
	Name string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("画像の変換に失敗しました (%s): %v", e.Name, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// CompressionError は再圧縮の失敗です。呼び出し側では常に元の画像で続行します。
type CompressionError struct {
	Name string
	Err  error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("画像の圧縮に失敗しました (%s): %v", e.Name, e.Err)
}

func (e *CompressionError) Unwrap() error { return e.Err }

// StorageError はギャラリーストアの読み書き失敗です。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ギャラリーストアの操作に失敗しました (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
