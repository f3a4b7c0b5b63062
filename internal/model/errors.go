// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrSlugTaken はスラッグの一意制約違反を表すセンチネルエラー。
// リポジトリ層がPostgreSQLのunique_violation(23505)を検出して返し、
// サービス層はこのエラーを契機にサフィックスを付けてリトライする。
var ErrSlugTaken = errors.New("slug already taken")

// ErrPostNotFound は対象の記事が存在しないことを表すセンチネルエラー。
// リポジトリ層が更新・削除の対象行が存在しない場合に返す。
// ハンドラー境界ではAPIError(POST_NOT_FOUND)に変換される。
var ErrPostNotFound = errors.New("post not found")

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, blog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodePostNotFound    = "POST_NOT_FOUND"
	ErrCodeSlugConflict    = "SLUG_CONFLICT"
	ErrCodeEmptySlug       = "EMPTY_SLUG"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
	ErrCodeInvalidURL      = "INVALID_URL"
	ErrCodeSSRFBlocked     = "SSRF_BLOCKED"
	ErrCodeImportFailed    = "IMPORT_FAILED"
)

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", postID),
		Category: "blog",
		Action:   "記事IDを確認してください。",
	}
}

// NewSlugConflictError はスラッグ解決のリトライ上限超過エラーを生成する。
func NewSlugConflictError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeSlugConflict,
		Message:  fmt.Sprintf("スラッグの一意性を確保できませんでした: %s", slug),
		Category: "blog",
		Action:   "タイトルを変更するか、しばらく待ってから再度お試しください。",
	}
}

// NewEmptySlugError はタイトルからスラッグを生成できない場合のエラーを生成する。
func NewEmptySlugError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeEmptySlug,
		Message:  fmt.Sprintf("タイトルからURLスラッグを生成できません: %q", title),
		Category: "validation",
		Action:   "英数字を含むタイトルを指定してください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須フィールドが指定されていません: %s", field),
		Category: "validation",
		Action:   fmt.Sprintf("%s を指定してください。", field),
	}
}

// NewInvalidStatusError は無効な公開状態エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効な公開状態です: %s", status),
		Category: "validation",
		Action:   "statusには draft、published、archived のいずれかを指定してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewImportFailedError はフィード取り込み失敗エラーを生成する。
func NewImportFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeImportFailed,
		Message:  fmt.Sprintf("フィードの取り込みに失敗しました: %s", reason),
		Category: "blog",
		Action:   "フィードURLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}
