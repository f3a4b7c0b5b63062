// Package logger はJSON構造化ログのセットアップを提供する。
// 記事作成やフィード取り込みのログ行はすべてslogのJSON出力に統一し、
// キーはsnake_case（post_id、feed_url等）で記録する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup はwriterに出力するJSON構造化ログのslog.Loggerを生成して返す。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログをグローバルロガーとして設定する。
// サーバー起動時に一度だけ呼び出す。本番ではos.Stdoutを渡す。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}
