package derive

import "strings"

// DefaultWordsPerMinute は読了時間の推定に使う既定の読書速度（語/分）。
const DefaultWordsPerMinute = 200

// ReadingTime はプレーンテキストの読了時間を分単位で推定する。
// 語数は空白区切りの非空トークン数で数え、wpmで割って切り上げる。
// 空文字列や極端に短いテキストでも最小1分を返す。
// wpmが0以下の場合はDefaultWordsPerMinuteを使用する。
func ReadingTime(plain string, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}

	words := len(strings.Fields(plain))
	minutes := (words + wpm - 1) / wpm
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
