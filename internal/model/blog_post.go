// Package model はドメインモデルを定義する。
package model

import "time"

// BlogPost は管理ダッシュボードで執筆されるブログ記事を表す。
// Slug、Excerpt、ReadingTimeMinutes、Keywords、Thumbnail、SEOMeta は
// 原則としてTitle/Contentから導出される（導出ロジックはderiveパッケージ）。
type BlogPost struct {
	ID                 string
	Title              string
	Slug               string // 全記事で一意。Title変更時のみ再生成される
	Content            string // 生のMarkdown
	Excerpt            string
	ReadingTimeMinutes int // 常に1以上
	Thumbnail          *Thumbnail
	Keywords           []string // 出現頻度の降順
	SEOMeta            SEOMeta
	Status             Status
	PublishedAt        *time.Time // 初回公開時に1度だけ設定され、以降変更されない
	AuthorID           string
	CategoryID         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Thumbnail は記事のサムネイル画像参照を表す。
type Thumbnail struct {
	URL string
	Alt string
}

// SEOMeta は検索エンジン・SNSプレビュー向けのメタデータを表す。
type SEOMeta struct {
	Title       string // 最大60文字
	Description string // 最大160文字
	Keywords    []string
}

// Status は記事の公開状態を表す。
type Status string

const (
	// StatusDraft は下書き状態。
	StatusDraft Status = "draft"
	// StatusPublished は公開状態。
	StatusPublished Status = "published"
	// StatusArchived はアーカイブ状態。
	StatusArchived Status = "archived"
)

// IsValid はStatusが定義済みの値かどうかを返す。
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
