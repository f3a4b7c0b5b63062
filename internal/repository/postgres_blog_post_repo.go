package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/storeblog/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// blogPostColumns はblog_postsテーブルのSELECT対象カラム。
const blogPostColumns = `id, title, slug, content, excerpt, reading_time_minutes,
       thumbnail_url, thumbnail_alt, keywords,
       seo_title, seo_description, seo_keywords,
       status, published_at, author_id, category_id, created_at, updated_at`

// PostgresBlogPostRepo はPostgreSQLを使用したブログ記事リポジトリ。
// slugカラムのユニーク制約が並行書き込み時の一意性の最終的な保証となる。
type PostgresBlogPostRepo struct {
	db *sql.DB
}

// NewPostgresBlogPostRepo はPostgresBlogPostRepoを生成する。
func NewPostgresBlogPostRepo(db *sql.DB) *PostgresBlogPostRepo {
	return &PostgresBlogPostRepo{db: db}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresBlogPostRepo) FindByID(ctx context.Context, id string) (*model.BlogPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts WHERE id = $1`,
		id,
	)
	post, err := scanBlogPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return post, nil
}

// FindBySlug はスラッグで記事を検索する。見つからない場合はnilを返す。
func (r *PostgresBlogPostRepo) FindBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+blogPostColumns+` FROM blog_posts WHERE slug = $1`,
		slug,
	)
	post, err := scanBlogPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スラッグによる記事の検索に失敗しました: %w", err)
	}
	return post, nil
}

// ExistsBySlug は指定スラッグの記事が存在するかを返す。
func (r *PostgresBlogPostRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = $1)`,
		slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("スラッグの存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Create は記事を作成する。slugのユニーク制約違反の場合はmodel.ErrSlugTakenを返す。
func (r *PostgresBlogPostRepo) Create(ctx context.Context, post *model.BlogPost) error {
	var thumbURL, thumbAlt sql.NullString
	if post.Thumbnail != nil {
		thumbURL = sql.NullString{String: post.Thumbnail.URL, Valid: true}
		thumbAlt = sql.NullString{String: post.Thumbnail.Alt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blog_posts (id, title, slug, content, excerpt, reading_time_minutes,
		                         thumbnail_url, thumbnail_alt, keywords,
		                         seo_title, seo_description, seo_keywords,
		                         status, published_at, author_id, category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.ReadingTimeMinutes,
		thumbURL, thumbAlt, pq.Array(post.Keywords),
		post.SEOMeta.Title, post.SEOMeta.Description, pq.Array(post.SEOMeta.Keywords),
		post.Status, nullTime(post.PublishedAt), post.AuthorID, nullString(post.CategoryID),
		post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は記事を全フィールド上書き更新する。
// 対象行が存在しない場合はmodel.ErrPostNotFoundを、
// slugのユニーク制約違反の場合はmodel.ErrSlugTakenを返す。
func (r *PostgresBlogPostRepo) Update(ctx context.Context, post *model.BlogPost) error {
	var thumbURL, thumbAlt sql.NullString
	if post.Thumbnail != nil {
		thumbURL = sql.NullString{String: post.Thumbnail.URL, Valid: true}
		thumbAlt = sql.NullString{String: post.Thumbnail.Alt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE blog_posts SET
		    title = $2, slug = $3, content = $4, excerpt = $5, reading_time_minutes = $6,
		    thumbnail_url = $7, thumbnail_alt = $8, keywords = $9,
		    seo_title = $10, seo_description = $11, seo_keywords = $12,
		    status = $13, published_at = $14, category_id = $15, updated_at = $16
		 WHERE id = $1`,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.ReadingTimeMinutes,
		thumbURL, thumbAlt, pq.Array(post.Keywords),
		post.SEOMeta.Title, post.SEOMeta.Description, pq.Array(post.SEOMeta.Keywords),
		post.Status, nullTime(post.PublishedAt), nullString(post.CategoryID), post.UpdatedAt,
	)
	if err != nil {
		if isSlugViolation(err) {
			return model.ErrSlugTaken
		}
		return fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("記事の更新結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// DeleteByID は指定IDの記事を削除する。
// 対象行が存在しない場合はmodel.ErrPostNotFoundを返す。
func (r *PostgresBlogPostRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blog_posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("記事の削除結果の確認に失敗しました: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// List は記事一覧をcreated_at降順でカーソルベースページネーション付きで返す。
func (r *PostgresBlogPostRepo) List(ctx context.Context, status model.Status, cursor time.Time, limit int) ([]*model.BlogPost, error) {
	var cursorArg interface{}
	if !cursor.IsZero() {
		cursorArg = cursor
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+blogPostColumns+`
		 FROM blog_posts
		 WHERE ($1 = '' OR status = $1)
		   AND ($2::timestamptz IS NULL OR created_at < $2)
		 ORDER BY created_at DESC
		 LIMIT $3`,
		string(status), cursorArg, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var posts []*model.BlogPost
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("記事一覧の読み取りに失敗しました: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}

	return posts, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBlogPost は1行分のblog_postsレコードをBlogPostへ読み取る。
func scanBlogPost(row rowScanner) (*model.BlogPost, error) {
	post := &model.BlogPost{}
	var thumbURL, thumbAlt, categoryID sql.NullString
	var publishedAt sql.NullTime
	var keywords, seoKeywords pq.StringArray

	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt, &post.ReadingTimeMinutes,
		&thumbURL, &thumbAlt, &keywords,
		&post.SEOMeta.Title, &post.SEOMeta.Description, &seoKeywords,
		&post.Status, &publishedAt, &post.AuthorID, &categoryID, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if thumbURL.Valid {
		post.Thumbnail = &model.Thumbnail{
			URL: thumbURL.String,
			Alt: thumbAlt.String,
		}
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		post.PublishedAt = &t
	}
	post.Keywords = []string(keywords)
	post.SEOMeta.Keywords = []string(seoKeywords)
	post.CategoryID = categoryID.String

	return post, nil
}

// isSlugViolation はslugカラムのユニーク制約違反かどうかを判定する。
func isSlugViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && strings.Contains(pqErr.Constraint, "slug")
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTime はnilの*time.Timeをsql.NullTimeに変換する。
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ BlogPostRepository = (*PostgresBlogPostRepo)(nil)
