package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"news_aggregator/internal/domain"
)

const articleColumns = `id, source_id, source_name, category, title, excerpt, canonical_url,
	image_url, author, published_at, imported_at, status, view_count, featured, breaking, trending`

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func (s *ArticleStore) Upsert(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (id) DO UPDATE SET
			source_name = EXCLUDED.source_name,
			category = EXCLUDED.category,
			title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt,
			canonical_url = EXCLUDED.canonical_url,
			image_url = EXCLUDED.image_url,
			author = EXCLUDED.author,
			published_at = EXCLUDED.published_at,
			imported_at = EXCLUDED.imported_at,
			status = EXCLUDED.status,
			view_count = EXCLUDED.view_count,
			featured = EXCLUDED.featured,
			breaking = EXCLUDED.breaking,
			trending = EXCLUDED.trending`

	exec := GetExecutor(ctx, s.db)
	_, err := exec.ExecContext(ctx, query,
		article.ID,
		article.SourceID,
		article.SourceName,
		article.Category,
		article.Title,
		article.Excerpt,
		article.CanonicalURL,
		article.ImageURL,
		article.Author,
		article.PublishedAt,
		article.ImportedAt,
		article.Status,
		article.ViewCount,
		article.Featured,
		article.Breaking,
		article.Trending,
	)
	return err
}

// DeleteByURLs removes rows holding any of urls so a re-imported article
// replaces its older copy.
func (s *ArticleStore) DeleteByURLs(ctx context.Context, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}

	exec := GetExecutor(ctx, s.db)
	res, err := exec.ExecContext(ctx, "DELETE FROM articles WHERE canonical_url = ANY($1)", pq.Array(urls))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *ArticleStore) DeleteAll(ctx context.Context) error {
	exec := GetExecutor(ctx, s.db)
	_, err := exec.ExecContext(ctx, "DELETE FROM articles")
	return err
}

func (s *ArticleStore) UpdateViews(ctx context.Context, id string, views int64, trending bool) error {
	exec := GetExecutor(ctx, s.db)
	_, err := exec.ExecContext(ctx,
		"UPDATE articles SET view_count = $2, trending = $3 WHERE id = $1",
		id, views, trending,
	)
	return err
}

// List returns up to limit articles in listing order, without tags.
func (s *ArticleStore) List(ctx context.Context, limit int) ([]domain.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		ORDER BY imported_at DESC, published_at DESC
		LIMIT $1`

	var articles []domain.Article
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &articles, query, limit)
	return articles, err
}
