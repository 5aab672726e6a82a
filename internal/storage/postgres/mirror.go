package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"news_aggregator/internal/domain"
)

// Connect opens and pings a postgres pool.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Mirror keeps a durable copy of the in-memory catalog.
type Mirror struct {
	tx       *TransactionManager
	articles *ArticleStore
	tags     *TagStore
	logger   *slog.Logger
}

func NewMirror(db *sqlx.DB, logger *slog.Logger) *Mirror {
	return &Mirror{
		tx:       NewTransactionManager(db),
		articles: NewArticleStore(db),
		tags:     NewTagStore(db),
		logger:   logger.With("component", "postgres_mirror"),
	}
}

// SaveBatch stores newly inserted articles. Rows with the same canonical
// URL are replaced.
func (m *Mirror) SaveBatch(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		urls = append(urls, a.CanonicalURL)
	}

	return m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		replaced, err := m.articles.DeleteByURLs(ctx, urls)
		if err != nil {
			return fmt.Errorf("delete replaced articles: %w", err)
		}
		if err := m.insert(ctx, articles); err != nil {
			return err
		}
		m.logger.Debug("saved article batch", "count", len(articles), "replaced", replaced)
		return nil
	})
}

// ReplaceAll swaps the stored catalog for articles.
func (m *Mirror) ReplaceAll(ctx context.Context, articles []domain.Article) error {
	return m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := m.articles.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear articles: %w", err)
		}
		return m.insert(ctx, articles)
	})
}

func (m *Mirror) UpdateViews(ctx context.Context, id string, views int64, trending bool) error {
	if err := m.articles.UpdateViews(ctx, id, views, trending); err != nil {
		return fmt.Errorf("update views of %s: %w", id, err)
	}
	return nil
}

// Load returns up to limit stored articles with their tags.
func (m *Mirror) Load(ctx context.Context, limit int) ([]domain.Article, error) {
	articles, err := m.articles.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	tags, err := m.tags.ForArticles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	for i := range articles {
		articles[i].Tags = tags[articles[i].ID]
	}
	return articles, nil
}

func (m *Mirror) insert(ctx context.Context, articles []domain.Article) error {
	for i := range articles {
		a := &articles[i]
		if err := m.articles.Upsert(ctx, a); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.ID, err)
		}
		if err := m.tags.Replace(ctx, a.ID, a.Tags); err != nil {
			return fmt.Errorf("replace tags of %s: %w", a.ID, err)
		}
	}
	return nil
}
