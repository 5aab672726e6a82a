package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// Replace swaps the tag list of one article, keeping the given order.
func (s *TagStore) Replace(ctx context.Context, articleID string, tags []string) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx,
		"DELETE FROM article_tags WHERE article_id = $1",
		articleID,
	)
	if err != nil {
		return err
	}

	if len(tags) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO article_tags (article_id, position, tag) VALUES ")
	valueArgs := make([]any, 0, len(tags)*2+1)
	valueArgs = append(valueArgs, articleID)

	for i, tag := range tags {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($1, $")
		sb.WriteString(strconv.Itoa(i*2 + 2))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*2 + 3))
		sb.WriteString(")")
		valueArgs = append(valueArgs, i, tag)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")

	_, err = exec.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}

type tagRow struct {
	ArticleID string `db:"article_id"`
	Tag       string `db:"tag"`
}

// ForArticles returns the ordered tags of each article in ids.
func (s *TagStore) ForArticles(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT article_id, tag
		FROM article_tags
		WHERE article_id = ANY($1)
		ORDER BY article_id, position`

	var rows []tagRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	for _, r := range rows {
		result[r.ArticleID] = append(result[r.ArticleID], r.Tag)
	}
	return result, nil
}
