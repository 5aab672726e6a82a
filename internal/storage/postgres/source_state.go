package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"news_aggregator/internal/domain"
)

type SourceStateStore struct {
	db *sqlx.DB
}

func NewSourceStateStore(db *sqlx.DB) *SourceStateStore {
	return &SourceStateStore{db: db}
}

type sourceStateRow struct {
	domain.SourceState
	ErrorsJSON []byte `db:"errors"`
}

func (r sourceStateRow) state() (*domain.SourceState, error) {
	st := r.SourceState
	if len(r.ErrorsJSON) > 0 {
		if err := json.Unmarshal(r.ErrorsJSON, &st.Errors); err != nil {
			return nil, fmt.Errorf("decode errors of %s: %w", st.SourceID, err)
		}
	}
	return &st, nil
}

const sourceStateColumns = `source_id, last_run, next_run, articles_fetched, last_error, errors`

func (s *SourceStateStore) List(ctx context.Context) ([]domain.SourceState, error) {
	var rows []sourceStateRow
	query := `SELECT ` + sourceStateColumns + ` FROM source_state ORDER BY source_id`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query); err != nil {
		return nil, err
	}

	out := make([]domain.SourceState, 0, len(rows))
	for _, r := range rows {
		st, err := r.state()
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, nil
}

func (s *SourceStateStore) Update(ctx context.Context, state *domain.SourceState) error {
	errs := state.Errors
	if errs == nil {
		errs = []domain.SourceError{}
	}
	payload, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode errors of %s: %w", state.SourceID, err)
	}

	query := `
		INSERT INTO source_state (` + sourceStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_id) DO UPDATE SET
			last_run = EXCLUDED.last_run,
			next_run = EXCLUDED.next_run,
			articles_fetched = EXCLUDED.articles_fetched,
			last_error = EXCLUDED.last_error,
			errors = EXCLUDED.errors`

	exec := GetExecutor(ctx, s.db)
	_, err = exec.ExecContext(ctx, query,
		state.SourceID,
		state.LastRun,
		state.NextRun,
		state.ArticlesFetched,
		state.LastError,
		string(payload),
	)
	return err
}
