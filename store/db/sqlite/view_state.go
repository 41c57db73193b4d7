package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/Edelbertschen/taskfuchs-sub005/store"
)

func (d *DB) UpsertViewState(ctx context.Context, upsert *store.UpsertViewState) (*store.ViewState, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO view_state (user_id, state, created_ts, updated_ts)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `)
		ON CONFLICT(user_id) DO UPDATE SET
			state = excluded.state,
			updated_ts = excluded.updated_ts
		RETURNING user_id, state, created_ts, updated_ts`

	result := &store.ViewState{}
	err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.State, now, now).Scan(
		&result.UserID,
		&result.State,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert view_state")
	}

	return result, nil
}

func (d *DB) GetViewState(ctx context.Context, find *store.FindViewState) (*store.ViewState, error) {
	if find.UserID == nil {
		return nil, errors.New("user_id is required")
	}

	query := `SELECT user_id, state, created_ts, updated_ts FROM view_state WHERE user_id = ` + placeholder(1)

	result := &store.ViewState{}
	err := d.db.QueryRowContext(ctx, query, *find.UserID).Scan(
		&result.UserID,
		&result.State,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get view_state")
	}

	return result, nil
}
