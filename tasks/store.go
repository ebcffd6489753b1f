package tasks

import (
	"context"
	"database/sql"
	"time"
)

// DefaultStuckTimeout is how long an in_progress task may go without an
// update before another worker is allowed to reclaim it.
const DefaultStuckTimeout = time.Hour

// Store is the task queue over a live database handle. It embeds Queries
// for plain row operations and adds the transactional claim protocol.
type Store struct {
	DB *sql.DB
	*Queries
}

// NewStore returns a sqlite-backed task store.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: New(db)}
}

// NewPostgresStore returns a postgres-backed task store.
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: NewPostgres(db)}
}

type ClaimParams struct {
	InstanceID   string
	StuckTimeout time.Duration
}

// Claim selects the highest-priority eligible task and atomically marks it
// in_progress for the calling worker instance. Eligible means pending, or
// in_progress but untouched for longer than the stuck timeout. Returns
// (nil, nil) when no task is available.
//
// On postgres the row is taken with FOR UPDATE SKIP LOCKED, so concurrent
// claimants never block each other. On sqlite each candidate is taken with
// a conditional update; zero rows affected means another claimant won the
// race and the next candidate is tried.
func (s *Store) Claim(ctx context.Context, arg ClaimParams) (*Task, error) {
	if arg.StuckTimeout == 0 {
		arg.StuckTimeout = DefaultStuckTimeout
	}
	stuckBefore := time.Now().UTC().Add(-arg.StuckTimeout)

	if s.dialect == dialectPostgres {
		row := s.DB.QueryRowContext(ctx, queryClaimSkipLocked, stuckBefore, arg.InstanceID, time.Now().UTC())
		t, err := scan(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil
			}
			return nil, err
		}
		return &t, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, queryEligible, stuckBefore)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			tx.Rollback()
			return nil, err
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, id := range candidates {
		res, err := tx.ExecContext(ctx, queryClaimCAS, arg.InstanceID, time.Now().UTC(), id, stuckBefore)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if n == 0 {
			// lost the race on this row, try the next candidate
			continue
		}
		row := tx.QueryRowContext(ctx, queryTaskGet, id)
		t, err := scan(row)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &t, nil
	}

	tx.Rollback()
	return nil, nil
}
