package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tempofiller/internal/domain"
)

// JournalRepository stores audit entries for worklog operations.
type JournalRepository interface {
	Append(ctx context.Context, entry *domain.JournalEntry) error
	ListByWorker(ctx context.Context, worker string, limit int) ([]domain.JournalEntry, error)
}

type journalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository returns a Postgres-backed implementation.
func NewJournalRepository(pool *pgxpool.Pool) JournalRepository {
	return &journalRepository{pool: pool}
}

func (r *journalRepository) Append(ctx context.Context, entry *domain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO worklog_journal (id, event_id, action, worklog_id, issue_key, worker, work_date, seconds, error)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.EventID,
		entry.Action,
		entry.WorklogID,
		entry.IssueKey,
		entry.Worker,
		entry.Date,
		entry.Seconds,
		entry.Error,
	).Scan(&entry.CreatedAt)
}

func (r *journalRepository) ListByWorker(ctx context.Context, worker string, limit int) ([]domain.JournalEntry, error) {
	const query = `
        SELECT id, event_id, action, worklog_id, issue_key, worker, work_date, seconds, error, created_at
        FROM worklog_journal WHERE worker=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, worker, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JournalEntry
	for rows.Next() {
		var entry domain.JournalEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.Action,
			&entry.WorklogID,
			&entry.IssueKey,
			&entry.Worker,
			&entry.Date,
			&entry.Seconds,
			&entry.Error,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

const defaultListLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
