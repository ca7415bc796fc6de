package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tempofiller/internal/domain"
)

// RecentIssueRepository tracks which issues a worker has logged time against.
type RecentIssueRepository interface {
	Touch(ctx context.Context, worker string, issue domain.RecentIssue) error
	ListRecent(ctx context.Context, worker string, limit int) ([]domain.RecentIssue, error)
}

type recentIssueRepository struct {
	pool *pgxpool.Pool
}

// NewRecentIssueRepository returns a Postgres-backed implementation.
func NewRecentIssueRepository(pool *pgxpool.Pool) RecentIssueRepository {
	return &recentIssueRepository{pool: pool}
}

func (r *recentIssueRepository) Touch(ctx context.Context, worker string, issue domain.RecentIssue) error {
	const query = `
        INSERT INTO recent_issues (worker, issue_key, summary, project, last_used)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (worker, issue_key) DO UPDATE
        SET summary=EXCLUDED.summary, project=EXCLUDED.project,
            last_used=GREATEST(recent_issues.last_used, EXCLUDED.last_used)`
	_, err := r.pool.Exec(ctx, query, worker, issue.Key, issue.Summary, issue.Project, issue.LastUsed)
	return err
}

func (r *recentIssueRepository) ListRecent(ctx context.Context, worker string, limit int) ([]domain.RecentIssue, error) {
	const query = `
        SELECT issue_key, summary, project, last_used
        FROM recent_issues WHERE worker=$1 ORDER BY last_used DESC, issue_key ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, worker, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RecentIssue
	for rows.Next() {
		var issue domain.RecentIssue
		if err := rows.Scan(&issue.Key, &issue.Summary, &issue.Project, &issue.LastUsed); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}
