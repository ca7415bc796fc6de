package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/tempofiller/internal/domain"
)

// MemoryJournal is a process-local JournalRepository used when no database is
// configured.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []domain.JournalEntry
}

// NewMemoryJournal builds an empty journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (m *MemoryJournal) Append(_ context.Context, entry *domain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

// ListByWorker returns the newest entries first.
func (m *MemoryJournal) ListByWorker(_ context.Context, worker string, limit int) ([]domain.JournalEntry, error) {
	limit = normalizeLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.JournalEntry
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if m.entries[i].Worker == worker {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

// MemoryRecentIssues is a process-local RecentIssueRepository.
type MemoryRecentIssues struct {
	mu     sync.RWMutex
	byUser map[string]map[string]domain.RecentIssue
}

// NewMemoryRecentIssues builds an empty store.
func NewMemoryRecentIssues() *MemoryRecentIssues {
	return &MemoryRecentIssues{byUser: make(map[string]map[string]domain.RecentIssue)}
}

func (m *MemoryRecentIssues) Touch(_ context.Context, worker string, issue domain.RecentIssue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	issues, ok := m.byUser[worker]
	if !ok {
		issues = make(map[string]domain.RecentIssue)
		m.byUser[worker] = issues
	}
	if prev, ok := issues[issue.Key]; ok && prev.LastUsed.After(issue.LastUsed) {
		issue.LastUsed = prev.LastUsed
	}
	issues[issue.Key] = issue
	return nil
}

func (m *MemoryRecentIssues) ListRecent(_ context.Context, worker string, limit int) ([]domain.RecentIssue, error) {
	m.mu.RLock()
	result := make([]domain.RecentIssue, 0, len(m.byUser[worker]))
	for _, issue := range m.byUser[worker] {
		result = append(result, issue)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastUsed.Equal(result[j].LastUsed) {
			return result[i].Key < result[j].Key
		}
		return result[i].LastUsed.After(result[j].LastUsed)
	})
	if limit = normalizeLimit(limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
