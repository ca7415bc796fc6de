package repository

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/tempofiller/internal/domain"
)

func TestMemoryJournalListsNewestFirstPerWorker(t *testing.T) {
	ctx := context.Background()
	journal := NewMemoryJournal()

	for _, e := range []domain.JournalEntry{
		{Action: domain.JournalActionCreated, WorklogID: "1", Worker: "alice"},
		{Action: domain.JournalActionCreated, WorklogID: "2", Worker: "bob"},
		{Action: domain.JournalActionDeleted, WorklogID: "1", Worker: "alice"},
	} {
		entry := e
		if err := journal.Append(ctx, &entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if entry.ID == "" || entry.CreatedAt.IsZero() {
			t.Fatalf("expected id and timestamp to be assigned: %+v", entry)
		}
	}

	entries, err := journal.ListByWorker(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListByWorker: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != domain.JournalActionDeleted {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}

	limited, _ := journal.ListByWorker(ctx, "alice", 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestMemoryRecentIssuesOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecentIssues()
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	touches := []domain.RecentIssue{
		{Key: "PROJ-1", Summary: "One", LastUsed: base},
		{Key: "PROJ-2", Summary: "Two", LastUsed: base.Add(time.Hour)},
		{Key: "PROJ-1", Summary: "One (renamed)", LastUsed: base.Add(2 * time.Hour)},
		{Key: "PROJ-2", Summary: "Two", LastUsed: base},
	}
	for _, issue := range touches {
		if err := store.Touch(ctx, "alice", issue); err != nil {
			t.Fatalf("Touch: %v", err)
		}
	}

	recent, err := store.ListRecent(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(recent))
	}
	if recent[0].Key != "PROJ-1" || recent[0].Summary != "One (renamed)" {
		t.Fatalf("expected PROJ-1 first, got %+v", recent[0])
	}
	if !recent[1].LastUsed.Equal(base.Add(time.Hour)) {
		t.Fatalf("an older touch must not move last-used backwards: %+v", recent[1])
	}

	if others, _ := store.ListRecent(ctx, "bob", 5); len(others) != 0 {
		t.Fatalf("expected no issues for another worker, got %d", len(others))
	}
}
