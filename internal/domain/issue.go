package domain

import (
	"strings"
	"time"
)

// ResolvedIssue is an issue reference resolved to its numeric identifier.
type ResolvedIssue struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

// Identity is the authenticated principal's canonical user key.
type Identity string

// String returns the raw key.
func (i Identity) String() string {
	return string(i)
}

// RecentIssue describes an issue the caller has recently logged time against.
type RecentIssue struct {
	Key      string    `json:"key"`
	Summary  string    `json:"summary"`
	Project  string    `json:"project,omitempty"`
	LastUsed time.Time `json:"lastUsed"`
}

// ProjectKey returns the project part of an issue key, "PROJ" for "PROJ-12".
func ProjectKey(issueKey string) string {
	if i := strings.LastIndex(issueKey, "-"); i > 0 {
		return issueKey[:i]
	}
	return issueKey
}
