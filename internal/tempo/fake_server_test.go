package tempo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/tempofiller/internal/domain"
)

const testUser = "JIRAUSER100"

// fakeTempo emulates the subset of Jira and Tempo used by the client.
type fakeTempo struct {
	t *testing.T

	mu       sync.Mutex
	issues   map[string]domain.ResolvedIssue
	worklogs map[string][]map[string]any
	search   []map[string]any
	schedule []map[string]any
	created  []domain.WorklogPayload
	deleted  []string
	nextID   int64

	// failStatus, when set, is returned for every request.
	failStatus int
	// createStatus, keyed by issue id, forces creation failures.
	createStatus map[string]int
	// delay holds every response back.
	delay time.Duration

	myselfCalls atomic.Int64
	issueCalls  atomic.Int64
	lastSearch  worklogSearchRequest
	lastSched   scheduleSearchRequest
}

func newFakeTempo(t *testing.T) (*fakeTempo, *httptest.Server) {
	t.Helper()
	f := &fakeTempo{
		t:            t,
		issues:       map[string]domain.ResolvedIssue{},
		worklogs:     map[string][]map[string]any{},
		createStatus: map[string]int{},
		nextID:       5000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/latest/myself", f.handleMyself)
	mux.HandleFunc("GET /rest/api/latest/issue/{key}", f.handleIssue)
	mux.HandleFunc("GET /rest/api/latest/issue/{key}/worklog", f.handleIssueWorklogs)
	mux.HandleFunc("POST /rest/tempo-timesheets/4/worklogs/search", f.handleSearch)
	mux.HandleFunc("POST /rest/tempo-timesheets/4/worklogs/{$}", f.handleCreate)
	mux.HandleFunc("DELETE /rest/tempo-timesheets/4/worklogs/{id}", f.handleDelete)
	mux.HandleFunc("POST /rest/tempo-core/2/user/schedule/search", f.handleSchedule)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		status := f.failStatus
		delay := f.delay
		f.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeTempo) setDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *fakeTempo) addIssue(key, id, summary string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues[key] = domain.ResolvedIssue{ID: id, Key: key, Summary: summary}
}

func (f *fakeTempo) setFailStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
}

func (f *fakeTempo) handleMyself(w http.ResponseWriter, r *http.Request) {
	f.myselfCalls.Add(1)
	writeJSON(w, http.StatusOK, map[string]any{"key": testUser, "name": "jdoe", "displayName": "Jane Doe"})
}

func (f *fakeTempo) handleIssue(w http.ResponseWriter, r *http.Request) {
	f.issueCalls.Add(1)
	f.mu.Lock()
	issue, ok := f.issues[r.PathValue("key")]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errorMessages": []string{"Issue Does Not Exist"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     issue.ID,
		"key":    issue.Key,
		"fields": map[string]any{"summary": issue.Summary},
	})
}

func (f *fakeTempo) handleIssueWorklogs(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.PathValue("key")
	if _, ok := f.issues[key]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errorMessages": []string{"Issue Does Not Exist"}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"worklogs": f.worklogs[key]})
}

func (f *fakeTempo) handleSearch(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := json.NewDecoder(r.Body).Decode(&f.lastSearch); err != nil {
		f.t.Errorf("decode search body: %v", err)
	}
	writeJSON(w, http.StatusOK, f.search)
}

func (f *fakeTempo) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload domain.WorklogPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		f.t.Errorf("decode create body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if status, ok := f.createStatus[payload.OriginTaskID]; ok {
		writeJSON(w, status, map[string]any{"message": "Worklog could not be created for task " + payload.OriginTaskID})
		return
	}
	f.created = append(f.created, payload)
	f.nextID++

	var issue domain.ResolvedIssue
	for _, candidate := range f.issues {
		if candidate.ID == payload.OriginTaskID {
			issue = candidate
		}
	}
	writeJSON(w, http.StatusOK, []map[string]any{{
		"tempoWorklogId":   f.nextID,
		"timeSpentSeconds": payload.TimeSpentSeconds,
		"billableSeconds":  payload.BillableSeconds,
		"timeSpent":        fmt.Sprintf("%dm", payload.TimeSpentSeconds/60),
		"comment":          payload.Comment,
		"worker":           payload.Worker,
		"started":          payload.Started,
		"attributes":       map[string]any{},
		"issue":            map[string]any{"id": 1, "key": issue.Key, "summary": issue.Summary},
	}})
}

func (f *fakeTempo) handleDelete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	if id == "missing" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	f.deleted = append(f.deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeTempo) handleSchedule(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := json.NewDecoder(r.Body).Decode(&f.lastSched); err != nil {
		f.t.Errorf("decode schedule body: %v", err)
	}
	writeJSON(w, http.StatusOK, f.schedule)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClient(srv *httptest.Server, clock *testClock) *Client {
	opts := Options{
		BaseURL:    srv.URL,
		Token:      "test-token",
		HTTPClient: srv.Client(),
	}
	if clock != nil {
		opts.Clock = clock
	}
	return NewClient(opts)
}
