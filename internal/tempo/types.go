package tempo

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/spec-kit/tempofiller/internal/domain"
)

// flexString accepts both JSON strings and numbers. Tempo and Jira are not
// consistent about identifier types.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type myselfResponse struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

type issueResponse struct {
	ID     flexString `json:"id"`
	Key    string     `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
	} `json:"fields"`
}

type jiraUser struct {
	Name         string `json:"name"`
	Key          string `json:"key"`
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
}

func (u jiraUser) is(identity domain.Identity) bool {
	id := identity.String()
	if id == "" {
		return false
	}
	return u.Name == id || u.Key == id || u.AccountID == id || u.EmailAddress == id
}

type jiraWorklogList struct {
	Worklogs []jiraWorklog `json:"worklogs"`
}

type jiraWorklog struct {
	ID               flexString `json:"id"`
	Author           jiraUser   `json:"author"`
	Started          string     `json:"started"`
	TimeSpentSeconds int64      `json:"timeSpentSeconds"`
	TimeSpent        string     `json:"timeSpent"`
	Comment          string     `json:"comment"`
}

type tempoIssue struct {
	ID      flexString `json:"id"`
	Key     string     `json:"key"`
	Summary string     `json:"summary"`
}

type tempoWorklog struct {
	ID               flexString     `json:"id"`
	TempoWorklogID   int64          `json:"tempoWorklogId"`
	BillableSeconds  int64          `json:"billableSeconds"`
	TimeSpentSeconds int64          `json:"timeSpentSeconds"`
	TimeSpent        string         `json:"timeSpent"`
	Comment          string         `json:"comment"`
	Attributes       map[string]any `json:"attributes"`
	Issue            tempoIssue     `json:"issue"`
	Worker           string         `json:"worker"`
	Started          string         `json:"started"`
}

func (w tempoWorklog) record() domain.WorklogRecord {
	id := string(w.ID)
	if w.TempoWorklogID != 0 {
		id = strconv.FormatInt(w.TempoWorklogID, 10)
	}
	if id == "" {
		id = "unknown"
	}
	attrs := w.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return domain.WorklogRecord{
		ID:               id,
		IssueKey:         w.Issue.Key,
		IssueSummary:     w.Issue.Summary,
		TimeSpentSeconds: w.TimeSpentSeconds,
		BillableSeconds:  w.BillableSeconds,
		Started:          w.Started,
		Worker:           w.Worker,
		Attributes:       attrs,
		TimeSpent:        w.TimeSpent,
		Comment:          w.Comment,
	}
}

type worklogSearchRequest struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Worker []string `json:"worker"`
}

type scheduleSearchRequest struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	UserKeys []string `json:"userKeys"`
}

type scheduleResponse struct {
	Schedule struct {
		Days []struct {
			Date            string `json:"date"`
			RequiredSeconds int64  `json:"requiredSeconds"`
			Type            string `json:"type"`
		} `json:"days"`
		RequiredSeconds int64 `json:"requiredSeconds"`
	} `json:"schedule"`
}
