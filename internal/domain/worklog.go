package domain

// DateLayout is the calendar date format used on every tool boundary.
const DateLayout = "2006-01-02"

// WorklogCreateRequest describes a single worklog entry to be created.
type WorklogCreateRequest struct {
	IssueKey    string  `json:"issueKey" yaml:"issueKey"`
	Hours       float64 `json:"hours" yaml:"hours"`
	StartDate   string  `json:"startDate" yaml:"date"`
	EndDate     string  `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Billable    *bool   `json:"billable,omitempty" yaml:"billable,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// EffectiveEndDate returns the end date, defaulting to the start date.
func (r WorklogCreateRequest) EffectiveEndDate() string {
	if r.EndDate == "" {
		return r.StartDate
	}
	return r.EndDate
}

// IsBillable reports whether the entry is billable. Entries are billable unless
// explicitly marked otherwise.
func (r WorklogCreateRequest) IsBillable() bool {
	return r.Billable == nil || *r.Billable
}

// WorklogPayload is the body accepted by the Tempo worklog creation endpoint.
type WorklogPayload struct {
	Attributes        map[string]any `json:"attributes"`
	BillableSeconds   int64          `json:"billableSeconds"`
	TimeSpentSeconds  int64          `json:"timeSpentSeconds"`
	Worker            string         `json:"worker"`
	Started           string         `json:"started"`
	OriginTaskID      string         `json:"originTaskId"`
	RemainingEstimate *int64         `json:"remainingEstimate"`
	EndDate           string         `json:"endDate"`
	Comment           string         `json:"comment,omitempty"`
}

// WorklogRecord is a worklog as returned to callers.
type WorklogRecord struct {
	ID               string         `json:"id"`
	IssueKey         string         `json:"issueKey"`
	IssueSummary     string         `json:"issueSummary"`
	TimeSpentSeconds int64          `json:"timeSpentSeconds"`
	BillableSeconds  int64          `json:"billableSeconds"`
	Started          string         `json:"started"`
	Worker           string         `json:"worker"`
	Attributes       map[string]any `json:"attributes"`
	TimeSpent        string         `json:"timeSpent"`
	Comment          string         `json:"comment,omitempty"`
}

// StartDate returns the calendar date part of Started.
func (w WorklogRecord) StartDate() string {
	return DatePart(w.Started)
}

// Hours returns the time spent in hours, rounded to two decimals.
func (w WorklogRecord) Hours() float64 {
	return SecondsToHours(w.TimeSpentSeconds)
}

// BatchOutcome reports the result of one entry of a batch creation.
type BatchOutcome struct {
	Success   bool                 `json:"success"`
	Worklog   *WorklogRecord       `json:"worklog,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"errorKind,omitempty"`
	Request   WorklogCreateRequest `json:"request"`
}

// DatePart extracts the YYYY-MM-DD prefix of an ISO-like timestamp. Tempo
// returns both "2025-07-02T00:00:00.000" and "2025-07-02 00:00:00.000".
func DatePart(started string) string {
	if len(started) < len(DateLayout) {
		return started
	}
	return started[:len(DateLayout)]
}
