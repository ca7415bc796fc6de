package tempo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// TransportError is a failure that does not map onto the error taxonomy:
// network errors and non-success responses without a structured body.
type TransportError struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.URL)
	if e.Status != 0 {
		fmt.Fprintf(&b, " returned %d", e.Status)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// apiError covers the error bodies returned by Tempo and Jira.
type apiError struct {
	Message       string          `json:"message"`
	Error         string          `json:"error"`
	ErrorMessages []string        `json:"errorMessages"`
	Errors        json.RawMessage `json:"errors"`
}

func (a apiError) text() string {
	if a.Message != "" {
		return a.Message
	}
	if len(a.ErrorMessages) > 0 {
		return strings.Join(a.ErrorMessages, "; ")
	}
	if len(a.Errors) > 0 {
		var list []struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(a.Errors, &list) == nil {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Message != "" {
					msgs = append(msgs, item.Message)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		var fields map[string]string
		if json.Unmarshal(a.Errors, &fields) == nil && len(fields) > 0 {
			msgs := make([]string, 0, len(fields))
			for field, msg := range fields {
				msgs = append(msgs, field+": "+msg)
			}
			sort.Strings(msgs)
			return strings.Join(msgs, "; ")
		}
	}
	return ""
}

const maxErrorBody = 512

// normalizeError maps a non-success response onto the error taxonomy. It is
// the only place response statuses are interpreted.
func normalizeError(method, url string, status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return errorutil.NewAuthentication("")
	case http.StatusForbidden:
		return errorutil.NewAuthorization("")
	case http.StatusTooManyRequests:
		return errorutil.NewRateLimit()
	}

	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := parsed.text(); msg != "" {
			return errorutil.NewAPIError(status, msg)
		}
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBody {
		snippet = snippet[:maxErrorBody] + "..."
	}
	return &TransportError{Method: method, URL: url, Status: status, Body: snippet}
}
