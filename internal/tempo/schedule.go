package tempo

import (
	"context"
	"net/http"

	"github.com/spec-kit/tempofiller/internal/domain"
)

// SearchSchedule returns the caller's schedule for [from, to]. An empty to
// means the single day from.
func (c *Client) SearchSchedule(ctx context.Context, from, to string) ([]domain.ScheduleDay, error) {
	if to == "" {
		to = from
	}
	identity, err := c.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	body := scheduleSearchRequest{From: from, To: to, UserKeys: []string{identity.String()}}
	var resp []scheduleResponse
	if _, err := c.do(ctx, "search_schedule", http.MethodPost, pathScheduleSearch, body, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return []domain.ScheduleDay{}, nil
	}

	// The search is scoped to one user key, so the first schedule is ours.
	days := make([]domain.ScheduleDay, 0, len(resp[0].Schedule.Days))
	for _, d := range resp[0].Schedule.Days {
		days = append(days, domain.ScheduleDay{
			Date:            domain.DatePart(d.Date),
			RequiredSeconds: d.RequiredSeconds,
			IsWorkingDay:    d.Type == domain.WorkingDayType,
		})
	}
	return days, nil
}
