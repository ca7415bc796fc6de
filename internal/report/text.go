// Package report renders tool results as the markdown text returned to agents.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/service"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// Display limits.
const (
	RecentEntryLimit = 10
	ScheduleDayLimit = 100
)

// WriteWorklogs prints a worklog list grouped by issue followed by the most
// recent entries.
func WriteWorklogs(out io.Writer, list *service.WorklogList) {
	fmt.Fprintf(out, "## Your Worklogs (%s)\n\n", dateRange(list.StartDate, list.EndDate))
	if list.IssueKey != "" {
		fmt.Fprintf(out, "**Issue:** %s\n\n", list.IssueKey)
	}
	if len(list.Worklogs) == 0 {
		fmt.Fprintln(out, "No worklogs found.")
		return
	}

	fmt.Fprintf(out, "**Total:** %sh (%d entries)\n\n", formatHours(list.TotalHours), len(list.Worklogs))

	type group struct {
		summary string
		seconds int64
		entries int
	}
	var keys []string
	groups := map[string]*group{}
	for _, w := range list.Worklogs {
		g, ok := groups[w.IssueKey]
		if !ok {
			g = &group{summary: w.IssueSummary}
			groups[w.IssueKey] = g
			keys = append(keys, w.IssueKey)
		}
		g.seconds += w.TimeSpentSeconds
		g.entries++
	}
	for _, key := range keys {
		g := groups[key]
		fmt.Fprintf(out, "• **%s** (%s): %.1fh (%d entries)\n", key, g.summary, float64(g.seconds)/3600, g.entries)
	}

	recent := append([]domain.WorklogRecord(nil), list.Worklogs...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Started > recent[j].Started
	})
	if len(recent) > RecentEntryLimit {
		recent = recent[:RecentEntryLimit]
	}

	fmt.Fprint(out, "\n**Recent Entries:**\n")
	for _, w := range recent {
		fmt.Fprintf(out, "• %s: **%s** (%s) - %.1fh - [ID: %s]", w.StartDate(), w.IssueKey, w.IssueSummary, float64(w.TimeSpentSeconds)/3600, w.ID)
		if c := strings.TrimSpace(w.Comment); c != "" {
			fmt.Fprintf(out, " - %q", c)
		}
		fmt.Fprintln(out)
	}
	if len(list.Worklogs) > RecentEntryLimit {
		fmt.Fprintf(out, "\n*Showing %d most recent of %d total entries*\n", RecentEntryLimit, len(list.Worklogs))
	}
}

// WritePostedWorklog prints the confirmation for a created worklog.
func WritePostedWorklog(out io.Writer, req domain.WorklogCreateRequest, w *domain.WorklogRecord) {
	fmt.Fprint(out, "## Worklog Created Successfully\n\n")
	fmt.Fprintf(out, "**Issue:** %s - %s\n", w.IssueKey, w.IssueSummary)
	fmt.Fprintf(out, "**Hours:** %sh", formatHours(req.Hours))
	if !req.IsBillable() {
		fmt.Fprint(out, " (0h billable)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Date:** %s\n", dateRange(req.StartDate, req.EffectiveEndDate()))
	if req.Description != "" {
		fmt.Fprintf(out, "**Description:** %s\n", req.Description)
	}
	fmt.Fprintf(out, "**Worklog ID:** %s\n", w.ID)
	if w.TimeSpent != "" {
		fmt.Fprintf(out, "**Time Spent:** %s\n", w.TimeSpent)
	}
	fmt.Fprint(out, "\n### Details\n")
	fmt.Fprintf(out, "- Total seconds: %d\n", w.TimeSpentSeconds)
	fmt.Fprintf(out, "- Billable seconds: %d\n", w.BillableSeconds)
}

// WriteBulkResult prints the bulk summary, successes grouped by date, the
// failures with their requests, and a date by issue pivot of logged hours.
func WriteBulkResult(out io.Writer, result *service.BulkResult) {
	s := result.Summary
	fmt.Fprint(out, "## Results Summary\n\n")
	fmt.Fprintf(out, "- **Total Entries:** %d\n", s.TotalEntries)
	fmt.Fprintf(out, "- **Successful:** %d\n", s.Successful)
	fmt.Fprintf(out, "- **Failed:** %d\n", s.Failed)
	fmt.Fprintf(out, "- **Total Hours:** %s\n\n", formatHours(s.TotalHours))

	var succeeded, failed []domain.BatchOutcome
	for _, o := range result.Outcomes {
		if o.Success {
			succeeded = append(succeeded, o)
		} else {
			failed = append(failed, o)
		}
	}

	if len(succeeded) > 0 {
		fmt.Fprintf(out, "### Successful Entries (%d)\n\n", len(succeeded))
		byDate := map[string][]domain.BatchOutcome{}
		for _, o := range succeeded {
			byDate[o.Request.StartDate] = append(byDate[o.Request.StartDate], o)
		}
		for _, date := range sortedKeys(byDate) {
			var hours float64
			for _, o := range byDate[date] {
				hours += o.Request.Hours
			}
			fmt.Fprintf(out, "#### %s (%sh total)\n\n", date, formatHours(domain.Round2(hours)))
			for _, o := range byDate[date] {
				fmt.Fprintf(out, "- **%s**: %sh", o.Request.IssueKey, formatHours(o.Request.Hours))
				if o.Worklog != nil && o.Worklog.IssueSummary != "" {
					fmt.Fprintf(out, " - %s", o.Worklog.IssueSummary)
				}
				if o.Request.Description != "" {
					fmt.Fprintf(out, "\n  *%s*", o.Request.Description)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out)
		}
	}

	if len(failed) > 0 {
		fmt.Fprintf(out, "### Failed Entries (%d)\n\n", len(failed))
		for _, o := range failed {
			fmt.Fprintf(out, "- **%s** (%s, %sh)", o.Request.IssueKey, o.Request.StartDate, formatHours(o.Request.Hours))
			if o.Request.Description != "" {
				fmt.Fprintf(out, " - *%s*", o.Request.Description)
			}
			fmt.Fprintf(out, "\n  **Error:** %s\n\n", o.Error)
		}
	}

	writeDailyTotals(out, result.DailyTotals, s.TotalHours)
}

func writeDailyTotals(out io.Writer, totals map[string]map[string]float64, grandTotal float64) {
	if len(totals) == 0 {
		return
	}

	issueSet := map[string]bool{}
	for _, day := range totals {
		for issue := range day {
			issueSet[issue] = true
		}
	}
	issues := sortedKeys(issueSet)
	dates := sortedKeys(totals)

	fmt.Fprint(out, "### Daily Totals by Issue\n\n")
	fmt.Fprintf(out, "| Date | %s | Total |\n", strings.Join(issues, " | "))
	fmt.Fprintf(out, "|------|%s|-------|\n", strings.TrimSuffix(strings.Repeat("---|", len(issues)), "|"))

	for _, date := range dates {
		cells := make([]string, len(issues))
		var dayTotal float64
		for i, issue := range issues {
			hours := totals[date][issue]
			dayTotal += hours
			cells[i] = "-"
			if hours > 0 {
				cells[i] = formatHours(hours) + "h"
			}
		}
		fmt.Fprintf(out, "| %s | %s | **%sh** |\n", date, strings.Join(cells, " | "), formatHours(domain.Round2(dayTotal)))
	}

	cells := make([]string, len(issues))
	for i, issue := range issues {
		var total float64
		for _, date := range dates {
			total += totals[date][issue]
		}
		cells[i] = "-"
		if total > 0 {
			cells[i] = "**" + formatHours(domain.Round2(total)) + "h**"
		}
	}
	fmt.Fprintf(out, "| **Total** | %s | **%sh** |\n", strings.Join(cells, " | "), formatHours(grandTotal))
}

// WriteSchedule prints the schedule summary and up to ScheduleDayLimit days.
func WriteSchedule(out io.Writer, result *service.ScheduleResult) {
	fmt.Fprintf(out, "## Work Schedule (%s)\n\n", dateRange(result.StartDate, result.EndDate))

	s := result.Summary
	fmt.Fprint(out, "**Period Summary:**\n")
	fmt.Fprintf(out, "- Total Days: %d\n", s.TotalDays)
	fmt.Fprintf(out, "- Working Days: %d\n", s.WorkingDays)
	fmt.Fprintf(out, "- Non-Working Days: %d\n", s.NonWorkingDays)
	fmt.Fprintf(out, "- Total Required Hours: %sh\n", formatHours(s.TotalRequiredHours))
	if s.WorkingDays > 0 {
		fmt.Fprintf(out, "- Average Daily Hours: %sh\n", formatHours(s.AverageDailyHours))
	}
	fmt.Fprintln(out)

	if len(result.Days) == 0 {
		fmt.Fprintln(out, "No schedule data found for the specified date range.")
		return
	}

	fmt.Fprint(out, "**Schedule Details:**\n")
	days := result.Days
	if len(days) > ScheduleDayLimit {
		days = days[:ScheduleDayLimit]
	}
	for _, d := range days {
		if d.IsWorkingDay {
			fmt.Fprintf(out, "• %s: %sh (Working Day)\n", humanDate(d.Date), formatHours(d.RequiredHours()))
		} else {
			fmt.Fprintf(out, "• %s: - (Non-Working Day)\n", humanDate(d.Date))
		}
	}
	if len(result.Days) > ScheduleDayLimit {
		fmt.Fprintf(out, "\n*Showing first %d of %d total days. Use a shorter date range for more detail.*\n", ScheduleDayLimit, len(result.Days))
	}

	if s.WorkingDays > 0 {
		fmt.Fprint(out, "\n**Next Steps:**\n")
		fmt.Fprintf(out, "- Log time only on the %d working days shown above\n", s.WorkingDays)
		fmt.Fprintf(out, "- Total capacity is %sh across %d working days\n", formatHours(s.TotalRequiredHours), s.WorkingDays)
		if s.NonWorkingDays > 0 {
			fmt.Fprintf(out, "- Non-working days (%d) should not have time entries\n", s.NonWorkingDays)
		}
	}
}

// WriteDeleted prints the confirmation for a deleted worklog.
func WriteDeleted(out io.Writer, worklogID string, at time.Time) {
	fmt.Fprint(out, "## Worklog Deleted Successfully\n\n")
	fmt.Fprint(out, "The worklog has been permanently removed from Tempo.\n\n")
	fmt.Fprint(out, "**Details:**\n")
	fmt.Fprintf(out, "- Worklog ID: %s\n", worklogID)
	fmt.Fprintf(out, "- Deleted at: %s\n\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintln(out, "**Note:** This action cannot be undone.")
}

// WriteJournal prints journal entries newest first.
func WriteJournal(out io.Writer, worker string, entries []domain.JournalEntry) {
	fmt.Fprintf(out, "## Worklog Journal for %s\n\n", worker)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No journal entries recorded yet.")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("- %s %s", e.CreatedAt.UTC().Format(time.RFC3339), e.Action)
		if e.IssueKey != "" {
			line += " " + e.IssueKey
		}
		if e.Date != "" {
			line += " on " + e.Date
		}
		if e.Seconds > 0 {
			line += fmt.Sprintf(" (%sh)", formatHours(domain.SecondsToHours(e.Seconds)))
		}
		if e.WorklogID != "" {
			line += " [" + e.WorklogID + "]"
		}
		if e.Error != "" {
			line += ": " + e.Error
		}
		fmt.Fprintln(out, line)
	}
}

// WriteError prints a failed operation with context lines and a hint chosen
// from the error kind.
func WriteError(out io.Writer, title string, err error, lines ...string) {
	fmt.Fprintf(out, "## %s\n\n", title)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if len(lines) > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "**Error:** %s\n", err.Error())
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(out, "\nTip: %s\n", hint)
	}
}

// Hint suggests a fix for well known failure kinds.
func Hint(err error) string {
	switch {
	case errors.Is(err, errorutil.ErrAuthentication):
		return "Check your Personal Access Token (PAT) in the TEMPO_PAT environment variable."
	case errors.Is(err, errorutil.ErrAuthorization):
		return "Make sure you have permission for this operation in Jira and Tempo."
	case errors.Is(err, errorutil.ErrNotFound):
		return "Make sure the key or id exists and you have access to it."
	case errors.Is(err, errorutil.ErrRateLimit):
		return "Wait a moment before retrying."
	}
	return ""
}

func dateRange(start, end string) string {
	if end == "" || end == start {
		return start
	}
	return start + " to " + end
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// humanDate renders "2024-01-05" as "2024-01-05 (Friday, January 5th, 2024)".
func humanDate(date string) string {
	t, err := time.Parse(domain.DateLayout, domain.DatePart(date))
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s (%s, %s %d%s, %d)", domain.DatePart(date), t.Weekday(), t.Month(), t.Day(), ordinal(t.Day()), t.Year())
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
