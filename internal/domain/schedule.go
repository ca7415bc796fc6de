package domain

// WorkingDayType is the schedule day type Tempo uses for working days.
const WorkingDayType = "WORKING_DAY"

// ScheduleDay is the expected working time for a single date.
type ScheduleDay struct {
	Date            string `json:"date"`
	RequiredSeconds int64  `json:"requiredSeconds"`
	IsWorkingDay    bool   `json:"isWorkingDay"`
}

// RequiredHours returns the required time in hours.
func (d ScheduleDay) RequiredHours() float64 {
	return SecondsToHours(d.RequiredSeconds)
}

// ScheduleSummary aggregates a list of schedule days.
type ScheduleSummary struct {
	TotalDays          int     `json:"totalDays"`
	WorkingDays        int     `json:"workingDays"`
	NonWorkingDays     int     `json:"nonWorkingDays"`
	TotalRequiredHours float64 `json:"totalRequiredHours"`
	AverageDailyHours  float64 `json:"averageDailyHours"`
}

// Summarize derives a ScheduleSummary from days.
func Summarize(days []ScheduleDay) ScheduleSummary {
	var summary ScheduleSummary
	summary.TotalDays = len(days)

	var required int64
	for _, day := range days {
		if day.IsWorkingDay {
			summary.WorkingDays++
		}
		required += day.RequiredSeconds
	}
	summary.NonWorkingDays = summary.TotalDays - summary.WorkingDays
	summary.TotalRequiredHours = SecondsToHours(required)
	if summary.WorkingDays > 0 {
		summary.AverageDailyHours = Round2(summary.TotalRequiredHours / float64(summary.WorkingDays))
	}
	return summary
}
