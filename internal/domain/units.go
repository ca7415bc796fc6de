package domain

import "math"

const secondsPerHour = 3600

// HoursToSeconds converts fractional hours to whole seconds.
func HoursToSeconds(hours float64) int64 {
	return int64(math.Round(hours * secondsPerHour))
}

// SecondsToHours converts seconds to hours rounded to two decimals.
func SecondsToHours(seconds int64) float64 {
	return Round2(float64(seconds) / secondsPerHour)
}

// Round2 rounds v to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
