package calendar

import "time"

// Month pairs a month number with its display name for filter selectors.
type Month struct {
	Number int
	Name   string
}

// Months returns the twelve months in calendar order.
func Months() []Month {
	months := make([]Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, Month{Number: int(m), Name: m.String()})
	}
	return months
}

// MonthName returns the display name of month n, or "" when n is not 1-12.
func MonthName(n int) string {
	if n < 1 || n > 12 {
		return ""
	}
	return time.Month(n).String()
}
