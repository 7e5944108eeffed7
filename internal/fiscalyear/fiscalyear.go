// Package fiscalyear computes April–March accounting periods.
package fiscalyear

import (
	"fmt"
	"time"
)

// Year describes one fiscal year window. The window runs from April 1 of
// StartYear through March 31 of EndYear.
type Year struct {
	StartYear int
	EndYear   int
}

// Of returns the fiscal year containing t.
func Of(t time.Time) Year {
	start := t.Year()
	if t.Month() < time.April {
		start = t.Year() - 1
	}
	return Year{StartYear: start, EndYear: start + 1}
}

// Start returns April 1 of the start year, at midnight UTC.
func (y Year) Start() time.Time {
	return time.Date(y.StartYear, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// End returns March 31 of the end year, at midnight UTC.
func (y Year) End() time.Time {
	return time.Date(y.EndYear, time.March, 31, 0, 0, 0, 0, time.UTC)
}

// Stamp returns the year pair used in final invoice numbers, e.g. "20242025".
func (y Year) Stamp() string {
	return fmt.Sprintf("%d%d", y.StartYear, y.EndYear)
}
