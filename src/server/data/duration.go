package data

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// MonthsBetween returns the whole calendar months from start to end. A
// partial month at the end does not count. Negative spans yield zero.
func MonthsBetween(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	months := (ey-sy)*12 + int(em-sm)
	if ed < sd {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// FormatDuration renders the span as "N months", "N years" or
// "N years and M months", singular when a count is one.
func FormatDuration(start, end time.Time) string {
	total := MonthsBetween(start, end)
	years, months := total/12, total%12
	switch {
	case years == 0:
		return plural(months, "month")
	case months == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + " and " + plural(months, "month")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatPeriod renders "2020-01 - 2021-06", or "2020-01 - present" when
// end is nil.
func FormatPeriod(start time.Time, end *time.Time) string {
	if end == nil {
		return start.Format(periodLayout) + " - present"
	}
	return start.Format(periodLayout) + " - " + end.Format(periodLayout)
}

// Derive fills Duration and Period on each experience. Ongoing records are
// measured up to now.
func Derive(exps []Experience, now time.Time) []Experience {
	out := make([]Experience, len(exps))
	for i, e := range exps {
		end := now
		var periodEnd *time.Time
		if !e.Ongoing() {
			end = *e.EndDate
			periodEnd = e.EndDate
		}
		e.Duration = FormatDuration(e.StartDate, end)
		e.Period = FormatPeriod(e.StartDate, periodEnd)
		out[i] = e
	}
	return out
}

// CompanySpan is the combined tenure at one company.
type CompanySpan struct {
	Company string
	Start   time.Time
	End     *time.Time // nil while any job at the company is ongoing
}

// Duration renders the span, measuring an ongoing span up to now.
func (s CompanySpan) Duration(now time.Time) string {
	if s.End == nil {
		return FormatDuration(s.Start, now)
	}
	return FormatDuration(s.Start, *s.End)
}

// GroupByCompany merges experiences per company using the earliest start
// and the latest end. Companies keep the order of their first appearance.
func GroupByCompany(exps []Experience) []CompanySpan {
	var spans []CompanySpan
	index := make(map[string]int)
	ongoing := make(map[string]bool)

	for _, e := range exps {
		i, seen := index[e.Company]
		if !seen {
			index[e.Company] = len(spans)
			spans = append(spans, CompanySpan{Company: e.Company, Start: e.StartDate, End: e.EndDate})
			ongoing[e.Company] = e.Ongoing()
			continue
		}
		s := &spans[i]
		if e.StartDate.Before(s.Start) {
			s.Start = e.StartDate
		}
		if e.Ongoing() {
			ongoing[e.Company] = true
			continue
		}
		if s.End == nil || e.EndDate.After(*s.End) {
			s.End = e.EndDate
		}
	}

	for i := range spans {
		if ongoing[spans[i].Company] {
			spans[i].End = nil
		}
	}
	return spans
}

// CompanyDurations renders GroupByCompany as name/duration pairs.
func CompanyDurations(exps []Experience, now time.Time) []CompanyDuration {
	spans := GroupByCompany(exps)
	out := make([]CompanyDuration, 0, len(spans))
	for _, s := range spans {
		out = append(out, CompanyDuration{Name: s.Company, Duration: s.Duration(now)})
	}
	return out
}

// TotalExperience measures from the earliest start date to now. It is
// empty when there are no experiences.
func TotalExperience(exps []Experience, now time.Time) TotalDuration {
	if len(exps) == 0 {
		return TotalDuration{}
	}
	earliest := exps[0].StartDate
	for _, e := range exps[1:] {
		if e.StartDate.Before(earliest) {
			earliest = e.StartDate
		}
	}
	return TotalDuration{TotalDuration: FormatDuration(earliest, now)}
}
