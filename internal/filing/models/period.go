package models

import (
	"fmt"
	"time"

	dErrors "efile/pkg/domain-errors"
)

// Quarter is a calendar quarter, Q1 through Q4. The zero value means an annual filing.
type Quarter string

const (
	QuarterNone Quarter = ""
	Q1          Quarter = "Q1"
	Q2          Quarter = "Q2"
	Q3          Quarter = "Q3"
	Q4          Quarter = "Q4"
)

var quarterBounds = map[Quarter][2]struct {
	m time.Month
	d int
}{
	Q1: {{time.January, 1}, {time.March, 31}},
	Q2: {{time.April, 1}, {time.June, 30}},
	Q3: {{time.July, 1}, {time.September, 30}},
	Q4: {{time.October, 1}, {time.December, 31}},
}

// MinFilingYear is the first year the portal accepts filings for.
const MinFilingYear = 2020

// ParseQuarter accepts Q1..Q4 and the empty string.
func ParseQuarter(s string) (Quarter, error) {
	q := Quarter(s)
	if q == QuarterNone {
		return q, nil
	}
	if _, ok := quarterBounds[q]; !ok {
		return "", dErrors.Validation(dErrors.KindInvalidPeriod, fmt.Sprintf("invalid quarter %q", s))
	}
	return q, nil
}

func (q Quarter) String() string { return string(q) }

// DeadlineKey is the filing_config key holding the quarter's due date.
func (q Quarter) DeadlineKey() string {
	return string(q) + " deadline"
}

// Period is the inclusive reporting window of a filing.
type Period struct {
	Start Date
	End   Date
}

// PeriodFor returns the reporting window for year and quarter. An empty
// quarter yields the full calendar year.
func PeriodFor(year int, q Quarter) (Period, error) {
	if q == QuarterNone {
		return Period{
			Start: NewDate(year, time.January, 1),
			End:   NewDate(year, time.December, 31),
		}, nil
	}
	b, ok := quarterBounds[q]
	if !ok {
		return Period{}, dErrors.Validation(dErrors.KindInvalidPeriod, fmt.Sprintf("invalid quarter %q", q))
	}
	return Period{
		Start: NewDate(year, b[0].m, b[0].d),
		End:   NewDate(year, b[1].m, b[1].d),
	}, nil
}

// ValidatePeriod checks year bounds and that the quarter matches the form's cadence.
func ValidatePeriod(t FilingType, year int, q Quarter, now time.Time) error {
	if year < MinFilingYear || year > now.Year()+1 {
		return dErrors.Validation(dErrors.KindInvalidPeriod, fmt.Sprintf("invalid year %d", year))
	}
	if t.IsQuarterly() && q == QuarterNone {
		return dErrors.Validation(dErrors.KindInvalidPeriod, "quarter is required for "+t.String())
	}
	if !t.IsQuarterly() && q != QuarterNone {
		return dErrors.Validation(dErrors.KindInvalidPeriod, t.String()+" is an annual filing")
	}
	return nil
}
