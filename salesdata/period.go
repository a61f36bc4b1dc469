package salesdata

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

const periodLayout = "2006-01"

var ErrInvalidPeriodFormat = errors.New("period must be formatted as YYYY-MM")

// Period is a calendar month, the first day of the month at midnight UTC.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod returns the period for the given year and month. Months outside of 1-12 are
// normalized the same way time.Date normalizes them.
func NewPeriod(year int, month time.Month) Period {
	return PeriodOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// PeriodOf truncates a time to the month it falls in
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Time returns the first instant of the period
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the period n months after p. Negative values move backwards.
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Time().AddDate(0, n, 0))
}

// Compare returns -1 if p is before o, 1 if after and 0 if they are the same month.
func (p Period) Compare(o Period) int {
	switch {
	case p.Year < o.Year:
		return -1
	case p.Year > o.Year:
		return 1
	case p.Month < o.Month:
		return -1
	case p.Month > o.Month:
		return 1
	}
	return 0
}

func (p Period) Before(o Period) bool {
	return p.Compare(o) < 0
}

func (p Period) After(o Period) bool {
	return p.Compare(o) > 0
}

// Quarter returns the quarter of the year, 1 through 4
func (p Period) Quarter() int {
	return (int(p.Month)-1)/3 + 1
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label renders the period for display e.g. "Mar 2024"
func (p Period) Label() string {
	return p.Time().Format("Jan 2006")
}

// ParsePeriod parses a period in YYYY-MM format
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("%q, %w", s, ErrInvalidPeriodFormat)
	}
	return PeriodOf(t), nil
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
