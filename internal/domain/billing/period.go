package billing

import (
	"strings"
	"time"

	"github.com/rentdesk/backend/internal/domain/shared"
)

// PeriodLabelLayout formats a period label such as "Aug 2025".
const PeriodLabelLayout = "Jan 2006"

// Period identifies one billing cycle of a tenancy.
type Period struct {
	Label    string
	BillDate time.Time
}

// PeriodOf returns the calendar-month period containing date.
// The bill date is the first day of that month.
func PeriodOf(date time.Time) Period {
	first := startOfMonth(date)
	return Period{
		Label:    first.Format(PeriodLabelLayout),
		BillDate: first,
	}
}

// PeriodOverride carries an explicitly requested period. Either field may be empty.
type PeriodOverride struct {
	Label    string
	BillDate *time.Time
}

// IsZero reports whether no override was supplied
func (o PeriodOverride) IsZero() bool {
	return strings.TrimSpace(o.Label) == "" && o.BillDate == nil
}

// ResolvePeriod determines the period of the next bill for a tenancy.
//
// An override label is parsed and stored in its canonical form, so "AUG 2025"
// and "Aug 2025" name the same period. When an override carries both a label
// and a date, the date must fall in the labelled month. A lone date is labelled
// by its month. Without an override the period is the month after the prior
// bill's date, else the month of the tenancy start date, else the month of
// fallback.
func ResolvePeriod(override PeriodOverride, priorBillDate, tenancyStart *time.Time, fallback time.Time) (Period, error) {
	label := strings.TrimSpace(override.Label)

	switch {
	case label != "":
		parsed, err := ParsePeriodLabel(label, fallback.Location())
		if err != nil {
			return Period{}, err
		}
		if override.BillDate == nil {
			return parsed, nil
		}
		billDate := dateOnly(*override.BillDate)
		if billDate.Year() != parsed.BillDate.Year() || billDate.Month() != parsed.BillDate.Month() {
			return Period{}, shared.ErrInvalidInput.WithMessage("bill date must fall in the month of the period label")
		}
		return Period{Label: parsed.Label, BillDate: billDate}, nil
	case override.BillDate != nil:
		return PeriodOf(*override.BillDate), nil
	}

	if priorBillDate != nil {
		return PeriodOf(addMonthNoOverflow(*priorBillDate)), nil
	}
	if tenancyStart != nil {
		return PeriodOf(*tenancyStart), nil
	}
	return PeriodOf(fallback), nil
}

// ParsePeriodLabel parses a label such as "Aug 2025" in any letter case and
// returns the period in canonical form.
func ParsePeriodLabel(label string, loc *time.Location) (Period, error) {
	parsed, err := time.ParseInLocation(PeriodLabelLayout, strings.TrimSpace(label), loc)
	if err != nil {
		return Period{}, shared.ErrInvalidInput.WithMessage("period label must look like \"Aug 2025\"")
	}
	return PeriodOf(parsed), nil
}

// addMonthNoOverflow moves a date one calendar month forward, clamping the day
// to the end of the target month (Jan 31 becomes Feb 28 or 29).
func addMonthNoOverflow(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfNext := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
