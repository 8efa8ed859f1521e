package nlq

import "time"

// Shorthand time ranges recognized by CalculateDateRange
const (
	RangeLast7d      = "last_7d"
	RangeLast30d     = "last_30d"
	RangeLast90d     = "last_90d"
	RangeLastQuarter = "last_quarter"
	RangeYTD         = "ytd"
	RangeLastYear    = "last_year"
	RangeCustom      = "custom"
)

const isoDate = "2006-01-02"

// DateRange is a concrete inclusive [start, end] window of ISO dates
type DateRange struct {
	StartDate string
	EndDate   string
}

// CalculateDateRange resolves a shorthand range to concrete dates anchored
// at now. Quarter and year boundaries use calendar arithmetic, not fixed day
// counts. The custom kind requires both explicit bounds.
func CalculateDateRange(kind, customStart, customEnd string, now time.Time) (DateRange, error) {
	today := now.UTC()

	switch kind {
	case RangeLast7d:
		return DateRange{today.AddDate(0, 0, -7).Format(isoDate), today.Format(isoDate)}, nil
	case RangeLast30d, "":
		return DateRange{today.AddDate(0, 0, -30).Format(isoDate), today.Format(isoDate)}, nil
	case RangeLast90d:
		return DateRange{today.AddDate(0, 0, -90).Format(isoDate), today.Format(isoDate)}, nil

	case RangeLastQuarter:
		// Previous complete calendar quarter
		qStartMonth := time.Month((int(today.Month())-1)/3*3 + 1)
		curQStart := time.Date(today.Year(), qStartMonth, 1, 0, 0, 0, 0, time.UTC)
		prevQStart := curQStart.AddDate(0, -3, 0)
		prevQEnd := curQStart.AddDate(0, 0, -1)
		return DateRange{prevQStart.Format(isoDate), prevQEnd.Format(isoDate)}, nil

	case RangeYTD:
		jan1 := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return DateRange{jan1.Format(isoDate), today.Format(isoDate)}, nil

	case RangeLastYear:
		// Previous complete calendar year
		jan1 := time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		dec31 := time.Date(today.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
		return DateRange{jan1.Format(isoDate), dec31.Format(isoDate)}, nil

	case RangeCustom:
		if customStart == "" || customEnd == "" {
			return DateRange{}, newError(ErrInvalidDate, "custom time range requires both startDate and endDate")
		}
		return DateRange{customStart, customEnd}, nil
	}

	return DateRange{}, newError(ErrInvalidDate, "unrecognized time range %q", kind)
}
