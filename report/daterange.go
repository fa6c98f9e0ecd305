package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Relative dates understood by the Data API. They are resolved upstream.
const (
	DefaultStartDate = "7daysAgo"
	DefaultEndDate   = "today"
)

const isoDate = "2006-01-02"

var (
	isoDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T\d{2}:\d{2}:\d{2}$`)
	usDatePattern   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// DateRange is an inclusive report date range.
type DateRange struct {
	Start string
	End   string
}

// DefaultDateRange is the rolling seven day window used when no range is given.
func DefaultDateRange() DateRange {
	return DateRange{Start: DefaultStartDate, End: DefaultEndDate}
}

// NormalizeDate converts a date to YYYY-MM-DD.
//
// Accepted formats:
//   - YYYY-MM-DD
//   - YYYY-MM-DDTHH:MM:SS, the time is dropped
//   - MM/DD/YYYY, month and day may have one digit
//
// The result must be a real calendar date.
func NormalizeDate(s string) (string, error) {
	var date string
	switch {
	case isoDatePattern.MatchString(s):
		date = s
	case dateTimePattern.MatchString(s):
		date = dateTimePattern.FindStringSubmatch(s)[1]
	case usDatePattern.MatchString(s):
		m := usDatePattern.FindStringSubmatch(s)
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		date = fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
	default:
		return "", fmt.Errorf("%w: %q (expected YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS or MM/DD/YYYY)", ErrUnsupportedDateFormat, s)
	}

	if _, err := time.Parse(isoDate, date); err != nil {
		return "", fmt.Errorf("%w: %q is not a calendar date", ErrUnsupportedDateFormat, s)
	}
	return date, nil
}

// rawDateRange accepts both snake_case and camelCase keys.
type rawDateRange struct {
	StartDate      *string `json:"start_date"`
	EndDate        *string `json:"end_date"`
	StartDateCamel *string `json:"startDate"`
	EndDateCamel   *string `json:"endDate"`
}

// ResolveDateRange reads the dateRange argument.
// Without the argument the default rolling window is returned. A literal
// with only one bound keeps the default for the other.
func ResolveDateRange(args map[string]Argument) (DateRange, error) {
	dr := DefaultDateRange()

	arg, ok := args[DateRangeArgument]
	if !ok {
		return dr, nil
	}
	if arg.Type != ArgumentTypeLiteral {
		return DateRange{}, fmt.Errorf("%w: %s must be a literal, got %q", ErrUnsupportedArgument, DateRangeArgument, arg.Type)
	}
	if isNull(arg.Value) {
		return dr, nil
	}

	var raw rawDateRange
	if err := json.Unmarshal(arg.Value, &raw); err != nil {
		return DateRange{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedArgument, DateRangeArgument, err)
	}

	explicit := 0
	if start := firstSet(raw.StartDate, raw.StartDateCamel); start != nil {
		normalized, err := NormalizeDate(*start)
		if err != nil {
			return DateRange{}, fmt.Errorf("start date: %w", err)
		}
		dr.Start = normalized
		explicit++
	}
	if end := firstSet(raw.EndDate, raw.EndDateCamel); end != nil {
		normalized, err := NormalizeDate(*end)
		if err != nil {
			return DateRange{}, fmt.Errorf("end date: %w", err)
		}
		dr.End = normalized
		explicit++
	}

	if explicit == 2 && dr.Start > dr.End {
		return DateRange{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange, dr.Start, dr.End)
	}
	return dr, nil
}

func firstSet(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
