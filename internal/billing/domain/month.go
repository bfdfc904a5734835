package billing

import "time"

const monthKeyLayout = "2006-01"

// MonthKey is the canonical YYYY-MM identifier of a billing month.
// Lexicographic order on month keys equals chronological order, so keys
// compare and sort as plain strings.
type MonthKey string

// ParseMonthKey validates a raw month string and returns its key.
func ParseMonthKey(raw string) (MonthKey, error) {
	t, err := time.Parse(monthKeyLayout, raw)
	if err != nil {
		return "", ErrInvalidMonthKey
	}
	// time.Parse tolerates unpadded months; only the canonical form is a key.
	if t.Format(monthKeyLayout) != raw {
		return "", ErrInvalidMonthKey
	}
	return MonthKey(raw), nil
}

// Time returns the month start in UTC.
func (k MonthKey) Time() time.Time {
	t, err := time.Parse(monthKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the key of the following month.
func (k MonthKey) Next() MonthKey {
	t := k.Time()
	if t.IsZero() {
		return ""
	}
	return MonthKey(t.AddDate(0, 1, 0).Format(monthKeyLayout))
}

// String returns the raw key for storage.
func (k MonthKey) String() string { return string(k) }
