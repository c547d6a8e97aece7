package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	isoDateLayout   = "2006-01-02"
	slashDateLayout = "2006/01/02"
)

// DateRange is a pair of calendar dates. A zero time means the side is unset.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange parses both sides with ParseDate. Empty strings leave the side unset.
func NewDateRange(from, to string) (DateRange, error) {
	var r DateRange
	var err error
	if from != "" {
		if r.From, err = ParseDate(from); err != nil {
			return DateRange{}, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if to != "" {
		if r.To, err = ParseDate(to); err != nil {
			return DateRange{}, fmt.Errorf("invalid to date: %w", err)
		}
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD and returns midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout := isoDateLayout
	if strings.Contains(s, "/") {
		layout = slashDateLayout
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("use YYYY-MM-DD or YYYY/MM/DD: %w", err)
	}
	return t, nil
}

// Complete reports whether both sides are set.
func (r DateRange) Complete() bool {
	return !r.From.IsZero() && !r.To.IsZero()
}

// Validate rejects a range whose start is after its end. Equal dates are allowed.
func (r DateRange) Validate() error {
	if r.Complete() && r.From.After(r.To) {
		return fmt.Errorf("from date %s is after to date %s", r.From.Format(isoDateLayout), r.To.Format(isoDateLayout))
	}
	return nil
}

// QueryWindow returns the inclusive instants sent to the API:
// From at 00:00:00Z and To at 23:59:59Z, so a same-day range is not empty.
func (r DateRange) QueryWindow() (time.Time, time.Time) {
	fy, fm, fd := r.From.Date()
	ty, tm, td := r.To.Date()
	from := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ty, tm, td, 23, 59, 59, 0, time.UTC)
	return from, to
}

// Equal compares the calendar days of both sides.
func (r DateRange) Equal(other DateRange) bool {
	return r.From.Equal(other.From) && r.To.Equal(other.To)
}

func (r DateRange) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "unset"
		}
		return t.Format(isoDateLayout)
	}
	return format(r.From) + ".." + format(r.To)
}

// MarshalJSON renders both sides as calendar dates, unset sides as empty strings.
func (r DateRange) MarshalJSON() ([]byte, error) {
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(isoDateLayout)
	}
	return json.Marshal(struct {
		From string `json:"from"`
		To   string `json:"to"`
	}{format(r.From), format(r.To)})
}
