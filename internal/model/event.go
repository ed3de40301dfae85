package model

import "time"

// DateLayout is the calendar-date form used for completion events.
const DateLayout = "2006-01-02"

type CompletionEvent struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Phase       Phase     `json:"phase"`
	Minutes     int       `json:"minutes"`
	CompletedAt time.Time `json:"completedAt"`
}

// DateOf returns the local calendar date of t in DateLayout form.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout string as midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, raw, loc)
}
