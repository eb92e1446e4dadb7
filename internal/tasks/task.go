// Package tasks holds the task collection: the Task type, the Store that owns
// the canonical ordered collection, and the pure filter views over it.
package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "General"

// Task represents a single to-do item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	DueDate   *Date  `json:"dueDate,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Equal reports whether two tasks carry the same fields.
func (t Task) Equal(o Task) bool {
	if t.ID != o.ID || t.Text != o.Text || t.Completed != o.Completed || t.Category != o.Category {
		return false
	}
	if (t.DueDate == nil) != (o.DueDate == nil) {
		return false
	}
	return t.DueDate == nil || *t.DueDate == *o.DueDate
}

// Date is a calendar date with no time of day and no zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const (
	isoLayout    = "2006-01-02"
	legacyLayout = "Mon Jan 02 2006" // JavaScript Date.toDateString()
)

// NewDate returns the date, normalized the way time.Date normalizes.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD. The "Mon Jan 02 2006" form is accepted too.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{isoLayout, legacyLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date: %q (want YYYY-MM-DD)", s)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Valid reports whether d is a real calendar date that String renders in a
// form ParseDate reads back.
func (d Date) Valid() bool {
	if d.Year < 0 || d.Year > 9999 {
		return false
	}
	parsed, err := ParseDate(d.String())
	return err == nil && parsed == d
}

// MarshalJSON implements json.Marshaler. Dates that would not decode again
// are refused.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("dueDate: unrepresentable date %s", d)
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dueDate: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Encode serializes a collection. A nil collection encodes as [].
func Encode(ts []Task) ([]byte, error) {
	if ts == nil {
		ts = []Task{}
	}
	return json.Marshal(ts)
}

// Decode parses a serialized collection and checks the id invariant.
func Decode(data []byte) ([]Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty task data")
	}
	var ts []Task
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	seen := make(map[string]struct{}, len(ts))
	for i, t := range ts {
		if t.ID == "" {
			return nil, fmt.Errorf("decode tasks: task %d has no id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("decode tasks: duplicate id %s", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return ts, nil
}
