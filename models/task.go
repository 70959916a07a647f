package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and display format of due dates.
const DateLayout = "2006-01-02"

var (
	ErrMissingOwner  = errors.New("task must belong to a user")
	ErrEmptyTaskText = errors.New("task text must not be empty")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
)

type Task struct {
	ID          uint       `gorm:"column:task_id;primaryKey;autoIncrement" json:"task_id"`
	UserID      uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Text        string     `gorm:"column:task_text;type:text;not null" json:"task_text"`
	DueDate     *time.Time `gorm:"column:due_date;type:date" json:"-"`
	IsCompleted bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
}

func (Task) TableName() string {
	return "tasks"
}

// MarshalJSON renders DueDate as YYYY-MM-DD, omitting it when unset.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return json.Marshal(struct {
		plain
		DueDate string `json:"due_date,omitempty"`
	}{plain(t), FormatDueDate(t.DueDate)})
}

func (t Task) Validate() error {
	if t.UserID == 0 {
		return ErrMissingOwner
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyTaskText
	}
	return nil
}

// Urgency buckets a task by how close its due date is.
type Urgency string

const (
	UrgencyCompleted Urgency = "completed"
	UrgencyOverdue   Urgency = "overdue"
	UrgencyDueToday  Urgency = "due_today"
	UrgencyDueSoon   Urgency = "due_soon"
	UrgencyNormal    Urgency = "normal"
)

// DueSoonDays is the horizon, in days, of UrgencyDueSoon.
const DueSoonDays = 7

// Urgency classifies the task relative to today. Only calendar days count;
// the time of day of either argument is ignored.
func (t Task) Urgency(today time.Time) Urgency {
	if t.IsCompleted {
		return UrgencyCompleted
	}
	if t.DueDate == nil {
		return UrgencyNormal
	}

	days := DaysBetween(today, *t.DueDate)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyDueToday
	case days <= DueSoonDays:
		return UrgencyDueSoon
	default:
		return UrgencyNormal
	}
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	from := TruncateDate(a)
	to := TruncateDate(b)
	return int(to.Sub(from).Hours() / 24)
}

// TruncateDate drops the clock part of t and pins it to UTC, keeping the
// calendar date as seen in t's own location.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeDueDate returns a copy of due truncated to its calendar date, or
// nil when due is nil.
func NormalizeDueDate(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	d := TruncateDate(*due)
	return &d
}

// ParseDueDate parses a YYYY-MM-DD string. An empty string means no due date.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return &d, nil
}

// FormatDueDate is the inverse of ParseDueDate.
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(DateLayout)
}
