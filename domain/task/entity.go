package task

import (
	"fmt"
	"strings"
	"time"
)

// Status is the workflow column a task sits in.
type Status string

const (
	StatusToDo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// DefaultStatus is applied whenever a status is not supplied.
const DefaultStatus = StatusToDo

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimSpace(v))
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", v)}
	}
	return s, nil
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow  Priority = "LOW"
	PriorityMed  Priority = "MED"
	PriorityHigh Priority = "HIGH"
)

// DefaultPriority is applied whenever a priority is not supplied.
const DefaultPriority = PriorityMed

// Valid reports whether p belongs to the closed priority set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh:
		return true
	}
	return false
}

// Field limits.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
)

// Task is a single work item on the board.
//
// ID and CreatedAt are write-once. Version starts at 0 and is advanced by the
// store on every successful update; callers never set it.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsNew reports whether the task has never been persisted.
func (t *Task) IsNew() bool {
	return t.ID == "" || t.CreatedAt.IsZero()
}

// NextTimestamp returns the updatedAt to record for a write happening at now.
// The result is always strictly after prev, even when the clock is coarse or
// steps backwards, and is truncated to microseconds so every store keeps it
// without rounding.
func NextTimestamp(prev, now time.Time) time.Time {
	next := now.UTC().Truncate(time.Microsecond)
	if !next.After(prev) {
		next = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return next
}
