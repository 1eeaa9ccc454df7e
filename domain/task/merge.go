package task

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// New builds an unsaved task from a creation input. Defaults apply to every
// field the input leaves out.
func New(in Input) (Task, error) {
	return Replace(Task{}, in)
}

// Replace overwrites every mutable field of current with in. Absent fields
// fall back to their defaults. Identity, version and timestamps are kept.
func Replace(current Task, in Input) (Task, error) {
	next := current
	next.Title = in.Title.Value
	next.Description = in.Description.Value
	next.Status = DefaultStatus
	if in.Status.HasValue() {
		next.Status = in.Status.Value
	}
	next.Priority = DefaultPriority
	if in.Priority.HasValue() {
		next.Priority = in.Priority.Value
	}
	if err := Validate(next); err != nil {
		return current, err
	}
	return next, nil
}

// Merge applies only the fields present in in. An explicit null clears the
// description and resets status or priority to the default; a null title is
// rejected like an empty one.
func Merge(current Task, in Input) (Task, error) {
	next := current
	if in.Title.Present {
		if in.Title.Null {
			return current, &ValidationError{Field: "title", Reason: "must not be null"}
		}
		next.Title = in.Title.Value
	}
	if in.Description.Present {
		next.Description = in.Description.Value
	}
	if in.Status.Present {
		next.Status = DefaultStatus
		if !in.Status.Null {
			next.Status = in.Status.Value
		}
	}
	if in.Priority.Present {
		next.Priority = DefaultPriority
		if !in.Priority.Null {
			next.Priority = in.Priority.Value
		}
	}
	if err := Validate(next); err != nil {
		return current, err
	}
	return next, nil
}

// Validate checks the mutable fields of t against the field rules.
func Validate(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if n := utf8.RuneCountInString(t.Title); n > MaxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("length %d exceeds %d", n, MaxTitleLength)}
	}
	if n := utf8.RuneCountInString(t.Description); n > MaxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("length %d exceeds %d", n, MaxDescriptionLength)}
	}
	if !t.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", t.Status)}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown value %q", t.Priority)}
	}
	return nil
}
