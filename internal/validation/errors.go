package validation

import (
	"sort"
	"strings"
)

// Errors collects per-field validation messages. Only the first message for a
// field is kept so forms show one problem at a time.
type Errors struct {
	Fields map[string]string
}

func NewErrors() *Errors {
	return &Errors{Fields: map[string]string{}}
}

func (e *Errors) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// Check records err under field when it is non-nil.
func (e *Errors) Check(field string, err error) {
	if err != nil {
		e.Add(field, err.Error())
	}
}

func (e *Errors) Get(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}

func (e *Errors) Any() bool {
	return e != nil && len(e.Fields) > 0
}

// Err returns nil when nothing was collected, so callers can `return errs.Err()`.
func (e *Errors) Err() error {
	if !e.Any() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
