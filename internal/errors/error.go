package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of diagnostic.
type Category string

const (
	CategoryParse  Category = "parse"
	CategoryCreate Category = "create"
	CategoryConfig Category = "config"
	CategoryAppend Category = "append"
	CategoryMount  Category = "mount"
	CategoryQuery  Category = "query"
	CategoryCLI    Category = "cli"
)

// Severity tells whether a diagnostic aborted anything.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Location represents a position in a descriptor document.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// SpawnError is a coded diagnostic with optional location and hints.
type SpawnError struct {
	// Code is a unique identifier (e.g., "S001").
	Code string

	// Category is the diagnostic type.
	Category Category

	// Severity is warning for recovered problems, error otherwise.
	Severity Severity

	// Message is a short description.
	Message string

	// Detail is a longer, call-specific explanation.
	Detail string

	// Location is where in a descriptor document the problem was found.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SpawnError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a document location to the error.
func (e *SpawnError) WithLocation(file string, line, column int) *SpawnError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *SpawnError) WithSuggestion(s string) *SpawnError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *SpawnError) WithDetail(d string) *SpawnError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *SpawnError) WithDetailf(format string, args ...any) *SpawnError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *SpawnError) Wrap(err error) *SpawnError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a SpawnError from a registered code.
func New(code string) *SpawnError {
	template, ok := registry[code]
	if !ok {
		return &SpawnError{
			Code:     code,
			Severity: SeverityError,
			Message:  "Unknown error",
		}
	}
	return &SpawnError{
		Code:     code,
		Category: template.Category,
		Severity: template.Severity,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new SpawnError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *SpawnError {
	return &SpawnError{
		Category: category,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a SpawnError.
func FromError(err error, code string) *SpawnError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SpawnError); ok {
		return se
	}
	return New(code).Wrap(err)
}
