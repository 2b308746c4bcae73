// Package utils provides utility types shared by the statetable packages
package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrorCollector collects multiple errors during validation or processing.
// It is safe for concurrent use
type ErrorCollector struct {
	errors []error
	mu     sync.Mutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collector
func (ec *ErrorCollector) Add(err error) {
	if err == nil {
		return
	}
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.errors = append(ec.errors, err)
}

// ReportError records a message as an error
func (ec *ErrorCollector) ReportError(msg string) {
	ec.Add(errors.New(msg))
}

// ReportErrorCause records a message together with its underlying cause
func (ec *ErrorCollector) ReportErrorCause(msg string, cause error) {
	if cause == nil {
		ec.ReportError(msg)
		return
	}
	ec.Add(fmt.Errorf("%s: %w", msg, cause))
}

// ErrorCount returns the number of collected errors
func (ec *ErrorCollector) ErrorCount() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return len(ec.errors)
}

// HasErrors returns whether any errors were collected
func (ec *ErrorCollector) HasErrors() bool {
	return ec.ErrorCount() > 0
}

// GetErrors returns all collected errors
func (ec *ErrorCollector) GetErrors() []error {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	res := make([]error, len(ec.errors))
	copy(res, ec.errors)
	return res
}

// Messages returns the message of every collected error in order
func (ec *ErrorCollector) Messages() []string {
	errs := ec.GetErrors()
	res := make([]string, 0, len(errs))
	for _, err := range errs {
		res = append(res, err.Error())
	}
	return res
}

// Err returns the collected errors joined into one, or nil
func (ec *ErrorCollector) Err() error {
	return errors.Join(ec.GetErrors()...)
}

// Reset discards every collected error
func (ec *ErrorCollector) Reset() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.errors = ec.errors[:0]
}

// Error returns a string representation of all errors
func (ec *ErrorCollector) Error() string {
	errs := ec.GetErrors()
	if len(errs) == 0 {
		return "no errors"
	}

	if len(errs) == 1 {
		return errs[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(errs)))

	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("  %d: %v\n", i+1, err))
	}

	return sb.String()
}
