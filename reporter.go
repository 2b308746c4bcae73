package statetable

// ErrorReporter receives diagnostics from validation components. The
// Engine never reports through it
type ErrorReporter interface {
	ReportError(msg string)
	ReportErrorCause(msg string, cause error)
	ErrorCount() int
	HasErrors() bool
}
