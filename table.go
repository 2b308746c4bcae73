package statetable

import (
	"errors"
	"log/slog"
)

// Table is a runnable instance of a TableDefinition: the definition, the
// data manager holding its record, and the handler and hook invoked by the
// Engine. Configure a Table before handing it to a Control
type Table[D Data, E Event] struct {
	def          *TableDefinition[D, E]
	data         DataManager[D, E]
	errorHandler ErrorHandler[D, E]
	hook         TransitionHook[D, E]
	logger       *slog.Logger
	strict       bool
}

var (
	ErrNilDefinition  = errors.New("table has no definition")
	ErrNilDataManager = errors.New("table has no data manager")
)

// NewTable wraps a definition and data manager. The logging error handler
// and transition hook are used until replaced
func NewTable[D Data, E Event](
	def *TableDefinition[D, E], dm DataManager[D, E],
) *Table[D, E] {
	return &Table[D, E]{
		def:    def,
		data:   dm,
		logger: slog.Default(),
	}
}

// WithErrorHandler replaces the default logging error handler
func (t *Table[D, E]) WithErrorHandler(h ErrorHandler[D, E]) *Table[D, E] {
	t.errorHandler = h
	return t
}

// WithTransitionHook replaces the default logging transition hook
func (t *Table[D, E]) WithTransitionHook(h TransitionHook[D, E]) *Table[D, E] {
	t.hook = h
	return t
}

// WithLogger sets the logger used by the default providers and controls
func (t *Table[D, E]) WithLogger(logger *slog.Logger) *Table[D, E] {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// WithStrictErrorHandling controls whether a panicking error handler is
// reported in the returned ExecutionError instead of being discarded
func (t *Table[D, E]) WithStrictErrorHandling(strict bool) *Table[D, E] {
	t.strict = strict
	return t
}

// Name returns the definition's name
func (t *Table[D, E]) Name() string {
	if t.def == nil {
		return ""
	}
	return t.def.Name()
}

// Definition returns the table definition
func (t *Table[D, E]) Definition() *TableDefinition[D, E] {
	return t.def
}

// DataManager returns the table's data manager
func (t *Table[D, E]) DataManager() DataManager[D, E] {
	return t.data
}

// Logger returns the table's logger
func (t *Table[D, E]) Logger() *slog.Logger {
	if t.logger == nil {
		return slog.Default()
	}
	return t.logger
}

// ErrorHandler returns the configured error handler, or the logging default
func (t *Table[D, E]) ErrorHandler() ErrorHandler[D, E] {
	if t.errorHandler == nil {
		return NewLoggingErrorHandler[D, E](t.Logger())
	}
	return t.errorHandler
}

// TransitionHook returns the configured hook, or the logging default
func (t *Table[D, E]) TransitionHook() TransitionHook[D, E] {
	if t.hook == nil {
		return NewLoggingTransitionHook[D, E](t.Logger())
	}
	return t.hook
}

// IsStrict reports whether strict error handling is enabled
func (t *Table[D, E]) IsStrict() bool {
	return t.strict
}

// Validate checks that the table can be started
func (t *Table[D, E]) Validate() error {
	if t == nil || t.def == nil {
		return ErrNilDefinition
	}
	if t.data == nil {
		return ErrNilDataManager
	}
	return nil
}
