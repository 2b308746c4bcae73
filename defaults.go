package statetable

import (
	"log/slog"

	"github.com/anggasct/statetable/pkg/log"
)

type (
	// LoggingErrorHandler logs every failure and never panics
	LoggingErrorHandler[D Data, E Event] struct {
		logger *slog.Logger
	}

	// LoggingTransitionHook logs every successful transition
	LoggingTransitionHook[D Data, E Event] struct {
		logger *slog.Logger
	}
)

// NewLoggingErrorHandler creates an error handler writing to logger
func NewLoggingErrorHandler[D Data, E Event](
	logger *slog.Logger,
) *LoggingErrorHandler[D, E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingErrorHandler[D, E]{logger: logger}
}

// Name returns the handler's display name
func (h *LoggingErrorHandler[D, E]) Name() string {
	return "loggingErrorHandler"
}

// OnError logs the failure with its table, states, event and behavior
func (h *LoggingErrorHandler[D, E]) OnError(
	tc *TransitionContext[D, E], failing Behavior, cause error,
) {
	h.logger.Error("Transition failed",
		log.Table(tc.GetTableName()),
		log.FromState(tc.GetFromState()),
		log.ToState(tc.GetTargetState()),
		log.Event(tc.GetEventName()),
		log.Behavior(BehaviorName(failing)),
		log.Error(cause))
}

// NewLoggingTransitionHook creates a transition hook writing to logger
func NewLoggingTransitionHook[D Data, E Event](
	logger *slog.Logger,
) *LoggingTransitionHook[D, E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingTransitionHook[D, E]{logger: logger}
}

// Name returns the hook's display name
func (h *LoggingTransitionHook[D, E]) Name() string {
	return "loggingTransitionHook"
}

// OnTransition logs the transition and always succeeds
func (h *LoggingTransitionHook[D, E]) OnTransition(
	tc *TransitionContext[D, E],
) error {
	h.logger.Info("Transition",
		log.Table(tc.GetTableName()),
		log.FromState(tc.GetFromState()),
		log.ToState(tc.GetResolvedTargetState()),
		log.Event(tc.GetEventName()))
	return nil
}
