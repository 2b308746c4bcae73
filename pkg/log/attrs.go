package log

import "log/slog"

func Table(name string) slog.Attr {
	return slog.String("table", name)
}

func FromState(state string) slog.Attr {
	return slog.String("from_state", state)
}

func ToState(state string) slog.Attr {
	return slog.String("to_state", state)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Behavior(name string) slog.Attr {
	return slog.String("behavior", name)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func Panic(r any) slog.Attr {
	return slog.Any("panic", r)
}
