package conditional

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/anggasct/statetable"
)

// PayloadCarrier is implemented by events exposing their payload, such as
// *statetable.PayloadEvent
type PayloadCarrier interface {
	Payload() map[string]any
}

// Always matches every event
func Always[D statetable.Data, E statetable.Event]() Predicate[D, E] {
	return func(D, E) bool { return true }
}

// EventIs matches events with the given name
func EventIs[D statetable.Data, E statetable.Event](name string) Predicate[D, E] {
	return func(_ D, event E) bool {
		return event.GetName() == name
	}
}

// Not negates a predicate
func Not[D statetable.Data, E statetable.Event](p Predicate[D, E]) Predicate[D, E] {
	return func(data D, event E) bool {
		return !p(data, event)
	}
}

// All matches when every predicate matches
func All[D statetable.Data, E statetable.Event](
	preds ...Predicate[D, E],
) Predicate[D, E] {
	return func(data D, event E) bool {
		for _, p := range preds {
			if !p(data, event) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one predicate matches
func Any[D statetable.Data, E statetable.Event](
	preds ...Predicate[D, E],
) Predicate[D, E] {
	return func(data D, event E) bool {
		for _, p := range preds {
			if p(data, event) {
				return true
			}
		}
		return false
	}
}

// DataPath evaluates a gjson path against the JSON encoding of the working
// data. Records that cannot be encoded never match
func DataPath[D statetable.Data, E statetable.Event](
	path string, match func(gjson.Result) bool,
) Predicate[D, E] {
	return func(data D, _ E) bool {
		return matchJSON(data, path, match)
	}
}

// DataPathExists matches when the path resolves in the working data
func DataPathExists[D statetable.Data, E statetable.Event](
	path string,
) Predicate[D, E] {
	return DataPath[D, E](path, gjson.Result.Exists)
}

// DataPathEquals matches when the path resolves to value's string form
func DataPathEquals[D statetable.Data, E statetable.Event](
	path string, value string,
) Predicate[D, E] {
	return DataPath[D, E](path, equals(value))
}

// EventPath evaluates a gjson path against the JSON encoding of the event
// payload. Events without a payload never match
func EventPath[D statetable.Data, E statetable.Event](
	path string, match func(gjson.Result) bool,
) Predicate[D, E] {
	return func(_ D, event E) bool {
		pc, ok := any(event).(PayloadCarrier)
		if !ok {
			return false
		}
		return matchJSON(pc.Payload(), path, match)
	}
}

// EventPathEquals matches when the payload path resolves to value's string
// form
func EventPathEquals[D statetable.Data, E statetable.Event](
	path string, value string,
) Predicate[D, E] {
	return EventPath[D, E](path, equals(value))
}

// Greater returns a matcher for numeric values strictly above limit
func Greater(limit float64) func(gjson.Result) bool {
	return func(r gjson.Result) bool {
		return r.Exists() && r.Type == gjson.Number && r.Float() > limit
	}
}

// AtMost returns a matcher for numeric values not above limit
func AtMost(limit float64) func(gjson.Result) bool {
	return func(r gjson.Result) bool {
		return r.Exists() && r.Type == gjson.Number && r.Float() <= limit
	}
}

func equals(value string) func(gjson.Result) bool {
	return func(r gjson.Result) bool {
		return r.Exists() && r.String() == value
	}
}

func matchJSON(v any, path string, match func(gjson.Result) bool) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return match(gjson.GetBytes(b, path))
}
