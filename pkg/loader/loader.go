// Package loader reads table definitions from YAML documents. Actors,
// hooks and error handlers are referenced by name and resolved against a
// statetable.Registry
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/statetable"
)

type (
	// Document is the YAML form of a table definition. The first state is
	// the initial state
	Document struct {
		Name         string     `yaml:"name"`
		States       []StateDoc `yaml:"states"`
		Hook         string     `yaml:"hook,omitempty"`
		ErrorHandler string     `yaml:"error_handler,omitempty"`
		Strict       bool       `yaml:"strict,omitempty"`
	}

	// StateDoc describes a single state
	StateDoc struct {
		Name        string          `yaml:"name"`
		Transitions []TransitionDoc `yaml:"transitions,omitempty"`
		Default     *TransitionDoc  `yaml:"default,omitempty"`
	}

	// TransitionDoc describes a transition. Event is ignored for a state's
	// default transition
	TransitionDoc struct {
		Event  string   `yaml:"event,omitempty"`
		Target string   `yaml:"target"`
		Actors []string `yaml:"actors,omitempty"`
	}
)

var (
	ErrInvalidDocument = errors.New("invalid table document")
	ErrUnknownHook     = errors.New("unknown transition hook")
	ErrUnknownHandler  = errors.New("unknown error handler")
)

// Decode reads a Document from r. Unknown fields are rejected
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("%w: missing table name", ErrInvalidDocument)
	}
	return &doc, nil
}

// Parse reads a Document from data
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Marshal encodes a Document back to YAML
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// FromDefinition describes an existing definition as a Document. Actor names
// are taken from the actors themselves, so the result only loads back if
// the registry holds actors under those names
func FromDefinition[D statetable.Data, E statetable.Event](
	def *statetable.TableDefinition[D, E],
) *Document {
	doc := &Document{Name: def.Name()}
	for _, sd := range def.States() {
		sdoc := StateDoc{Name: sd.Name()}
		for _, td := range sd.Transitions() {
			sdoc.Transitions = append(sdoc.Transitions, TransitionDoc{
				Event:  td.Event(),
				Target: td.Target(),
				Actors: td.ActorNames(),
			})
		}
		if dt := sd.DefaultTransition(); !dt.IsFallback() {
			sdoc.Default = &TransitionDoc{
				Target: dt.Target(),
				Actors: dt.ActorNames(),
			}
		}
		doc.States = append(doc.States, sdoc)
	}
	return doc
}

// Build turns a Document into a validated table definition
func Build[D statetable.Data, E statetable.Event](
	doc *Document, reg *statetable.Registry[D, E],
) (*statetable.TableDefinition[D, E], error) {
	tb := statetable.NewTableBuilder[D, E](doc.Name)
	if reg != nil {
		tb.WithRegistry(reg)
	}
	for _, sdoc := range doc.States {
		sb := tb.WithState(sdoc.Name)
		for _, tdoc := range sdoc.Transitions {
			addActors(sb.TransitionOnEvent(tdoc.Event), tdoc).EndTransition()
		}
		if sdoc.Default != nil {
			addActors(sb.WithDefaultEventHandler(), *sdoc.Default).
				EndTransition()
		}
		sb.EndState()
	}
	return tb.Build()
}

// Load decodes and builds a definition from r
func Load[D statetable.Data, E statetable.Event](
	r io.Reader, reg *statetable.Registry[D, E],
) (*statetable.TableDefinition[D, E], error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return Build(doc, reg)
}

// LoadFile decodes and builds a definition from the file at path
func LoadFile[D statetable.Data, E statetable.Event](
	path string, reg *statetable.Registry[D, E],
) (*statetable.TableDefinition[D, E], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Load(f, reg)
}

// Configure applies the document's hook, error handler and strict flag to
// a table, resolving names against reg
func Configure[D statetable.Data, E statetable.Event](
	doc *Document, table *statetable.Table[D, E],
	reg *statetable.Registry[D, E],
) error {
	if doc.Hook != "" {
		h, ok := lookup(reg, doc.Hook, (*statetable.Registry[D, E]).Hook)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownHook, doc.Hook)
		}
		table.WithTransitionHook(h)
	}
	if doc.ErrorHandler != "" {
		h, ok := lookup(reg, doc.ErrorHandler,
			(*statetable.Registry[D, E]).ErrorHandler)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownHandler, doc.ErrorHandler)
		}
		table.WithErrorHandler(h)
	}
	table.WithStrictErrorHandling(doc.Strict)
	return nil
}

func lookup[D statetable.Data, E statetable.Event, T any](
	reg *statetable.Registry[D, E], name string,
	get func(*statetable.Registry[D, E], string) (T, bool),
) (T, bool) {
	if reg == nil {
		var zero T
		return zero, false
	}
	return get(reg, name)
}

func addActors[D statetable.Data, E statetable.Event](
	tb *statetable.TransitionBuilder[D, E], tdoc TransitionDoc,
) *statetable.TransitionBuilder[D, E] {
	tb.ToState(tdoc.Target)
	for _, name := range tdoc.Actors {
		tb.WithActorNamed(name)
	}
	return tb
}
