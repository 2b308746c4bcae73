package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/statetable"
)

// DOTGenerator generates Graphviz DOT format representations of tables
type DOTGenerator[D statetable.Data, E statetable.Event] struct {
	def     *statetable.TableDefinition[D, E]
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowActors      bool
	ShowDefaults    bool
	ShowFallbacks   bool
	RankDirection   string // "TB", "LR", "BT", "RL"
	NodeShape       string
	TransitionStyle string
	SentinelStyle   string
}

// targetLister matches actors that can name the states they move to
type targetLister interface {
	Targets() []string
}

const dynamicNode = "?"

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowActors:      true,
		ShowDefaults:    true,
		ShowFallbacks:   false,
		RankDirection:   "TB",
		NodeShape:       "box",
		TransitionStyle: "solid",
		SentinelStyle:   "dashed",
	}
}

// NewDOTGenerator creates a new DOT generator for the given definition
func NewDOTGenerator[D statetable.Data, E statetable.Event](
	def *statetable.TableDefinition[D, E], options ...DOTOptions,
) *DOTGenerator[D, E] {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	return &DOTGenerator[D, E]{
		def:     def,
		options: opts,
	}
}

// Generate creates a DOT representation of the table
func (g *DOTGenerator[D, E]) Generate() (string, error) {
	if g.def == nil {
		return "", statetable.ErrNilDefinition
	}

	var dot strings.Builder
	fmt.Fprintf(&dot, "digraph %q {\n", g.def.Name())
	fmt.Fprintf(&dot, "  rankdir=%s;\n", g.options.RankDirection)
	fmt.Fprintf(&dot, "  node [shape=%s];\n", g.options.NodeShape)
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateStates(&dot)
	dynamic := g.generateTransitions(&dot)
	if dynamic {
		fmt.Fprintf(&dot, "  %q [shape=circle style=dotted];\n", dynamicNode)
	}

	dot.WriteString("}\n")
	return dot.String(), nil
}

func (g *DOTGenerator[D, E]) generateStates(dot *strings.Builder) {
	initial := g.def.InitialState()
	dot.WriteString("  // States\n")
	for _, sd := range g.def.States() {
		shape := g.options.NodeShape
		fillColor := "lightblue"
		label := sd.Name()

		if sd.Name() == initial {
			fillColor = "lightgreen"
			label += "\\n(initial)"
		} else if isTerminal(sd) {
			shape = "doublecircle"
			fillColor = "lightcoral"
		}
		fmt.Fprintf(dot,
			"  %q [shape=%s style=\"filled\" fillcolor=%s label=\"%s\"];\n",
			sd.Name(), shape, fillColor, label)
	}
	dot.WriteString("\n")
}

func (g *DOTGenerator[D, E]) generateTransitions(dot *strings.Builder) bool {
	dynamic := false
	dot.WriteString("  // Transitions\n")
	for _, sd := range g.def.States() {
		for _, td := range sd.Transitions() {
			if g.generateEdges(dot, sd.Name(), td.Event(), td) {
				dynamic = true
			}
		}
		dt := sd.DefaultTransition()
		if (dt.IsFallback() && !g.options.ShowFallbacks) ||
			(!dt.IsFallback() && !g.options.ShowDefaults) {
			continue
		}
		if g.generateEdges(dot, sd.Name(), "*", dt) {
			dynamic = true
		}
	}
	return dynamic
}

func (g *DOTGenerator[D, E]) generateEdges(
	dot *strings.Builder, from, event string,
	td *statetable.TransitionDefinition[D, E],
) bool {
	label := event
	if g.options.ShowActors && len(td.Actors()) > 0 {
		label += " / " + strings.Join(td.ActorNames(), ", ")
	}

	switch td.Target() {
	case statetable.StayInState:
		g.edge(dot, from, from, label, g.options.SentinelStyle)
	case statetable.GoToPreviousState:
		g.edge(dot, from, from, label+" (previous)", g.options.SentinelStyle)
	case statetable.StateChangedByActor:
		targets := actorTargets(td)
		if len(targets) == 0 {
			g.edge(dot, from, dynamicNode, label, g.options.SentinelStyle)
			return true
		}
		for _, to := range targets {
			g.edge(dot, from, to, label, g.options.SentinelStyle)
		}
	default:
		g.edge(dot, from, td.Target(), label, g.options.TransitionStyle)
	}
	return false
}

func (g *DOTGenerator[D, E]) edge(
	dot *strings.Builder, from, to, label, style string,
) {
	fmt.Fprintf(dot, "  %q -> %q [label=%q style=%s];\n",
		from, to, label, style)
}

func actorTargets[D statetable.Data, E statetable.Event](
	td *statetable.TransitionDefinition[D, E],
) []string {
	var res []string
	for _, a := range td.Actors() {
		if tl, ok := a.(targetLister); ok {
			res = append(res, tl.Targets()...)
		}
	}
	return res
}

func isTerminal[D statetable.Data, E statetable.Event](
	sd *statetable.StateDefinition[D, E],
) bool {
	return len(sd.Events()) == 0 && sd.DefaultTransition().IsFallback()
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator[D, E]) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG renders the table to SVG by calling the Graphviz dot command
func (g *DOTGenerator[D, E]) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf(
			"failed to execute dot command: %w (make sure Graphviz is installed)",
			err)
	}
	return out.String(), nil
}
