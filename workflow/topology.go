package workflow

import (
	"fmt"
	"strings"
)

// Edge is one directed edge of the fixed pipeline topology.
type Edge struct {
	From      string
	To        string
	Condition string
}

// Topology returns the fixed pipeline graph: a linear chain with
// exactly one feedback edge from the gate back to the draft stage.
func Topology() []Edge {
	return []Edge{
		{From: "research", To: "draft"},
		{From: "draft", To: "format"},
		{From: "format", To: "metadata"},
		{From: "metadata", To: "gate"},
		{From: "gate", To: "publish", Condition: "approved / force_published"},
		{From: "gate", To: "draft", Condition: "rejected"},
	}
}

// Mermaid renders the topology as Mermaid flowchart source, the same
// picture the run would walk, without executing anything.
func Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, e := range Topology() {
		if e.Condition != "" {
			fmt.Fprintf(&b, "    %s -->|%s| %s\n", e.From, e.Condition, e.To)
			continue
		}
		fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
	}
	return b.String()
}
