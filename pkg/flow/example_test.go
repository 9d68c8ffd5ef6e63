package flow_test

import (
	"fmt"

	"github.com/convoflow/convoflow/pkg/flow"
	"github.com/convoflow/convoflow/pkg/message"
)

// ExampleBuild shows the graph built for a short conversation with two
// parallel assistant replies in the first turn.
func ExampleBuild() {
	g := flow.Build([]message.Entry{
		{ID: "u1", Role: "user", Content: "compare these approaches"},
		{ID: "a1", Role: "assistant", Content: "first take", Model: "gpt-4"},
		{ID: "a2", Role: "assistant", Content: "second take", Model: "claude"},
		{ID: "u2", Role: "user", Content: "go deeper on the second"},
		{ID: "a3", Role: "assistant", Content: "in depth", Model: "claude"},
	})

	for _, n := range g.Nodes {
		fmt.Printf("%s (%.0f,%.0f)\n", n.ID, n.Position.X, n.Position.Y)
	}
	for _, e := range g.Edges {
		fmt.Printf("%s -> %s\n", e.Source, e.Target)
	}
	// Output:
	// user-0 (0,0)
	// assistant-0-0 (300,120)
	// assistant-0-1 (600,120)
	// user-1 (0,240)
	// assistant-1-0 (300,360)
	// user-0 -> assistant-0-0
	// assistant-0-0 -> assistant-0-1
	// assistant-0-1 -> user-1
	// user-1 -> assistant-1-0
}

// ExampleGraph_Empty shows the defined empty state for a conversation that
// has no closed turns yet.
func ExampleGraph_Empty() {
	g := flow.Build([]message.Entry{
		{ID: "u1", Role: "user", Content: "anyone there?"},
	})
	fmt.Println(g.Empty())
	// Output:
	// true
}
