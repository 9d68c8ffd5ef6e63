package flow

import (
	"github.com/convoflow/convoflow/pkg/message"
	"github.com/convoflow/convoflow/pkg/turn"
)

// Builder composes extraction, turn grouping, layout, and edge derivation
// into a single build step. The zero value uses the default layout and
// generic fallback labels.
//
// A Builder holds no state between builds and is safe for concurrent use.
type Builder struct {
	Layout Layout
	Labels message.Labels
}

// Build constructs the flow graph for an ordered stream of raw entries.
//
// An empty or nil stream, or one that yields no closed turns, produces the
// defined empty graph (non-nil empty node and edge slices), never an error.
// Building twice from the same input produces structurally identical graphs.
func (b Builder) Build(entries []message.Entry) Graph {
	labels := b.Labels
	if labels == (message.Labels{}) {
		labels = message.DefaultLabels()
	}
	records := message.Extract(entries, labels)
	return b.FromTurns(turn.Group(records))
}

// FromTurns constructs the flow graph for already-grouped turns.
// Node order is document order: each turn's user node followed by its
// assistant branches.
func (b Builder) FromTurns(turns []turn.Turn) Graph {
	labels := b.Labels
	if labels == (message.Labels{}) {
		labels = message.DefaultLabels()
	}
	layout := b.Layout.normalized()

	nodes := make([]Node, 0, len(turns)*2)
	for i, t := range turns {
		nodes = append(nodes, Node{
			ID:       UserNodeID(i),
			Kind:     KindUser,
			Label:    labels.UserLabel(),
			Position: layout.UserPosition(i),
			Payload: Payload{
				Content:         t.User.Content,
				SourceMessageID: t.User.ID,
			},
		})

		for k, a := range t.Assistants {
			nodes = append(nodes, Node{
				ID:       AssistantNodeID(i, k),
				Kind:     KindAssistant,
				Label:    a.ModelLabel,
				Position: layout.AssistantPosition(i, k),
				Payload: Payload{
					Content:         a.Content,
					ModelLabel:      a.ModelLabel,
					SourceMessageID: a.ID,
				},
			})
		}
	}

	return Graph{Nodes: nodes, Edges: deriveEdges(turns)}
}

// Build constructs a flow graph with the default layout and labels.
func Build(entries []message.Entry) Graph {
	return Builder{}.Build(entries)
}
