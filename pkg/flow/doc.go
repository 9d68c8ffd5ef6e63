// Package flow builds the conversation flow graph: a directed acyclic graph
// whose nodes are the messages of a conversation and whose edges trace the
// causal order of turns.
//
// # Model
//
// One conversational turn contributes a user node plus one assistant node per
// reply branch. Turns stack vertically; parallel assistant replies within a
// turn fan out horizontally. Node identity is positional and deterministic
// ("user-0", "assistant-0-1", ...), so rebuilding from the same input yields
// a byte-identical graph.
//
// # Building
//
//	b := flow.Builder{}
//	g := b.Build(entries)
//	data, _ := flow.MarshalGraph(g)
//
// Build is pure and synchronous: no I/O, no shared state, no error path.
// Malformed input degrades per the rules in the message and turn packages,
// and an input that yields no closed turns produces the defined empty graph
// rather than an error.
package flow
