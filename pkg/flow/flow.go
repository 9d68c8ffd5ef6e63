package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Node kinds.
const (
	KindUser      = "user"
	KindAssistant = "assistant"
)

// ErrGraphHasCycle is returned by [Graph.Validate] when a cycle is detected.
// A correctly derived flow graph is always acyclic.
var ErrGraphHasCycle = errors.New("graph contains a cycle")

// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
// references a node id that does not exist in the graph.
var ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

// Position is a 2-D layout coordinate in arbitrary layout units.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Payload carries the message data a rendering surface needs to display a
// node and to navigate back to the source message on click.
type Payload struct {
	Content         string `json:"content" bson:"content"`
	ModelLabel      string `json:"model_label,omitempty" bson:"model_label,omitempty"`
	SourceMessageID string `json:"source_message_id" bson:"source_message_id"`
}

// Node is one message in the flow graph.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Kind     string   `json:"kind" bson:"kind"`
	Label    string   `json:"label,omitempty" bson:"label,omitempty"`
	Position Position `json:"position" bson:"position"`
	Payload  Payload  `json:"payload" bson:"payload"`
}

// IsUser reports whether the node represents a user message.
func (n Node) IsUser() bool { return n.Kind == KindUser }

// IsAssistant reports whether the node represents an assistant reply.
func (n Node) IsAssistant() bool { return n.Kind == KindAssistant }

// Edge is a directed connection between two nodes, referencing them by id.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// Graph is the sole artifact handed to a rendering surface.
// A graph is rebuilt wholesale per invocation and never mutated afterwards.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Empty reports whether the graph holds no nodes. Rendering surfaces must
// present this as an explicit "nothing to show" state, not a blank canvas.
func (g Graph) Empty() bool { return len(g.Nodes) == 0 }

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the node with the given id and true, or a zero node and false.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// InDegree returns the number of edges targeting the node.
func (g Graph) InDegree(id string) int {
	count := 0
	for _, e := range g.Edges {
		if e.Target == id {
			count++
		}
	}
	return count
}

// OutDegree returns the number of edges leaving the node.
func (g Graph) OutDegree(id string) int {
	count := 0
	for _, e := range g.Edges {
		if e.Source == id {
			count++
		}
	}
	return count
}

// Validate checks graph integrity: every edge must reference existing nodes
// and the edge set must be acyclic. The builder produces valid graphs by
// construction; Validate guards graphs read back from serialized form.
func (g Graph) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	out := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("edge %s: %w", e.ID, ErrInvalidEdgeEndpoint)
		}
		out[e.Source] = append(out[e.Source], e.Target)
	}
	return detectCycles(ids, out)
}

func detectCycles(ids map[string]bool, out map[string][]string) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(ids))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, next := range out[id] {
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for id := range ids {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// =============================================================================
// Node and edge identity
// =============================================================================

// UserNodeID returns the deterministic id of a turn's user node.
func UserNodeID(turnIndex int) string {
	return fmt.Sprintf("user-%d", turnIndex)
}

// AssistantNodeID returns the deterministic id of an assistant branch node.
func AssistantNodeID(turnIndex, branch int) string {
	return fmt.Sprintf("assistant-%d-%d", turnIndex, branch)
}

// EdgeID derives an edge id from its endpoint ids. Unique node ids guarantee
// unique edge ids.
func EdgeID(source, target string) string {
	return fmt.Sprintf("edge-%s-to-%s", source, target)
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalGraph serializes a graph to pretty-printed JSON bytes.
// Node and edge order is the deterministic build order, so identical graphs
// marshal to identical bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph deserializes JSON bytes into a graph and validates it.
func UnmarshalGraph(data []byte) (Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// WriteGraph writes a graph as JSON to w.
func WriteGraph(g Graph, w io.Writer) error {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r and validates it.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// WriteGraphFile writes a graph to a JSON file with 0644 permissions.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraphFile reads a graph from a JSON file.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
