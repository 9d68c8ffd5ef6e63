package flow

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalGraphEmpty(t *testing.T) {
	data, err := MarshalGraph(Graph{})
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"nodes": []`) || !strings.Contains(s, `"edges": []`) {
		t.Errorf("empty graph must serialize with empty arrays, got:\n%s", s)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "user-0", Kind: KindUser, Label: "User", Payload: Payload{Content: "hi", SourceMessageID: "u1"}},
			{ID: "assistant-0-0", Kind: KindAssistant, Label: "gpt",
				Position: Position{X: 300, Y: 120},
				Payload:  Payload{Content: "hello", ModelLabel: "gpt", SourceMessageID: "a1"}},
		},
		Edges: []Edge{
			{ID: "edge-user-0-to-assistant-0-0", Source: "user-0", Target: "assistant-0-0"},
		},
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	got, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if got.NodeCount() != 2 || got.EdgeCount() != 1 {
		t.Fatalf("round trip: %d nodes, %d edges", got.NodeCount(), got.EdgeCount())
	}
	n, ok := got.Node("assistant-0-0")
	if !ok || n.Position.X != 300 || n.Payload.ModelLabel != "gpt" {
		t.Errorf("assistant node lost data: %+v", n)
	}
}

func TestReadGraphInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "MalformedJSON",
			input: `{invalid}`,
		},
		{
			name: "DanglingEdge",
			input: `{
				"nodes": [{"id": "user-0", "kind": "user", "position": {"x":0,"y":0}, "payload": {"content":"", "source_message_id":"u1"}}],
				"edges": [{"id": "edge-user-0-to-assistant-0-0", "source": "user-0", "target": "assistant-0-0"}]
			}`,
			want: ErrInvalidEdgeEndpoint,
		},
		{
			name: "Cycle",
			input: `{
				"nodes": [
					{"id": "a", "kind": "user", "position": {"x":0,"y":0}, "payload": {"content":"", "source_message_id":"a"}},
					{"id": "b", "kind": "assistant", "position": {"x":0,"y":0}, "payload": {"content":"", "source_message_id":"b"}}
				],
				"edges": [
					{"id": "edge-a-to-b", "source": "a", "target": "b"},
					{"id": "edge-b-to-a", "source": "b", "target": "a"}
				]
			}`,
			want: ErrGraphHasCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "user-0", Kind: KindUser, Payload: Payload{SourceMessageID: "u1"}}},
		Edges: []Edge{},
	}

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if got.NodeCount() != 1 {
		t.Errorf("nodes = %d, want 1", got.NodeCount())
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLayoutDefaults(t *testing.T) {
	var l Layout // zero value falls back to defaults
	if got := l.UserPosition(1); got != (Position{X: 0, Y: 240}) {
		t.Errorf("UserPosition(1) = %+v, want (0,240)", got)
	}
	if got := l.AssistantPosition(1, 2); got != (Position{X: 900, Y: 360}) {
		t.Errorf("AssistantPosition(1,2) = %+v, want (900,360)", got)
	}
}

func TestNodeIDs(t *testing.T) {
	if got := UserNodeID(3); got != "user-3" {
		t.Errorf("UserNodeID(3) = %q", got)
	}
	if got := AssistantNodeID(2, 1); got != "assistant-2-1" {
		t.Errorf("AssistantNodeID(2,1) = %q", got)
	}
	if got := EdgeID("user-0", "assistant-0-0"); got != "edge-user-0-to-assistant-0-0" {
		t.Errorf("EdgeID = %q", got)
	}
}
