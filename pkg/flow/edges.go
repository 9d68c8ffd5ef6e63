package flow

import "github.com/convoflow/convoflow/pkg/turn"

// deriveEdges produces the edge set for the given closed turns.
//
// Three rules, applied in order per turn:
//
//  1. The last assistant node of the previous turn connects to this turn's
//     user node. Closed turns always carry at least one assistant, but the
//     edge is simply omitted if one does not, rather than failing.
//  2. The user node connects to the first assistant branch.
//  3. Each further branch k receives an edge from branch k-1, chaining
//     parallel replies sequentially instead of starring them off the user.
//
// The derivation is a pure function of the turn list, so identical input
// yields an identical edge sequence.
func deriveEdges(turns []turn.Turn) []Edge {
	edges := make([]Edge, 0, len(turns)*2)

	for i, t := range turns {
		userID := UserNodeID(i)

		if i > 0 {
			prev := turns[i-1]
			if n := len(prev.Assistants); n > 0 {
				lastID := AssistantNodeID(i-1, n-1)
				edges = append(edges, newEdge(lastID, userID))
			}
		}

		for k := range t.Assistants {
			target := AssistantNodeID(i, k)
			if k == 0 {
				edges = append(edges, newEdge(userID, target))
			} else {
				edges = append(edges, newEdge(AssistantNodeID(i, k-1), target))
			}
		}
	}

	return edges
}

func newEdge(source, target string) Edge {
	return Edge{ID: EdgeID(source, target), Source: source, Target: target}
}
