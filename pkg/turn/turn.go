// Package turn partitions an ordered message record sequence into
// conversational turns.
//
// A turn is one user message plus the assistant replies that follow it in
// document order. The document order of the source stream is treated as the
// causal order of the conversation.
package turn

import (
	"fmt"

	"github.com/convoflow/convoflow/pkg/message"
)

// Turn groups one user message with its assistant replies.
// Index is the position in the closed-turn list, not the scan position.
type Turn struct {
	Index      int
	User       message.Record
	Assistants []message.Record
}

// LastAssistant returns the final assistant record of the turn.
// ok is false when the turn has no assistants.
func (t Turn) LastAssistant() (message.Record, bool) {
	if len(t.Assistants) == 0 {
		return message.Record{}, false
	}
	return t.Assistants[len(t.Assistants)-1], true
}

// Group scans records in document order and produces the closed turns.
//
// A new turn opens on a user record; once it holds at least one assistant
// reply, the next user record closes it. Assistant records seen before any
// user record are discarded. A trailing turn that never received an
// assistant reply is discarded as well: it is still awaiting a reply and is
// not displayable.
//
// Records without a native id receive a deterministic fallback derived from
// the index the turn will have in the result ("user-0", "assistant-0-1", ...).
// The fallback is assigned when the record enters its turn, which matches the
// node id scheme used by the flow graph.
func Group(records []message.Record) []Turn {
	turns := make([]Turn, 0, len(records)/2)
	var open *Turn

	for _, rec := range records {
		switch {
		case rec.IsUser():
			if open != nil && len(open.Assistants) > 0 {
				turns = append(turns, *open)
			}
			// A user record before the open turn got a reply replaces it:
			// the earlier, unanswered user message is dropped.
			idx := len(turns)
			if rec.ID == "" {
				rec.ID = FallbackUserID(idx)
			}
			open = &Turn{Index: idx, User: rec}
		case rec.IsAssistant():
			if open == nil {
				continue // reply with no preceding user message
			}
			if rec.ID == "" {
				rec.ID = FallbackAssistantID(open.Index, len(open.Assistants))
			}
			open.Assistants = append(open.Assistants, rec)
		}
	}

	if open != nil && len(open.Assistants) > 0 {
		turns = append(turns, *open)
	}
	return turns
}

// FallbackUserID synthesizes the id for a user record lacking a native one.
// The scheme matches the flow graph node ids so identifiers stay stable
// within one build.
func FallbackUserID(turnIndex int) string {
	return fmt.Sprintf("user-%d", turnIndex)
}

// FallbackAssistantID synthesizes the id for an assistant record lacking a
// native one. branch is the 0-based position within the turn's replies.
func FallbackAssistantID(turnIndex, branch int) string {
	return fmt.Sprintf("assistant-%d-%d", turnIndex, branch)
}
