// Package message normalizes raw conversation-surface entries into message
// records consumed by the turn grouping and flow graph stages.
//
// A conversation surface (file export, database, API) hands over an ordered
// slice of [Entry] values. Extract turns them into [Record]s, skipping
// anything that is neither a user nor an assistant message. Extraction never
// fails: missing content becomes the empty string, a missing assistant model
// label falls back to the label set supplied by the caller, and a missing id
// is left empty so the grouping stage can synthesize a deterministic one.
package message

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message written by the human participant.
	RoleUser Role = "user"
	// RoleAssistant marks a model reply.
	RoleAssistant Role = "assistant"
)

// Entry is the raw shape a conversation surface exposes per message.
// Only Role is required; everything else degrades to a fallback.
type Entry struct {
	ID      string `json:"id,omitempty" bson:"id,omitempty"`
	Role    string `json:"role" bson:"role"`
	Content string `json:"content,omitempty" bson:"content,omitempty"`
	Model   string `json:"model,omitempty" bson:"model,omitempty"`
}

// Record is a normalized message. Immutable once extracted; downstream
// stages reference records but never modify them.
type Record struct {
	ID         string // empty when the surface supplied none
	Role       Role
	Content    string
	ModelLabel string // assistant messages only
}

// IsUser reports whether the record is a user message.
func (r Record) IsUser() bool { return r.Role == RoleUser }

// IsAssistant reports whether the record is an assistant message.
func (r Record) IsAssistant() bool { return r.Role == RoleAssistant }

// Labels supplies fallback display names when the source data omits them.
// The zero value is usable; empty fields fall back to the role name.
type Labels struct {
	User      string
	Assistant string
}

// DefaultLabels returns the generic english fallback labels.
func DefaultLabels() Labels {
	return Labels{User: "User", Assistant: "Assistant"}
}

// AssistantLabel returns the fallback label for assistant messages.
func (l Labels) AssistantLabel() string {
	if l.Assistant != "" {
		return l.Assistant
	}
	return string(RoleAssistant)
}

// UserLabel returns the fallback label for user messages.
func (l Labels) UserLabel() string {
	if l.User != "" {
		return l.User
	}
	return string(RoleUser)
}

// Extract converts raw entries into records in document order.
//
// Entries whose role tag is neither "user" nor "assistant" are dropped.
// Assistant entries without a model label receive the fallback from labels.
// Extract never returns an error; malformed entries are skipped, not fatal.
func Extract(entries []Entry, labels Labels) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		switch Role(e.Role) {
		case RoleUser:
			records = append(records, Record{
				ID:      e.ID,
				Role:    RoleUser,
				Content: e.Content,
			})
		case RoleAssistant:
			model := e.Model
			if model == "" {
				model = labels.AssistantLabel()
			}
			records = append(records, Record{
				ID:         e.ID,
				Role:       RoleAssistant,
				Content:    e.Content,
				ModelLabel: model,
			})
		}
	}
	return records
}
