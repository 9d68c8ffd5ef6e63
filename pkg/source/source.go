// Package source provides conversation backends for the flow pipeline.
//
// A Source hands the pipeline the ordered message stream of a conversation.
// Two backends are provided: FileSource reads JSON transcript exports from a
// directory, and MongoSource reads conversations from a MongoDB collection.
// CachedSource wraps any backend with a read-through cache for remote
// backends where fetches are expensive.
package source

import (
	"context"

	"github.com/convoflow/convoflow/pkg/message"
)

// Info describes a conversation without its messages, for listings and
// interactive pickers.
type Info struct {
	ID           string `json:"id" bson:"id"`
	Title        string `json:"title,omitempty" bson:"title,omitempty"`
	MessageCount int    `json:"message_count,omitempty" bson:"message_count,omitempty"`
}

// Source is a backend that stores conversations.
// Implementations must be safe for concurrent use.
type Source interface {
	// Fetch returns the ordered message stream of a conversation.
	// Returns an error with code CONVERSATION_NOT_FOUND when the id is unknown.
	Fetch(ctx context.Context, conversationID string) ([]message.Entry, error)

	// List enumerates available conversations.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Transcript is the on-disk and over-the-wire shape of a stored conversation.
type Transcript struct {
	ID       string          `json:"id,omitempty" bson:"id,omitempty"`
	Title    string          `json:"title,omitempty" bson:"title,omitempty"`
	Messages []message.Entry `json:"messages" bson:"messages"`
}
