// Package cache provides caching for rendered artifacts and fetched
// conversations.
//
// Graphs themselves are never cached: a flow graph is recomputed from its
// conversation on every build, which keeps output deterministic and cheap.
// What is worth caching are the expensive edges of the pipeline:
//
//   - Source responses: conversation fetches from remote backends (MongoDB)
//   - Artifacts: rendered SVG/PNG bytes, keyed by graph content hash
//
// Two backends are provided: FileCache for CLI usage (XDG cache dir) and
// RedisCache for server deployments. NullCache disables caching entirely.
package cache

import (
	"context"
	"time"
)

// TTL values for different cache layers.
const (
	// TTLSource is how long fetched conversations stay cached.
	// Conversations can gain messages, so this is kept short.
	TTLSource = 15 * time.Minute

	// TTLArtifact is how long rendered artifacts stay cached.
	// Artifacts are keyed by graph content hash, so they never go stale;
	// the TTL only bounds disk usage.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface for cached bytes.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ArtifactKeyOpts captures the parameters that distinguish one rendered
// artifact from another built from the same graph.
type ArtifactKeyOpts struct {
	Format     string // Output format: "svg", "png", "dot", "json"
	LabelLimit int    // Message preview length baked into the output
}

// Keyer generates cache keys for the different cache layers.
type Keyer interface {
	// SourceKey generates a key for a fetched conversation.
	SourceKey(backend, conversationID string) string

	// ArtifactKey generates a key for a rendered artifact.
	// graphHash is the content hash of the serialized graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generation strategy.
// Keys are namespaced by layer and hashed to a fixed length.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SourceKey generates a key for a fetched conversation.
// Format: source:{backend}:{conversationID}
func (k *DefaultKeyer) SourceKey(backend, conversationID string) string {
	return "source:" + backend + ":" + conversationID
}

// ArtifactKey generates a key for a rendered artifact.
// Format: artifact:hash(graphHash, opts)
func (k *DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
