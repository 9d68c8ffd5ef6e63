package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a namespaced cache key from structured parts, e.g. a graph
// hash plus render options for an artifact key. The parts are JSON-encoded
// so option structs key deterministically.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data. Graph content hashes keep the full
// 64 characters so distinct graphs cannot collide on an artifact key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
