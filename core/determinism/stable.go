// Package determinism provides primitives for guaranteeing deterministic
// output: content hashes, stable IDs, and canonical serialization.
// Snapshot and catalog identity must flow through these, never through
// wall-clock time or random values.
package determinism

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the truncated hex form used in identifiers
func (h ContentHash) Short() string {
	return h.Hex()[:16]
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Short() + "..."
}

// StableID is a hash-based identifier that is deterministic across runs
type StableID string

// IDGenerator generates stable, namespaced IDs
type IDGenerator struct {
	namespace string
}

// NewIDGenerator creates an ID generator with a namespace
func NewIDGenerator(namespace string) *IDGenerator {
	return &IDGenerator{namespace: namespace}
}

// Generate creates a stable ID from inputs
func (g *IDGenerator) Generate(parts ...string) StableID {
	h := sha256.New()
	h.Write([]byte(g.namespace))
	h.Write([]byte{0}) // Separator
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0}) // Separator
	}
	return StableID(hex.EncodeToString(h.Sum(nil))[:16])
}

// CanonicalJSON serializes a value to deterministic JSON: struct fields in
// declaration order, map keys sorted (encoding/json guarantees both), no
// trailing newline, no HTML escaping. Two equal values always produce
// byte-identical output.
func CanonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// HashJSON is CanonicalJSON followed by ComputeHash.
func HashJSON(v any) (ContentHash, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return ContentHash{}, err
	}
	return ComputeHash(data), nil
}
