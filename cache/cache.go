/*
Package cache provides the deterministic result cache.

PURPOSE:
  Every calculator is pure, so identical inputs always produce identical
  results. That makes results safely cacheable: the cache key is a SHA-256
  digest of the calculator kind plus the canonical JSON encoding of the
  input, and a hit returns the stored result bytes verbatim.

IMPLEMENTATIONS:
  Memory: process-local map with TTL, for tests and single-node runs
  Redis:  shared cache for multi-node deployments

CACHE MISSES ARE NEVER ERRORS:
  A broken cache degrades to recomputation. Callers treat (nil, false, err)
  and (nil, false, nil) the same way: run the calculator.
*/
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores serialized calculation results keyed by input digest.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives the cache key for a calculator input: the kind namespaces the
// digest so identical payloads to different calculators never collide. Go's
// JSON encoder emits struct fields in declaration order, so encoding the
// same input value always yields the same bytes.
func Key(kind string, input any) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache input: %w", err)
	}
	sum := sha256.Sum256(append([]byte(kind+":"), payload...))
	return kind + ":" + hex.EncodeToString(sum[:]), nil
}
