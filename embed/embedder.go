// Package embed produces vector embeddings for chunk content.
//
// Information Hiding:
// - Embedding provider APIs hidden behind the Embedder interface
// - Vector wire encoding hidden behind EncodeVector/DecodeVector
package embed

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// Embedder turns chunk content into a vector embedding.
//
// Implementations hide provider client setup, request shaping, and error
// handling. A failed embedding fails only the chunk being embedded, never a
// whole batch; callers enforce that policy.
type Embedder interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Embed produces a vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EncodeVector serializes an embedding as little-endian float32 bytes for
// blob storage. A nil vector encodes to nil.
func EncodeVector(vec []float32) []byte {
	if vec == nil {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector deserializes a blob produced by EncodeVector.
func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
