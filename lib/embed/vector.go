// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"encoding/binary"
	"math"
)

// Cosine returns the cosine similarity of two vectors, clamped to
// [0, 1]. Negative cosine (vectors pointing apart) clamps to 0 —
// for dependency scoring, "opposed" and "unrelated" mean the same
// thing. Mismatched dimensions or a zero-magnitude input also
// produce 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		// Floating-point accumulation can push marginally past 1.
		return 1
	}
	return similarity
}

// vectorToBytes serializes a float32 vector as little-endian bytes.
func vectorToBytes(vector []float32) []byte {
	result := make([]byte, len(vector)*4)
	for i, value := range vector {
		binary.LittleEndian.PutUint32(result[i*4:], math.Float32bits(value))
	}
	return result
}

// bytesToVector deserializes little-endian bytes into a float32
// vector. The length must be a multiple of 4; callers validate via
// the vector file header before reaching here.
func bytesToVector(data []byte) []float32 {
	result := make([]float32, len(data)/4)
	for i := range result {
		result[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return result
}
