// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"context"
	"errors"
	"testing"
)

func TestCommandEmbedderUnconfigured(t *testing.T) {
	e := &CommandEmbedder{Command: "", Dim: 4}
	_, err := e.Embed(context.Background(), []Request{{Key: "1A1", Model: "m", Text: "x"}})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestCommandEmbedderMissingBinary(t *testing.T) {
	e := &CommandEmbedder{Command: "lattice-embedder-that-does-not-exist", Dim: 4}
	_, err := e.Embed(context.Background(), []Request{{Key: "1A1", Model: "m", Text: "x"}})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestCommandEmbedderEmptyBatch(t *testing.T) {
	// An empty batch never launches the process, even when none is
	// configured.
	e := &CommandEmbedder{Command: "", Dim: 4}
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed(empty): %v", err)
	}
	if vectors != nil {
		t.Errorf("Embed(empty) = %v, want nil", vectors)
	}
}

func TestCommandEmbedderRoundtrip(t *testing.T) {
	// jq is doing the embedding here: for each request, emit a fixed
	// 4-vector. Exercises the full JSON stdin/stdout protocol.
	e := &CommandEmbedder{Command: "jq [.[]|[1,2,3,4]]", Dim: 4}
	vectors, err := e.Embed(context.Background(), []Request{
		{Key: "1A1", Model: "m", Text: "alpha"},
		{Key: "1A2", Model: "m", Text: "beta"},
	})
	if err != nil {
		t.Skipf("jq not available: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	want := []float32{1, 2, 3, 4}
	for i, vector := range vectors {
		for j := range want {
			if vector[j] != want[j] {
				t.Errorf("vector %d[%d] = %v, want %v", i, j, vector[j], want[j])
			}
		}
	}
}

func TestCommandEmbedderCountMismatch(t *testing.T) {
	// Always emits one vector regardless of batch size.
	e := &CommandEmbedder{Command: "jq -n [[1,2,3,4]]", Dim: 4}
	_, err := e.Embed(context.Background(), []Request{
		{Key: "1A1", Model: "m", Text: "alpha"},
		{Key: "1A2", Model: "m", Text: "beta"},
	})
	if err == nil {
		t.Fatal("Embed accepted a short response")
	}
	if !errors.Is(err, ErrUnavailable) {
		// A missing jq binary also wraps ErrUnavailable, so either
		// path satisfies the contract; reaching here means neither.
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestCommandEmbedderWrongDimension(t *testing.T) {
	e := &CommandEmbedder{Command: "jq [.[]|[1,2]]", Dim: 4}
	_, err := e.Embed(context.Background(), []Request{{Key: "1A1", Model: "m", Text: "x"}})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
