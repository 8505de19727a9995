// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolErrorUnwrap(t *testing.T) {
	inner := errors.New("tracker not found")
	wrapped := NotFound("loading tracker: %w", inner)
	if !errors.Is(wrapped, inner) {
		t.Fatal("errors.Is should reach the wrapped error")
	}
	var toolErr *ToolError
	if !errors.As(fmt.Errorf("outer: %w", wrapped), &toolErr) {
		t.Fatal("errors.As should find the ToolError through wrapping")
	}
	if toolErr.Category != CategoryNotFound {
		t.Fatalf("category = %s, want not_found", toolErr.Category)
	}
}

func TestErrorEnvelope(t *testing.T) {
	env := ErrorEnvelope(Conflict("cell (1A1, 1B2) disagrees").WithCode("CONFLICT_ON_MERGE"))
	if env.Status != "error" || env.Code != "CONFLICT_ON_MERGE" || env.Category != CategoryConflict {
		t.Fatalf("envelope = %+v", env)
	}

	plain := ErrorEnvelope(errors.New("disk full"))
	if plain.Category != CategoryInternal || plain.Code != "" {
		t.Fatalf("uncategorized error should map to internal: %+v", plain)
	}
}

func TestSuccessEnvelopeNormalizesNilSlice(t *testing.T) {
	var entries []string
	env := Success("no keys", entries)
	data, ok := env.Data.([]string)
	if !ok || data == nil {
		t.Fatalf("nil slice should become an empty slice, got %#v", env.Data)
	}
}
