// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrUnavailable indicates that no embedder is configured or the
// configured one failed. Callers degrade to static-only analysis;
// they never treat this as fatal.
var ErrUnavailable = errors.New("embedder unavailable")

// Request is one artifact to embed.
type Request struct {
	// Key is the canonical grid key of the artifact.
	Key string `json:"key"`

	// Model is the embedding model to use (models.doc_model or
	// models.code_model depending on artifact class).
	Model string `json:"model"`

	// Text is the artifact content to embed.
	Text string `json:"text"`
}

// Embedder produces one vector per request, in request order.
type Embedder interface {
	Embed(ctx context.Context, requests []Request) ([][]float32, error)
}

// CommandEmbedder shells out to an external embedding command
// (models.embedder_command). The protocol: a JSON array of requests on
// stdin, a JSON array of float arrays on stdout, one per request, in
// order. Any failure — missing binary, non-zero exit, malformed
// output, wrong dimension — wraps [ErrUnavailable].
type CommandEmbedder struct {
	// Command is the embedder invocation, split on whitespace: the
	// first field is the executable, the rest fixed arguments.
	Command string

	// Dim is the vector dimension every response row must have.
	Dim int
}

// Embed runs the external command on the batch. Respects ctx for
// cancellation and timeouts.
func (e *CommandEmbedder) Embed(ctx context.Context, requests []Request) ([][]float32, error) {
	if strings.TrimSpace(e.Command) == "" {
		return nil, fmt.Errorf("embed: no embedder command configured: %w", ErrUnavailable)
	}
	if len(requests) == 0 {
		return nil, nil
	}

	input, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("embed: marshal requests: %w", err)
	}

	fields := strings.Fields(e.Command)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, fields[0], fields[1:]...)
	command.Stdin = bytes.NewReader(input)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("embed: %s: %v (stderr: %s): %w",
			fields[0], err, strings.TrimSpace(stderr.String()), ErrUnavailable)
	}

	var vectors [][]float32
	if err := json.Unmarshal(stdout.Bytes(), &vectors); err != nil {
		return nil, fmt.Errorf("embed: %s: malformed output: %v: %w", fields[0], err, ErrUnavailable)
	}
	if len(vectors) != len(requests) {
		return nil, fmt.Errorf("embed: %s: %d vectors for %d requests: %w",
			fields[0], len(vectors), len(requests), ErrUnavailable)
	}
	for i, vector := range vectors {
		if len(vector) != e.Dim {
			return nil, fmt.Errorf("embed: %s: vector %d has %d dimensions, want %d: %w",
				fields[0], i, len(vector), e.Dim, ErrUnavailable)
		}
	}
	return vectors, nil
}
