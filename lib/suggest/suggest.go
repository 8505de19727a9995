// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package suggest proposes dependency characters for unresolved
// tracker cells. Evidence is consulted in fixed order per cell:
// static references extracted from artifact content, the structural
// containment rule for doc trackers, and finally embedding cosine
// similarity. Every write goes through the grid's lattice update, so
// verified characters and the diagonal are never touched and a
// re-run over unchanged inputs proposes nothing.
package suggest

import (
	"fmt"
	"path"

	"github.com/bureau-foundation/lattice/lib/grid"
	"github.com/bureau-foundation/lattice/lib/tracker"
)

// Source is the analysis view of one tracked artifact. The zero value
// (unknown key) contributes no static evidence and is skipped by the
// semantic pass.
type Source struct {
	// IsDoc marks documentation artifacts: their outgoing references
	// propose DocLink rather than a directed dependency, and their
	// rows score against the doc similarity threshold.
	IsDoc bool
	// IsDir marks directory keys. Directories have no content to
	// embed; in doc trackers they contribute the containment rule.
	IsDir bool
	// Refs is the set of project-relative paths the artifact
	// references (imports, links).
	Refs map[string]bool
}

// Similarity scores the semantic closeness of two artifacts in [0,1].
// *embed.Store satisfies this.
type Similarity interface {
	Similarity(keyA, keyB string) (float64, error)
}

// Policy carries the engine thresholds and verification rules,
// usually derived from the project settings.
type Policy struct {
	// StrongDoc and StrongCode are the strong-suggestion cosine
	// thresholds per row class. A score within WeakMargin below the
	// strong threshold proposes Weak instead.
	StrongDoc  float64
	StrongCode float64
	WeakMargin float64

	// StaticVerified writes static-reference hits as verified
	// characters. When false they degrade to Strong suggestions for
	// later review.
	StaticVerified bool
	// StructuralVerified does the same for the doc-tracker
	// containment rule.
	StructuralVerified bool
}

// Reason classifies the evidence behind a proposed character.
type Reason string

const (
	// ReasonStatic is a reference extracted from artifact content.
	ReasonStatic Reason = "static-ref"
	// ReasonStructural is the doc-tracker containment rule: a
	// directory links the artifacts directly inside it.
	ReasonStructural Reason = "doc-structure"
	// ReasonSemantic is an embedding cosine score over threshold.
	ReasonSemantic Reason = "semantic"
)

// Change records one applied cell update.
type Change struct {
	Row    string    `json:"row"`
	Col    string    `json:"col"`
	Old    grid.Char `json:"old"`
	New    grid.Char `json:"new"`
	Reason Reason    `json:"reason"`
	// Score is the cosine similarity for semantic changes, 0
	// otherwise.
	Score float64 `json:"score,omitempty"`
}

// Result is the outcome of one engine run.
type Result struct {
	// Changes lists applied updates in grid order (row-major).
	Changes []Change `json:"changes"`
	// Degraded reports that no similarity source was available and
	// the run used static evidence only.
	Degraded bool `json:"degraded,omitempty"`
}

// Engine proposes characters for one tracker at a time.
type Engine struct {
	Policy Policy
	// Similarity is the semantic scorer. nil degrades the run to
	// static evidence only.
	Similarity Similarity
}

// Run examines every unresolved cell of t and applies the most
// specific supported character through the grid's lattice update.
// sources is keyed by tracker key; keys without an entry contribute
// no evidence but still receive directed characters from artifacts
// that reference them.
func (e *Engine) Run(t *tracker.Tracker, sources map[string]Source) (*Result, error) {
	res := &Result{Degraded: e.Similarity == nil}
	keys := t.Keys()
	for _, row := range keys {
		rowSrc, rowKnown := sources[row]
		rowPath, _ := t.PathFor(row)
		for _, col := range keys {
			if row == col {
				continue
			}
			cur, err := t.Cell(row, col)
			if err != nil {
				return nil, fmt.Errorf("suggest: %w", err)
			}
			if cur.IsVerified() {
				continue
			}
			colSrc, colKnown := sources[col]
			colPath, _ := t.PathFor(col)

			ch := e.staticChar(rowSrc, colSrc, rowPath, colPath)
			reason := ReasonStatic
			if ch == 0 && t.Kind == tracker.Doc {
				ch = e.structuralChar(rowSrc, rowPath, colPath)
				reason = ReasonStructural
			}
			score := 0.0
			if ch == 0 && rowKnown && colKnown {
				ch, score, err = e.semanticChar(row, col, rowSrc, colSrc)
				if err != nil {
					return nil, err
				}
				reason = ReasonSemantic
			}
			if ch == 0 {
				continue
			}
			changed, err := t.Grid().Suggest(row, col, ch)
			if err != nil {
				return nil, fmt.Errorf("suggest: %w", err)
			}
			if changed {
				res.Changes = append(res.Changes, Change{
					Row: row, Col: col,
					Old: cur, New: ch,
					Reason: reason, Score: score,
				})
			}
		}
	}
	return res, nil
}

// staticChar derives a character from extracted references. Row
// references col proposes DependsOn, the reverse proposes RequiredBy,
// both propose Mutual. Documentation artifacts propose DocLink for
// their references instead; DocLink carries no direction, so a
// reciprocal doc pair stays DocLink.
func (e *Engine) staticChar(rowSrc, colSrc Source, rowPath, colPath string) grid.Char {
	rowRefs := rowPath != "" && rowSrc.Refs[colPath]
	colRefs := colPath != "" && colSrc.Refs[rowPath]
	var ch grid.Char
	switch {
	case rowRefs && colRefs:
		ch = grid.Mutual
		if rowSrc.IsDoc && colSrc.IsDoc {
			ch = grid.DocLink
		}
	case rowRefs:
		ch = grid.DependsOn
		if rowSrc.IsDoc {
			ch = grid.DocLink
		}
	case colRefs:
		ch = grid.RequiredBy
		if colSrc.IsDoc {
			ch = grid.DocLink
		}
	default:
		return 0
	}
	if !e.Policy.StaticVerified {
		ch = grid.Strong
	}
	return ch
}

// structuralChar applies the doc-tracker containment rule: a
// directory key links the artifacts directly inside it.
func (e *Engine) structuralChar(rowSrc Source, rowPath, colPath string) grid.Char {
	if !rowSrc.IsDir || rowPath == "" || colPath == "" {
		return 0
	}
	if path.Dir(colPath) != rowPath {
		return 0
	}
	if !e.Policy.StructuralVerified {
		return grid.Strong
	}
	return grid.DocLink
}

// semanticChar scores the pair against the row artifact's threshold
// class. Directory keys are skipped; they have nothing embedded.
func (e *Engine) semanticChar(row, col string, rowSrc, colSrc Source) (grid.Char, float64, error) {
	if e.Similarity == nil || rowSrc.IsDir || colSrc.IsDir {
		return 0, 0, nil
	}
	score, err := e.Similarity.Similarity(row, col)
	if err != nil {
		return 0, 0, fmt.Errorf("suggest: score %s against %s: %w", row, col, err)
	}
	strong := e.Policy.StrongCode
	if rowSrc.IsDoc {
		strong = e.Policy.StrongDoc
	}
	switch {
	case score >= strong:
		return grid.Strong, score, nil
	case score >= strong-e.Policy.WeakMargin:
		return grid.Weak, score, nil
	}
	return 0, 0, nil
}
