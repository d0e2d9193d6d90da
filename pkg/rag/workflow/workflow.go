// Package workflow implements the graded, self-correcting answering engine:
// retrieve → grade documents → (search web) → generate, with a groundedness
// gate and a usefulness gate behind every generation.
package workflow

import (
	"context"
	"fmt"
	"log"

	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/rag"
	"ai-notes-rag-be/pkg/rag/generate"
	"ai-notes-rag-be/pkg/rag/grader"
	"ai-notes-rag-be/pkg/rag/retrieve"
)

// DefaultMaxCycles bounds full generate cycles. The reference control flow
// has no cap and can in principle loop generate↔search forever on an answer
// that never passes both gates; the bound converts that into a reported
// rag.ErrMaxRetriesExceeded with the last answer flagged unverified.
const DefaultMaxCycles = 3

// DefaultMaxResults is how many evidence items are requested per query.
const DefaultMaxResults = 5

type nodeState int

const (
	stateRetrieve nodeState = iota
	stateGradeDocuments
	stateSearchWeb
	stateGenerate
	stateDone
)

func (s nodeState) String() string {
	switch s {
	case stateRetrieve:
		return "RETRIEVE"
	case stateGradeDocuments:
		return "GRADE_DOCUMENTS"
	case stateSearchWeb:
		return "SEARCH_WEB"
	case stateGenerate:
		return "GENERATE"
	case stateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// runState is the mutable record threaded through one request. It is
// created per call and discarded with the response.
type runState struct {
	query          string
	answer         string
	needsWebSearch bool
	evidence       []rag.EvidenceItem
}

// Engine sequences the graded pipeline. One call runs one request's state
// machine as a single logical sequence; grading is sequential and result
// order of the filtered evidence set is preserved.
type Engine struct {
	retriever  *retrieve.Retriever
	grader     *grader.Grader
	generator  *generate.Generator
	webSearch  rag.WebSearch // nil when the capability is unconfigured
	maxResults int
	maxCycles  int
	logger     *log.Logger
}

var _ rag.Strategy = (*Engine)(nil)

// Option customizes an Engine.
type Option func(*Engine)

// WithWebSearch enables the optional evidence-widening capability.
func WithWebSearch(ws rag.WebSearch) Option {
	return func(e *Engine) { e.webSearch = ws }
}

// WithMaxResults overrides how many evidence items are retrieved.
func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

// WithMaxCycles overrides the generate-cycle bound.
func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxCycles = n
		}
	}
}

// New assembles a graded engine from its collaborators.
func New(retriever *retrieve.Retriever, g *grader.Grader, gen *generate.Generator, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		retriever:  retriever,
		grader:     g,
		generator:  gen,
		maxResults: DefaultMaxResults,
		maxCycles:  DefaultMaxCycles,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer runs the state machine to a terminal answer. The conversation
// window is accepted for interface parity but the graded pipeline grounds
// every answer in retrieved evidence only.
//
// Transition table:
//
//	Retrieve        → GradeDocuments
//	GradeDocuments  → SearchWeb   (any item graded not relevant)
//	GradeDocuments  → Generate    (all relevant, or no evidence)
//	SearchWeb       → Generate
//	Generate        → Generate    (not grounded)
//	Generate        → SearchWeb   (grounded, not useful)
//	Generate        → Done        (grounded and useful)
func (e *Engine) Answer(ctx context.Context, query string, _ []llm.Message) (*rag.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", rag.ErrInvalidInput)
	}

	st := &runState{query: query}
	node := stateRetrieve
	cycles := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.logger.Printf("[WORKFLOW] ---%s---", node)

		switch node {
		case stateRetrieve:
			st.evidence = e.retriever.Retrieve(ctx, st.query, e.maxResults)
			node = stateGradeDocuments

		case stateGradeDocuments:
			if err := e.gradeDocuments(ctx, st); err != nil {
				return nil, err
			}
			if st.needsWebSearch {
				node = stateSearchWeb
			} else {
				node = stateGenerate
			}

		case stateSearchWeb:
			if err := e.searchWeb(ctx, st); err != nil {
				return nil, err
			}
			node = stateGenerate

		case stateGenerate:
			cycles++
			if cycles > e.maxCycles {
				e.logger.Printf("[WORKFLOW] Cycle bound (%d) exceeded, returning unverified answer", e.maxCycles)
				return &rag.Result{Answer: st.answer, Evidence: st.evidence, Unverified: true},
					rag.ErrMaxRetriesExceeded
			}
			next, err := e.generateAndGrade(ctx, st)
			if err != nil {
				return nil, err
			}
			node = next

		case stateDone:
			return &rag.Result{Answer: st.answer, Evidence: st.evidence}, nil
		}
	}
}

// gradeDocuments drops evidence graded not relevant and marks the run for
// web search when at least one item was dropped. Order of survivors is
// unchanged.
func (e *Engine) gradeDocuments(ctx context.Context, st *runState) error {
	kept := st.evidence[:0:0]
	dropped := 0
	for _, item := range st.evidence {
		relevant, err := e.grader.GradeRelevance(ctx, st.query, item.Snippet)
		if err != nil {
			return err
		}
		if relevant {
			kept = append(kept, item)
		} else {
			dropped++
		}
	}
	st.evidence = kept
	st.needsWebSearch = dropped > 0
	e.logger.Printf("[WORKFLOW] Graded documents: kept=%d dropped=%d", len(kept), dropped)
	return nil
}

// searchWeb widens the evidence pool. Absence of the capability is a
// pass-through, never a failure.
func (e *Engine) searchWeb(ctx context.Context, st *runState) error {
	if e.webSearch == nil {
		e.logger.Printf("[WORKFLOW] Web search unconfigured, passing through")
		return nil
	}
	results, err := e.webSearch.Search(ctx, st.query)
	if err != nil {
		return fmt.Errorf("web search failed: %w", err)
	}
	st.evidence = append(st.evidence, rag.WebEvidence(results)...)
	e.logger.Printf("[WORKFLOW] Web search added %d results", len(results))
	return nil
}

// generateAndGrade produces an answer and routes on the two gates.
// Groundedness is always evaluated first: a fluent but unsupported answer
// must never be rewarded by the usefulness gate.
func (e *Engine) generateAndGrade(ctx context.Context, st *runState) (nodeState, error) {
	answer, err := e.generator.Generate(ctx, st.query, rag.EvidenceTexts(st.evidence))
	if err != nil {
		return stateGenerate, err
	}
	st.answer = answer

	grounded, err := e.grader.GradeGroundedness(ctx, st.answer, rag.EvidenceTexts(st.evidence))
	if err != nil {
		return stateGenerate, err
	}
	if !grounded {
		return stateGenerate, nil
	}

	useful, err := e.grader.GradeUsefulness(ctx, st.query, st.answer)
	if err != nil {
		return stateGenerate, err
	}
	if !useful {
		return stateSearchWeb, nil
	}
	return stateDone, nil
}
