// Package resolver selects the best expansion prototype for acronym
// occurrences that lack a local definition (deferred resolution).  The
// resolver is a pure function of the occurrence, a registry snapshot, and
// the occurrence's sentence context; it performs no I/O and is fully
// deterministic, which keeps it trivially testable.
package resolver

import (
	"sort"
	"strings"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// Snapshot is the read-side view of the prototype registry consumed during
// deferred resolution.  Implementations must return deterministically
// ordered prototypes (see the registry package for the ordering contract).
type Snapshot interface {
	Lookup(surface string) []acronym.Prototype
	Vocabulary(surface, prototypeID string) []string
}

// RankingPolicy orders an acronym's prototypes best-first for one
// occurrence.  protos arrives in registry order and must be returned as a
// deterministic permutation: equal-scoring prototypes keep their relative
// registry order.
type RankingPolicy interface {
	Name() string
	Rank(snap Snapshot, surface string, protos []acronym.Prototype, context []string) []acronym.Prototype
}

// ConfidenceRanking keeps the registry's deterministic ordering (aggregate
// confidence, support, insertion order).  This is the default policy.
type ConfidenceRanking struct{}

func (ConfidenceRanking) Name() string { return config.RankingConfidence }

func (ConfidenceRanking) Rank(_ Snapshot, _ string, protos []acronym.Prototype, _ []string) []acronym.Prototype {
	return protos
}

// ContextRanking re-ranks prototypes by lexical overlap between the
// occurrence's sentence vocabulary and each prototype's accumulated
// supporting contexts (plus its own expansion words).  Prototypes with
// equal overlap keep registry order, so the default ordering remains the
// fallback signal.
type ContextRanking struct{}

func (ContextRanking) Name() string { return config.RankingContext }

func (ContextRanking) Rank(snap Snapshot, surface string, protos []acronym.Prototype, context []string) []acronym.Prototype {
	if len(context) == 0 || len(protos) < 2 {
		return protos
	}

	ctx := make(map[string]struct{}, len(context))
	for _, w := range context {
		w = strings.ToLower(w)
		if len(w) >= 3 {
			ctx[w] = struct{}{}
		}
	}

	scores := make([]int, len(protos))
	for i, p := range protos {
		scores[i] = overlap(ctx, p.Words, snap.Vocabulary(surface, p.ID))
	}

	order := make([]int, len(protos))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]acronym.Prototype, len(protos))
	for i, idx := range order {
		out[i] = protos[idx]
	}
	return out
}

// overlap counts distinct context words appearing among the prototype's
// expansion words or supporting vocabulary.
func overlap(ctx map[string]struct{}, words, vocab []string) int {
	seen := make(map[string]struct{})
	n := 0
	count := func(w string) {
		if _, dup := seen[w]; dup {
			return
		}
		seen[w] = struct{}{}
		if _, ok := ctx[w]; ok {
			n++
		}
	}
	for _, w := range words {
		count(strings.ToLower(w))
	}
	for _, w := range vocab {
		count(strings.ToLower(w))
	}
	return n
}

// PolicyFor maps a configured selector to its implementation, defaulting to
// ConfidenceRanking for unknown values.
func PolicyFor(name string) RankingPolicy {
	if name == config.RankingContext {
		return ContextRanking{}
	}
	return ConfidenceRanking{}
}

// Resolver resolves deferred occurrences against a registry snapshot.
type Resolver struct {
	policy RankingPolicy
}

// New builds a Resolver; a nil policy falls back to ConfidenceRanking.
func New(policy RankingPolicy) *Resolver {
	if policy == nil {
		policy = ConfidenceRanking{}
	}
	return &Resolver{policy: policy}
}

// Resolve selects a prototype for an occurrence without a local definition.
// With exactly one prototype the choice is forced; with several, the
// ranking policy decides; with none, the outcome is Unresolved and the
// token will pass through unchanged.
func (r *Resolver) Resolve(tok acronym.Token, snap Snapshot, context []string) acronym.Resolution {
	protos := snap.Lookup(tok.Surface)
	if len(protos) == 0 {
		return acronym.Resolution{Token: tok, Outcome: acronym.OutcomeUnresolved}
	}

	best := protos[0]
	if len(protos) > 1 {
		best = r.policy.Rank(snap, tok.Surface, protos, context)[0]
	}
	return acronym.Resolution{
		Token:       tok,
		Outcome:     acronym.OutcomeResolved,
		PrototypeID: best.ID,
		Expansion:   best.Expansion,
		Confidence:  best.Aggregate,
	}
}
