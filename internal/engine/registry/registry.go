// Package registry maintains the corpus-scoped store of acronym expansion
// prototypes.  One registry instance is constructed per corpus run, passed
// explicitly to the components that need it, and released at run end; there
// is no ambient global state.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// entry holds the prototype set of one acronym surface form.  Prototypes
// keeps insertion order; byKey indexes merge keys into it.
type entry struct {
	prototypes []*acronym.Prototype
	byKey      map[string]int
	vocab      []map[string]struct{} // per-prototype context vocabulary
}

// Registry maps acronym surface forms (case-sensitive) to their prototype
// sets.  All mutation goes through Record, which is serialized internally;
// in the pipeline, Record is additionally funneled through a single
// committing goroutine so that merge decisions are deterministic.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	agg     AggregationPolicy
	merge   MergePolicy
	logger  logging.Logger
}

// New builds an empty Registry with the given policies.  Nil policies fall
// back to the documented defaults (max aggregation, loose merge).
func New(agg AggregationPolicy, merge MergePolicy, logger logging.Logger) *Registry {
	if agg == nil {
		agg = MaxAggregation{}
	}
	if merge == nil {
		merge = LooseMerge{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		entries: make(map[string]*entry),
		agg:     agg,
		merge:   merge,
		logger:  logger,
	}
}

// Record registers an accepted alignment as prototype evidence.  The
// expansion text is taken from the aligned span of the candidate phrase
// (window slack outside the first and last matched words is discarded) and
// normalized to lowercase single-spaced form.  If a prototype with the same
// merge key already exists under this acronym its support grows and its
// aggregate is updated; otherwise a new prototype is created.  Returns the
// id of the affected prototype and whether it was newly created.
//
// context carries the occurrence's sentence vocabulary; it feeds the
// context-ranking disambiguation signal and is accumulated per prototype.
func (r *Registry) Record(tok acronym.Token, phrase acronym.CandidatePhrase, res acronym.AlignmentResult, context []string) (string, bool, error) {
	if tok.Surface == "" {
		return "", false, errors.New(errors.CodeInvalidAcronym, "registry key must not be empty")
	}
	if !res.Accepted || len(res.Matches) == 0 {
		return "", false, errors.New(errors.CodeAlignmentRejected, "only accepted alignments may be recorded").
			WithDetail(tok.Location())
	}

	span := alignedSpan(phrase.Words, res)
	key := r.merge.Key(span)
	if key == "" {
		return "", false, errors.New(errors.CodeInvalidAcronym, "aligned span normalizes to empty text").
			WithDetail(tok.Location())
	}

	occ := acronym.Occurrence{
		DocumentID: tok.DocumentID,
		SentenceID: tok.SentenceID,
		Offset:     tok.Offset,
		Confidence: res.Confidence,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[tok.Surface]
	if e == nil {
		e = &entry{byKey: make(map[string]int)}
		r.entries[tok.Surface] = e
	}

	if idx, ok := e.byKey[key]; ok {
		// Same meaning seen again, possibly from another document: the
		// merge rule resolves the conflict deterministically.
		p := e.prototypes[idx]
		p.Occurrences = append(p.Occurrences, occ)
		p.Aggregate = r.agg.Aggregate(p.Aggregate, len(p.Occurrences)-1, res.Confidence)
		addVocabulary(e.vocab[idx], context)
		r.logger.Debug("merged prototype occurrence",
			logging.String("prototype_id", p.ID),
			logging.Int("support", len(p.Occurrences)),
			logging.Float64("aggregate", p.Aggregate))
		return p.ID, false, nil
	}

	p := &acronym.Prototype{
		ID:          acronym.PrototypeID(tok.Surface, len(e.prototypes)),
		Acronym:     tok.Surface,
		Expansion:   normalize(span),
		Words:       lowercased(span),
		Occurrences: []acronym.Occurrence{occ},
		Aggregate:   r.agg.Aggregate(0, 0, res.Confidence),
	}
	vocab := make(map[string]struct{})
	addVocabulary(vocab, context)

	e.byKey[key] = len(e.prototypes)
	e.prototypes = append(e.prototypes, p)
	e.vocab = append(e.vocab, vocab)

	r.logger.Debug("created prototype",
		logging.String("prototype_id", p.ID),
		logging.String("expansion", p.Expansion),
		logging.Float64("aggregate", p.Aggregate))
	return p.ID, true, nil
}

// Lookup returns the acronym's prototypes ordered by descending aggregate
// confidence, ties broken by descending support, then insertion order.  The
// ordering is fully deterministic so that corpus runs are reproducible.
// The result is empty when the acronym has never been defined.
//
// Returned prototypes are snapshots; mutating them does not affect the
// registry.
func (r *Registry) Lookup(surface string) []acronym.Prototype {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[surface]
	if e == nil {
		return nil
	}
	return e.ordered()
}

// Prototype returns a snapshot of the prototype with the given id under
// surface, if present.
func (r *Registry) Prototype(surface, prototypeID string) (acronym.Prototype, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[surface]
	if e == nil {
		return acronym.Prototype{}, false
	}
	for _, p := range e.prototypes {
		if p.ID == prototypeID {
			out := *p
			out.Words = append([]string(nil), p.Words...)
			out.Occurrences = append([]acronym.Occurrence(nil), p.Occurrences...)
			return out, true
		}
	}
	return acronym.Prototype{}, false
}

// Vocabulary returns the accumulated context vocabulary of the prototype
// with the given id under surface, sorted for determinism.
func (r *Registry) Vocabulary(surface, prototypeID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[surface]
	if e == nil {
		return nil
	}
	for i, p := range e.prototypes {
		if p.ID == prototypeID {
			out := make([]string, 0, len(e.vocab[i]))
			for w := range e.vocab[i] {
				out = append(out, w)
			}
			sort.Strings(out)
			return out
		}
	}
	return nil
}

// Acronyms returns all registry keys in sorted order.
func (r *Registry) Acronyms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct acronym surface forms recorded.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// PrototypeCount returns the total number of prototypes across all entries.
func (r *Registry) PrototypeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		n += len(e.prototypes)
	}
	return n
}

// ordered returns deep copies of the entry's prototypes in lookup order.
// Caller must hold r.mu.
func (e *entry) ordered() []acronym.Prototype {
	out := make([]acronym.Prototype, len(e.prototypes))
	for i, p := range e.prototypes {
		out[i] = *p
		out[i].Words = append([]string(nil), p.Words...)
		out[i].Occurrences = append([]acronym.Occurrence(nil), p.Occurrences...)
	}
	// Stable sort preserves insertion order as the final tie-break.
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Aggregate != out[b].Aggregate {
			return out[a].Aggregate > out[b].Aggregate
		}
		return len(out[a].Occurrences) > len(out[b].Occurrences)
	})
	return out
}

// alignedSpan extracts phrase.Words between the first and last matched word
// of res, inclusive.
func alignedSpan(words []string, res acronym.AlignmentResult) []string {
	first := res.Matches[0].WordIndex
	last := res.Matches[len(res.Matches)-1].WordIndex
	if first < 0 || last >= len(words) {
		return nil
	}
	return words[first : last+1]
}

// normalize renders a word span as lowercase single-spaced expansion text.
func normalize(words []string) string {
	return strings.ToLower(strings.Join(words, " "))
}

func lowercased(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// addVocabulary folds lowercased context words of three or more letters
// into vocab; shorter words carry no disambiguation signal.
func addVocabulary(vocab map[string]struct{}, context []string) {
	for _, w := range context {
		w = strings.ToLower(w)
		if len(w) >= 3 {
			vocab[w] = struct{}{}
		}
	}
}
