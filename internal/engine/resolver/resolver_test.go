package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AcroLex/internal/engine/registry"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

func populated(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New(nil, nil, nil)

	record := func(surface string, words []string, confidence float64, docID string, context []string) {
		phrase := acronym.CandidatePhrase{Words: words}
		res := acronym.AlignmentResult{Confidence: confidence, Accepted: true}
		for i := range words {
			res.Matches = append(res.Matches, acronym.LetterMatch{WordIndex: i})
		}
		_, _, err := r.Record(acronym.Token{Surface: surface, DocumentID: docID}, phrase, res, context)
		require.NoError(t, err)
	}

	// document A defines purchasing power parity with higher confidence
	record("PPP", []string{"Purchasing", "Power", "Parity"}, 0.95, "docA",
		[]string{"exchange", "rates", "inflation"})
	// document B defines public private partnership
	record("PPP", []string{"Public", "Private", "Partnership"}, 0.9, "docB",
		[]string{"infrastructure", "investment", "financing"})
	record("WHO", []string{"World", "Health", "Organization"}, 1.0, "docA", nil)
	return r
}

func occurrence(surface string) acronym.Token {
	return acronym.Token{Surface: surface, DocumentID: "docC", SentenceID: 2, Offset: 4}
}

func TestResolve_SinglePrototype(t *testing.T) {
	r := New(nil)
	snap := populated(t)

	res := r.Resolve(occurrence("WHO"), snap, nil)
	assert.Equal(t, acronym.OutcomeResolved, res.Outcome)
	assert.Equal(t, "WHO#1", res.PrototypeID)
	assert.Equal(t, "world health organization", res.Expansion)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestResolve_ZeroPrototypesUnresolved(t *testing.T) {
	r := New(nil)
	snap := populated(t)

	res := r.Resolve(occurrence("NASA"), snap, nil)
	assert.Equal(t, acronym.OutcomeUnresolved, res.Outcome)
	assert.Empty(t, res.PrototypeID)
	assert.Empty(t, res.Expansion)
}

func TestResolve_DefaultRankingPicksHighestAggregate(t *testing.T) {
	r := New(ConfidenceRanking{})
	snap := populated(t)

	res := r.Resolve(occurrence("PPP"), snap, []string{"infrastructure", "investment"})
	assert.Equal(t, acronym.OutcomeResolved, res.Outcome)
	// confidence ranking ignores context: parity has the higher aggregate
	assert.Equal(t, "purchasing power parity", res.Expansion)
}

func TestResolve_ContextRankingPrefersOverlap(t *testing.T) {
	r := New(ContextRanking{})
	snap := populated(t)

	res := r.Resolve(occurrence("PPP"), snap, []string{"infrastructure", "investment", "pipeline"})
	assert.Equal(t, acronym.OutcomeResolved, res.Outcome)
	assert.Equal(t, "public private partnership", res.Expansion)
}

func TestResolve_ContextRankingFallsBackOnNoOverlap(t *testing.T) {
	r := New(ContextRanking{})
	snap := populated(t)

	res := r.Resolve(occurrence("PPP"), snap, []string{"unrelated", "vocabulary"})
	// zero overlap everywhere: registry ordering is the fallback
	assert.Equal(t, "purchasing power parity", res.Expansion)
}

func TestResolve_Deterministic(t *testing.T) {
	snap := populated(t)
	ctx := []string{"infrastructure", "financing"}

	first := New(ContextRanking{}).Resolve(occurrence("PPP"), snap, ctx)
	for i := 0; i < 10; i++ {
		again := New(ContextRanking{}).Resolve(occurrence("PPP"), snap, ctx)
		assert.Equal(t, first, again)
	}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, "context", PolicyFor("context").Name())
	assert.Equal(t, "confidence", PolicyFor("confidence").Name())
	assert.Equal(t, "confidence", PolicyFor("bogus").Name())
}
