package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

func sentence(id int, words ...string) document.Sentence {
	s := document.Sentence{ID: id}
	for i, w := range words {
		s.Tokens = append(s.Tokens, document.Token{Text: w, Offset: i})
	}
	return s
}

func doc(id string, sentences ...document.Sentence) document.Document {
	return document.Document{ID: id, Sentences: sentences}
}

func defaultExtractor() *Extractor {
	return New(NewShapePredicate(2, 8, nil), 1, nil)
}

func TestExtractDocument_PhraseThenAcronym(t *testing.T) {
	d := doc("d1", sentence(0, "the", "World", "Health", "Organization", "(", "WHO", ")", "met"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, "WHO", c.Acronym.Surface)
	assert.Equal(t, "d1", c.Acronym.DocumentID)
	assert.Equal(t, 5, c.Acronym.Offset)
	require.True(t, c.Defined())
	assert.Equal(t, acronym.PhraseThenAcronym, c.Phrase.Orientation)
	// window slack before the phrase is included; the aligner trims it
	assert.Equal(t, []string{"the", "World", "Health", "Organization"}, c.Phrase.Words)
	assert.Equal(t, 0, c.Phrase.Offset)
}

func TestExtractDocument_AcronymThenPhrase(t *testing.T) {
	d := doc("d1", sentence(0, "the", "WHO", "(", "World", "Health", "Organization", ")", "met"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)

	c := cands[0]
	require.True(t, c.Defined())
	assert.Equal(t, acronym.AcronymThenPhrase, c.Phrase.Orientation)
	assert.Equal(t, []string{"World", "Health", "Organization"}, c.Phrase.Words)
	assert.Equal(t, 3, c.Phrase.Offset)
}

func TestExtractDocument_PrefersPhraseThenAcronym(t *testing.T) {
	// "partnership (PPP) (public private partnership)" — contrived, but
	// pattern (a) must win when both orientations match.
	d := doc("d1", sentence(0,
		"public", "private", "partnership", "(", "PPP", ")",
		"(", "public", "private", "partnership", ")"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, acronym.PhraseThenAcronym, cands[0].Phrase.Orientation)
}

func TestExtractDocument_BareOccurrence(t *testing.T) {
	d := doc("d1", sentence(3, "funding", "for", "NASA", "increased"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "NASA", cands[0].Acronym.Surface)
	assert.Equal(t, 3, cands[0].Acronym.SentenceID)
	assert.False(t, cands[0].Defined())
	assert.Contains(t, cands[0].Context, "funding")
}

func TestExtractDocument_PhraseStopsAtPunctuation(t *testing.T) {
	d := doc("d1", sentence(0, "reviewed", ";", "purchasing", "power", "parity", "(", "PPP", ")"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, []string{"purchasing", "power", "parity"}, cands[0].Phrase.Words)
	assert.Equal(t, 2, cands[0].Phrase.Offset)
}

func TestExtractDocument_WindowCrossesSentence(t *testing.T) {
	d := doc("d1",
		sentence(0, "the", "World", "Health"),
		sentence(1, "Organization", "(", "WHO", ")"))

	// window of 1: the phrase run cannot reach into sentence 0
	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, []string{"Organization"}, cands[0].Phrase.Words)

	// window of 2: the run continues into the previous sentence
	wide := New(NewShapePredicate(2, 8, nil), 2, nil)
	cands, err = wide.ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, []string{"the", "World", "Health", "Organization"}, cands[0].Phrase.Words)
	assert.Equal(t, 0, cands[0].Phrase.SentenceID)
}

func TestExtractDocument_MultipleAcronymsPerSentence(t *testing.T) {
	d := doc("d1", sentence(0, "NASA", "and", "ESA", "signed"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	assert.Equal(t, "NASA", cands[0].Acronym.Surface)
	assert.Equal(t, "ESA", cands[1].Acronym.Surface)
}

func TestExtractDocument_EmptyParenthetical(t *testing.T) {
	d := doc("d1", sentence(0, "PPP", "(", ")"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.False(t, cands[0].Defined())
}

func TestExtractDocument_MalformedSentenceSkipped(t *testing.T) {
	bad := document.Sentence{ID: 0, Tokens: []document.Token{{Text: "", Offset: 0}}}
	d := doc("d1", bad, sentence(1, "NASA", "launch"))

	cands, err := defaultExtractor().ExtractDocument(d)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, 1, cands[0].Acronym.SentenceID)
}

func TestExtractDocument_EmptyDocumentID(t *testing.T) {
	_, err := defaultExtractor().ExtractDocument(document.Document{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCorpusRead))
}

func TestExtractDocument_ExcludedTokenIgnored(t *testing.T) {
	ex := New(NewShapePredicate(2, 8, []string{"USA"}), 1, nil)
	d := doc("d1", sentence(0, "made", "in", "USA"))

	cands, err := ex.ExtractDocument(d)
	require.NoError(t, err)
	assert.Empty(t, cands)
}
