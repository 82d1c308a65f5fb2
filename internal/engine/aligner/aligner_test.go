package aligner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AcroLex/internal/config"
)

func defaultAligner() *Aligner {
	cfg := config.AlignerConfig{}
	full := config.Config{Engine: config.EngineConfig{Aligner: cfg}}
	config.ApplyDefaults(&full)
	return New(full.Engine.Aligner)
}

func TestLetters(t *testing.T) {
	assert.Equal(t, []rune("who"), Letters("WHO"))
	assert.Equal(t, []rune("rd"), Letters("R&D"))
	assert.Equal(t, []rune("bb"), Letters("B2B"))
	assert.Equal(t, []rune("abc"), Letters("A-B-C"))
	assert.Nil(t, Letters("2023"))
}

func TestAlign_PerfectMatch(t *testing.T) {
	res := defaultAligner().Align("WHO", []string{"World", "Health", "Organization"})

	assert.True(t, res.Accepted)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, 0, res.WordsSkipped)
	assert.Equal(t, 3, res.WordsConsumed)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 0, res.Matches[0].WordIndex)
	assert.Equal(t, 2, res.Matches[2].WordIndex)
}

func TestAlign_FreeSkipWord(t *testing.T) {
	// "of" is a connector word: skipped at zero penalty, full confidence.
	res := defaultAligner().Align("BE", []string{"Bank", "of", "England"})

	assert.True(t, res.Accepted)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, 1, res.WordsSkipped)
	assert.Equal(t, 3, res.WordsConsumed)
}

func TestAlign_HyphenatedCompound(t *testing.T) {
	// P,P,P → Public, Private (sub-words of one token), Partnership.
	res := defaultAligner().Align("PPP", []string{"Public-Private", "Partnership"})

	assert.True(t, res.Accepted)
	assert.Equal(t, 1.0, res.Confidence)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 0, res.Matches[0].WordIndex)
	assert.Equal(t, 0, res.Matches[0].SubwordIndex)
	assert.Equal(t, 0, res.Matches[1].WordIndex)
	assert.Equal(t, 1, res.Matches[1].SubwordIndex)
	assert.Equal(t, 1, res.Matches[2].WordIndex)
	assert.Equal(t, 0, res.Matches[2].SubwordIndex)
}

func TestAlign_LeadingWindowSlackIsFree(t *testing.T) {
	// The extractor proposes a fixed-size window; words before the first
	// matched letter are slack, not phrase content, and must not reduce
	// confidence.
	res := defaultAligner().Align("PPP", []string{"promote", "the", "Public", "Private", "Partnership"})

	assert.True(t, res.Accepted)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, 3, res.WordsConsumed)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, 2, res.Matches[0].WordIndex)
}

func TestAlign_InternalSkipPenalized(t *testing.T) {
	// "European Economic Nuclear Community" for EEC: "Nuclear" is an
	// internal skip with the default 0.25 penalty → 3/3.25.
	res := defaultAligner().Align("EEC", []string{"European", "Economic", "Nuclear", "Community"})

	assert.True(t, res.Accepted)
	assert.InDelta(t, 3.0/3.25, res.Confidence, 1e-9)
	assert.Equal(t, 1, res.WordsSkipped)
	assert.Equal(t, 4, res.WordsConsumed)
}

func TestAlign_MissingLetterRejectedOutright(t *testing.T) {
	// No word supplies the H: letters may never be skipped.
	res := defaultAligner().Align("WHO", []string{"World", "Organization"})

	assert.False(t, res.Accepted)
	assert.Zero(t, res.Confidence)
	assert.Empty(t, res.Matches)
}

func TestAlign_OrderMatters(t *testing.T) {
	res := defaultAligner().Align("WHO", []string{"Health", "World", "Organization"})
	assert.False(t, res.Accepted)
}

func TestAlign_BelowThresholdRejected(t *testing.T) {
	a := New(config.AlignerConfig{
		SkipPenalty:     2.0,
		AcceptThreshold: 0.6,
	})
	// one internal skip at penalty 2.0 → 2/4 = 0.5 < 0.6
	res := a.Align("AC", []string{"Alpha", "Beta", "Charlie"})

	assert.False(t, res.Accepted)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestAlign_TieBreakPrefersTightestSpan(t *testing.T) {
	// Both [Annual, Assembly] windows are full matches; the DP must pick
	// the variant consuming the fewest words.
	res := defaultAligner().Align("AA", []string{"April", "Annual", "Assembly"})

	assert.True(t, res.Accepted)
	assert.Equal(t, 2, res.WordsConsumed)
}

func TestAlign_DigitsIgnoredInAcronym(t *testing.T) {
	res := defaultAligner().Align("B2B", []string{"business", "to", "business"})

	assert.True(t, res.Accepted)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestAlign_EmptyInputs(t *testing.T) {
	a := defaultAligner()
	assert.False(t, a.Align("PPP", nil).Accepted)
	assert.False(t, a.Align("2023", []string{"two", "words"}).Accepted)
}

func TestAlign_CaseInsensitiveMatching(t *testing.T) {
	res := defaultAligner().Align("who", []string{"world", "health", "organization"})
	assert.True(t, res.Accepted)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestSetAcceptThreshold_ChangesAcceptance(t *testing.T) {
	a := defaultAligner()

	// One penalized skip over three letters: confidence 3/3.25 ≈ 0.923.
	words := []string{"World", "Trade", "Global", "Organization"}
	res := a.Align("WTO", words)
	require.True(t, res.Accepted)

	a.SetAcceptThreshold(0.95)
	assert.Equal(t, 0.95, a.AcceptThreshold())
	assert.False(t, a.Align("WTO", words).Accepted)

	a.SetAcceptThreshold(0.6)
	assert.True(t, a.Align("WTO", words).Accepted)
}
