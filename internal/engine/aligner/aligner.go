// Package aligner scores how well a candidate phrase's words align
// letter-by-letter with an acronym.  The scorer is a pure
// dynamic-programming routine over small inputs (acronym length ≤ 8, phrase
// length ≤ ~20), so no heuristic shortcuts are needed.
package aligner

import (
	"math"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// Aligner computes monotonic subsequence alignments between acronym letters
// and phrase word initials.  It is safe for concurrent use; the accept
// threshold is the only mutable field and may be changed at runtime.
type Aligner struct {
	skipPenalty   float64
	freeSkipWords map[string]struct{}

	// acceptThreshold holds math.Float64bits of the threshold so the
	// configuration hot-reload path can swap it while scans are running.
	acceptThreshold atomic.Uint64
}

// New builds an Aligner from the aligner configuration section.
func New(cfg config.AlignerConfig) *Aligner {
	free := make(map[string]struct{}, len(cfg.FreeSkipWords))
	for _, w := range cfg.FreeSkipWords {
		free[strings.ToLower(w)] = struct{}{}
	}
	a := &Aligner{
		skipPenalty:   cfg.SkipPenalty,
		freeSkipWords: free,
	}
	a.acceptThreshold.Store(math.Float64bits(cfg.AcceptThreshold))
	return a
}

// AcceptThreshold returns the current minimum confidence for acceptance.
func (a *Aligner) AcceptThreshold() float64 {
	return math.Float64frombits(a.acceptThreshold.Load())
}

// SetAcceptThreshold replaces the minimum confidence for acceptance.
// Alignments already in flight observe either the old or the new value.
func (a *Aligner) SetAcceptThreshold(t float64) {
	a.acceptThreshold.Store(math.Float64bits(t))
}

// Letters returns the acronym's letters stripped of digits, hyphens, and
// periods, case-folded.  "R&D" → "rd", "B2B" → "bb".
func Letters(surface string) []rune {
	var out []rune
	for _, r := range surface {
		if unicode.IsLetter(r) {
			out = append(out, unicode.ToLower(r))
		}
	}
	return out
}

// subwordInitials returns the lowercased initial letter of each sub-word of
// word, splitting on internal punctuation.  "Public-Private" → ['p','p'].
// A word without letters yields nil.
func subwordInitials(word string) []rune {
	var out []rune
	inWord := false
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !inWord {
				out = append(out, unicode.ToLower(r))
				inWord = true
			}
		} else {
			inWord = false
		}
	}
	return out
}

// movement kinds recorded for path reconstruction.
const (
	moveNone = iota
	moveSkip
	moveMatch
)

type cell struct {
	penalty float64
	span    int
	move    int
	// letters consumed by a match move
	consumed int
}

// Align computes the best alignment of the acronym's letters against words.
// Words are consumed left-to-right without reordering; words may be skipped
// (free for connector words and for window slack before the first match),
// letters may not.  When the letters cannot all be matched the result is a
// rejection with confidence zero.
//
// Confidence = len(letters) / (len(letters) + skip penalty incurred),
// clamped to [0,1].  Ties between alignment paths are broken by preferring
// the path that consumes the fewest words (tightest phrase).
func (a *Aligner) Align(surface string, words []string) acronym.AlignmentResult {
	letters := Letters(surface)
	n, m := len(letters), len(words)
	if n == 0 || m == 0 {
		return acronym.AlignmentResult{}
	}

	initials := make([][]rune, m)
	for j, w := range words {
		initials[j] = subwordInitials(w)
	}

	// dp[i][j]: minimal (penalty, span) to match letters[i:] using
	// words[j:].  Row n is the goal row; trailing words are free.
	dp := make([][]cell, n+1)
	for i := range dp {
		dp[i] = make([]cell, m+1)
		for j := range dp[i] {
			dp[i][j] = cell{penalty: math.Inf(1)}
		}
	}
	for j := 0; j <= m; j++ {
		dp[n][j] = cell{move: moveNone}
	}

	better := func(p float64, s int, cur cell) bool {
		if p != cur.penalty {
			return p < cur.penalty
		}
		return s < cur.span
	}

	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			// Match: letters[i:i+k] against the first k sub-word
			// initials of words[j].  Evaluated before skip so that
			// exact cost ties prefer matching.
			maxK := len(initials[j])
			if n-i < maxK {
				maxK = n - i
			}
			for k := 1; k <= maxK; k++ {
				if initials[j][k-1] != letters[i+k-1] {
					break
				}
				next := dp[i+k][j+1]
				if math.IsInf(next.penalty, 1) {
					continue
				}
				if p, s := next.penalty, next.span+1; better(p, s, dp[i][j]) {
					dp[i][j] = cell{penalty: p, span: s, move: moveMatch, consumed: k}
				}
			}

			// Skip words[j].  Free before the first matched letter
			// (window slack) and for connector words; penalized
			// otherwise.
			next := dp[i][j+1]
			if !math.IsInf(next.penalty, 1) {
				pen, span := 0.0, 0
				if i > 0 {
					span = 1
					if !a.freeSkip(words[j]) {
						pen = a.skipPenalty
					}
				}
				if p, s := next.penalty+pen, next.span+span; better(p, s, dp[i][j]) {
					dp[i][j] = cell{penalty: p, span: s, move: moveSkip}
				}
			}
		}
	}

	best := dp[0][0]
	if math.IsInf(best.penalty, 1) {
		// Letters cannot all be accounted for: rejected outright.
		return acronym.AlignmentResult{}
	}

	res := acronym.AlignmentResult{
		Matches: make([]acronym.LetterMatch, 0, n),
	}
	i, j := 0, 0
	for i < n {
		c := dp[i][j]
		switch c.move {
		case moveMatch:
			for k := 0; k < c.consumed; k++ {
				res.Matches = append(res.Matches, acronym.LetterMatch{
					Letter:       letters[i+k],
					WordIndex:    j,
					SubwordIndex: k,
				})
			}
			i += c.consumed
		case moveSkip:
			if i > 0 {
				res.WordsSkipped++
			}
		}
		j++
	}

	res.WordsConsumed = best.span
	conf := float64(n) / (float64(n) + best.penalty)
	if conf > 1 {
		conf = 1
	}
	res.Confidence = conf
	res.Accepted = conf >= a.AcceptThreshold()
	return res
}

// freeSkip reports whether word may be skipped at zero penalty.
func (a *Aligner) freeSkip(word string) bool {
	_, ok := a.freeSkipWords[strings.ToLower(word)]
	return ok
}
