package extractor

import (
	"strings"
	"unicode"

	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// Candidate pairs one acronym occurrence with an optional definition phrase
// and the occurrence's sentence vocabulary (used later for context-based
// disambiguation).  Phrase is nil when no parenthetical pattern was found;
// such occurrences take the deferred-resolution path.
type Candidate struct {
	Acronym acronym.Token
	Phrase  *acronym.CandidatePhrase
	Context []string
}

// Defined reports whether a local definition candidate was found.
func (c Candidate) Defined() bool {
	return c.Phrase != nil
}

// Extractor scans sentences for acronym-shaped tokens and their
// parenthetical definition spans.
type Extractor struct {
	pred            Predicate
	windowSentences int
	logger          logging.Logger
}

// New builds an Extractor.  windowSentences bounds how far a pattern-(a)
// phrase run may reach back across sentence boundaries; 1 restricts the
// search to the acronym's own sentence.
func New(pred Predicate, windowSentences int, logger logging.Logger) *Extractor {
	if windowSentences < 1 {
		windowSentences = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{pred: pred, windowSentences: windowSentences, logger: logger}
}

// ExtractDocument scans every sentence of doc and returns all acronym
// candidates in sentence-then-offset order.  Malformed sentences are
// skipped with a warning; they never fail the document.  Only a document
// without an id is rejected outright.
func (e *Extractor) ExtractDocument(doc document.Document) ([]Candidate, error) {
	if doc.ID == "" {
		return nil, errors.New(errors.CodeCorpusRead, "document has empty id")
	}

	var out []Candidate
	for si, sent := range doc.Sentences {
		if malformed(sent) {
			e.logger.Warn("skipping malformed sentence",
				logging.String("document_id", doc.ID),
				logging.Int("sentence_id", sent.ID))
			continue
		}
		out = append(out, e.extractSentence(doc, si)...)
	}
	return out, nil
}

// malformed reports whether a sentence cannot be scanned: a token with empty
// text would break offset accounting downstream.
func malformed(sent document.Sentence) bool {
	for _, t := range sent.Tokens {
		if t.Text == "" {
			return true
		}
	}
	return false
}

// extractSentence scans one sentence, identified by its index within doc so
// that pattern-(a) phrase runs can reach into preceding sentences when the
// window allows.
func (e *Extractor) extractSentence(doc document.Document, si int) []Candidate {
	sent := doc.Sentences[si]
	tokens := sent.Tokens

	var out []Candidate
	for k, tok := range tokens {
		if !e.pred.IsAcronym(tok.Text) {
			continue
		}

		occ := acronym.Token{
			Surface:    tok.Text,
			DocumentID: doc.ID,
			SentenceID: sent.ID,
			Offset:     tok.Offset,
		}
		cand := Candidate{
			Acronym: occ,
			Context: sentenceVocabulary(sent),
		}

		// Pattern (a), "expansion (ACRONYM)", is the more common
		// documentary convention and wins when both patterns appear.
		if phrase := e.phraseBefore(doc, si, k); phrase != nil {
			cand.Phrase = phrase
		} else if phrase := e.phraseAfter(doc, si, k); phrase != nil {
			cand.Phrase = phrase
		}
		out = append(out, cand)
	}
	return out
}

// phraseBefore detects pattern (a): the acronym sits alone inside
// parentheses and the candidate phrase is the word run immediately before
// the opening parenthesis.
func (e *Extractor) phraseBefore(doc document.Document, si, k int) *acronym.CandidatePhrase {
	tokens := doc.Sentences[si].Tokens
	if k == 0 || tokens[k-1].Text != "(" {
		return nil
	}
	if k+1 >= len(tokens) || tokens[k+1].Text != ")" {
		return nil
	}

	limit := maxPhraseWords(tokens[k].Text)
	words, sentenceID, offset := e.collectBackward(doc, si, k-2, limit)
	if len(words) == 0 {
		return nil
	}
	return &acronym.CandidatePhrase{
		Words:       words,
		SentenceID:  sentenceID,
		Offset:      offset,
		Orientation: acronym.PhraseThenAcronym,
	}
}

// phraseAfter detects pattern (b): "ACRONYM (expansion)".  The phrase is
// the word run inside the parenthetical that immediately follows the
// acronym.
func (e *Extractor) phraseAfter(doc document.Document, si, k int) *acronym.CandidatePhrase {
	tokens := doc.Sentences[si].Tokens
	if k+2 >= len(tokens) || tokens[k+1].Text != "(" {
		return nil
	}

	limit := maxPhraseWords(tokens[k].Text)
	var words []string
	offset := -1
	for j := k + 2; j < len(tokens) && len(words) < limit; j++ {
		text := tokens[j].Text
		if text == ")" {
			break
		}
		if !isWord(text) {
			continue
		}
		if offset < 0 {
			offset = tokens[j].Offset
		}
		words = append(words, text)
	}
	if len(words) == 0 {
		return nil
	}
	return &acronym.CandidatePhrase{
		Words:       words,
		SentenceID:  doc.Sentences[si].ID,
		Offset:      offset,
		Orientation: acronym.AcronymThenPhrase,
	}
}

// collectBackward walks backwards from token index start in sentence si,
// gathering up to limit consecutive word tokens.  The walk stops at the
// first non-word token; when the sentence start is reached it continues
// from the end of the preceding sentence as long as the configured window
// allows.  Returned words are in reading order, together with the sentence
// id and offset of the earliest collected token.
func (e *Extractor) collectBackward(doc document.Document, si, start, limit int) ([]string, int, int) {
	var reversed []string
	sentenceID, offset := doc.Sentences[si].ID, 0

	idx := start
	cur := si
	remaining := e.windowSentences
	for len(reversed) < limit {
		if idx < 0 {
			remaining--
			cur--
			if remaining < 1 || cur < 0 {
				break
			}
			idx = len(doc.Sentences[cur].Tokens) - 1
			continue
		}
		tok := doc.Sentences[cur].Tokens[idx]
		if !isWord(tok.Text) {
			break
		}
		reversed = append(reversed, tok.Text)
		sentenceID = doc.Sentences[cur].ID
		offset = tok.Offset
		idx--
	}

	words := make([]string, len(reversed))
	for i, w := range reversed {
		words[len(reversed)-1-i] = w
	}
	return words, sentenceID, offset
}

// maxPhraseWords bounds the candidate span: acronym definitions rarely use
// more than two words per letter.
func maxPhraseWords(surface string) int {
	letters := 0
	for _, r := range surface {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return 2*letters + 2
}

// isWord reports whether a token carries at least one letter; pure
// punctuation and numbers never participate in candidate phrases.
func isWord(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// sentenceVocabulary lowercases the sentence's word tokens for use as a
// disambiguation context signal.
func sentenceVocabulary(sent document.Sentence) []string {
	var out []string
	for _, t := range sent.Tokens {
		if isWord(t.Text) {
			out = append(out, strings.ToLower(t.Text))
		}
	}
	return out
}
