// Package writer applies resolved expansions back into the token stream and
// produces the run's audit log, one entry per acronym occurrence.
package writer

import (
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// Writer substitutes expansions into documents.  It is constructed once per
// run with the run's id so every audit entry is attributable.
type Writer struct {
	runID  string
	logger logging.Logger
}

// New builds a Writer for one corpus run.
func New(runID string, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Writer{runID: runID, logger: logger}
}

// ExpandDocument produces a copy of doc with every resolved occurrence
// replaced by its expansion words (inserted as separate tokens, offsets
// renumbered) and unresolved occurrences left untouched.  It returns the
// expanded document together with one audit entry per resolution.
//
// Resolutions must belong to doc; entries for other documents are ignored
// with a warning since that indicates a pipeline wiring fault.
func (w *Writer) ExpandDocument(doc document.Document, resolutions []acronym.Resolution) (document.Document, []acronym.AuditEntry) {
	// Index replacements by position for one-pass substitution.
	type replacement struct {
		words []string
		res   acronym.Resolution
	}
	bySentence := make(map[int]map[int]replacement)
	audit := make([]acronym.AuditEntry, 0, len(resolutions))

	for _, res := range resolutions {
		if res.Token.DocumentID != doc.ID {
			w.logger.Warn("resolution does not belong to document",
				logging.String("document_id", doc.ID),
				logging.String("occurrence", res.Token.Location()))
			continue
		}
		audit = append(audit, w.auditEntry(res))

		if res.Outcome == acronym.OutcomeUnresolved {
			continue
		}
		m := bySentence[res.Token.SentenceID]
		if m == nil {
			m = make(map[int]replacement)
			bySentence[res.Token.SentenceID] = m
		}
		m[res.Token.Offset] = replacement{words: expansionWords(res), res: res}
	}

	out := document.Document{ID: doc.ID, Sentences: make([]document.Sentence, len(doc.Sentences))}
	for si, sent := range doc.Sentences {
		repl := bySentence[sent.ID]
		if len(repl) == 0 {
			out.Sentences[si] = copySentence(sent)
			continue
		}

		expanded := document.Sentence{ID: sent.ID}
		for _, tok := range sent.Tokens {
			if r, ok := repl[tok.Offset]; ok && tok.Text == r.res.Token.Surface {
				for _, word := range r.words {
					expanded.Tokens = append(expanded.Tokens, document.Token{Text: word})
				}
				continue
			}
			expanded.Tokens = append(expanded.Tokens, document.Token{Text: tok.Text})
		}
		renumber(&expanded)
		out.Sentences[si] = expanded
	}
	return out, audit
}

// auditEntry renders one resolution as an audit log row.
func (w *Writer) auditEntry(res acronym.Resolution) acronym.AuditEntry {
	return acronym.AuditEntry{
		RunID:       w.runID,
		Acronym:     res.Token.Surface,
		DocumentID:  res.Token.DocumentID,
		SentenceID:  res.Token.SentenceID,
		Offset:      res.Token.Offset,
		Outcome:     res.Outcome.String(),
		PrototypeID: res.PrototypeID,
		Expansion:   res.Expansion,
		Confidence:  res.Confidence,
	}
}

// expansionWords splits a resolution's normalized expansion into tokens.
func expansionWords(res acronym.Resolution) []string {
	var out []string
	start := -1
	for i, r := range res.Expansion {
		if r == ' ' {
			if start >= 0 {
				out = append(out, res.Expansion[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, res.Expansion[start:])
	}
	return out
}

func copySentence(sent document.Sentence) document.Sentence {
	out := document.Sentence{ID: sent.ID, Tokens: make([]document.Token, len(sent.Tokens))}
	copy(out.Tokens, sent.Tokens)
	return out
}

// renumber reassigns sequential offsets after substitution changed the
// token count.
func renumber(sent *document.Sentence) {
	for i := range sent.Tokens {
		sent.Tokens[i].Offset = i
	}
}
