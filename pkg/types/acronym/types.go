// Package acronym defines the data model of the detection and expansion
// engine: acronym occurrences, candidate definition phrases, alignment
// results, expansion prototypes, and resolution outcomes.
package acronym

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Occurrences and candidates
// ─────────────────────────────────────────────────────────────────────────────

// Token is an acronym-shaped token located in a document.  Immutable once
// extracted.
type Token struct {
	// Surface is the exact token text; registry keys are case-sensitive
	// ("US" and "us" are different keys).
	Surface    string `json:"surface"`
	DocumentID string `json:"document_id"`
	SentenceID int    `json:"sentence_id"`
	Offset     int    `json:"offset"`
}

// Location renders the occurrence position as "doc:sentence:offset" for
// logs and audit entries.
func (t Token) Location() string {
	return fmt.Sprintf("%s:%d:%d", t.DocumentID, t.SentenceID, t.Offset)
}

// Orientation records which documentary convention produced a candidate.
type Orientation int

const (
	// PhraseThenAcronym is the "expansion (ACRONYM)" pattern: the phrase
	// precedes a trailing parenthesized acronym.
	PhraseThenAcronym Orientation = iota

	// AcronymThenPhrase is the "ACRONYM (expansion)" pattern.
	AcronymThenPhrase
)

func (o Orientation) String() string {
	switch o {
	case PhraseThenAcronym:
		return "phrase_then_acronym"
	case AcronymThenPhrase:
		return "acronym_then_phrase"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// CandidatePhrase is a contiguous token run proposed as a possible
// definition of a nearby acronym occurrence.
type CandidatePhrase struct {
	Words       []string    `json:"words"`
	SentenceID  int         `json:"sentence_id"`
	Offset      int         `json:"offset"`
	Orientation Orientation `json:"orientation"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Alignment
// ─────────────────────────────────────────────────────────────────────────────

// LetterMatch records one acronym letter consumed against a phrase word.
// SubwordIndex is zero for plain initial-letter matches and positive when
// the letter matched the initial of a sub-word inside a hyphenated or
// compound word.
type LetterMatch struct {
	Letter       rune `json:"letter"`
	WordIndex    int  `json:"word_index"`
	SubwordIndex int  `json:"subword_index"`
}

// AlignmentResult is the outcome of scoring one (Token, CandidatePhrase)
// pair.  Accepted is true only when every acronym letter was matched and
// Confidence cleared the configured threshold.
type AlignmentResult struct {
	Confidence    float64       `json:"confidence"`
	Matches       []LetterMatch `json:"matches"`
	WordsConsumed int           `json:"words_consumed"`
	WordsSkipped  int           `json:"words_skipped"`
	Accepted      bool          `json:"accepted"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Prototypes
// ─────────────────────────────────────────────────────────────────────────────

// Occurrence is one piece of supporting evidence for a prototype: where a
// definition was found and how well it aligned.
type Occurrence struct {
	DocumentID string  `json:"document_id"`
	SentenceID int     `json:"sentence_id"`
	Offset     int     `json:"offset"`
	Confidence float64 `json:"confidence"`
}

// Prototype is one distinct expansion meaning of an acronym within a corpus
// run.  Expansion holds the normalized text (lowercase, single-spaced);
// Words holds the same text split into tokens for substitution into the
// output stream.  Every prototype carries at least one occurrence.
type Prototype struct {
	// ID is stable within the acronym's prototype set; it is derived from
	// the acronym surface and the insertion index, e.g. "PPP#1".
	ID          string       `json:"id"`
	Acronym     string       `json:"acronym"`
	Expansion   string       `json:"expansion"`
	Words       []string     `json:"words"`
	Occurrences []Occurrence `json:"occurrences"`

	// Aggregate is the combined confidence over all supporting
	// occurrences per the registry's aggregation policy.  It never
	// decreases as occurrences are added.
	Aggregate float64 `json:"aggregate"`
}

// Support returns the number of supporting occurrences.
func (p *Prototype) Support() int {
	return len(p.Occurrences)
}

// PrototypeID builds the stable identifier for the n-th prototype (zero
// based insertion index) of an acronym.
func PrototypeID(acronym string, index int) string {
	return fmt.Sprintf("%s#%d", acronym, index+1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Resolution
// ─────────────────────────────────────────────────────────────────────────────

// Outcome classifies how an acronym occurrence was handled.
type Outcome int

const (
	// OutcomeDefined: a local parenthetical definition aligned and the
	// occurrence was expanded from its own definition.
	OutcomeDefined Outcome = iota

	// OutcomeResolved: no local definition; the occurrence was resolved
	// against the corpus-wide registry.
	OutcomeResolved

	// OutcomeUnresolved: no prototype exists anywhere in the corpus; the
	// token is left unchanged and flagged.
	OutcomeUnresolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDefined:
		return "defined"
	case OutcomeResolved:
		return "resolved"
	case OutcomeUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Resolution ties an occurrence to its outcome.  PrototypeID, Expansion, and
// Confidence are zero-valued for OutcomeUnresolved.
type Resolution struct {
	Token       Token   `json:"token"`
	Outcome     Outcome `json:"outcome"`
	PrototypeID string  `json:"prototype_id,omitempty"`
	Expansion   string  `json:"expansion,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// AuditEntry is one row of the run's traceability log: exactly one entry is
// produced per acronym occurrence, whatever the outcome.
type AuditEntry struct {
	RunID       string  `json:"run_id"`
	Acronym     string  `json:"acronym"`
	DocumentID  string  `json:"document_id"`
	SentenceID  int     `json:"sentence_id"`
	Offset      int     `json:"offset"`
	Outcome     string  `json:"outcome"`
	PrototypeID string  `json:"prototype_id,omitempty"`
	Expansion   string  `json:"expansion,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}
