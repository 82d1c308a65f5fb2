// Package document defines the wire types for the tokenized document stream
// consumed by the engine.  Tokenization, sentence splitting, and cleaning
// happen upstream; these types are the contract with those stages.
package document

// Token is a single surface token with its position inside its sentence.
// Offset is the zero-based token index, not a byte offset: upstream
// tokenizers disagree on byte accounting, but token positions survive every
// cleaning stage unchanged.
type Token struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Sentence is an ordered sequence of tokens.
type Sentence struct {
	ID     int     `json:"id"`
	Tokens []Token `json:"tokens"`
}

// Texts returns the surface texts of the sentence's tokens in order.
func (s Sentence) Texts() []string {
	out := make([]string, len(s.Tokens))
	for i, t := range s.Tokens {
		out[i] = t.Text
	}
	return out
}

// Document is an ordered sequence of sentences plus a corpus-unique id.
type Document struct {
	ID        string     `json:"id"`
	Sentences []Sentence `json:"sentences"`
}

// TokenCount returns the total number of tokens across all sentences.
func (d Document) TokenCount() int {
	n := 0
	for _, s := range d.Sentences {
		n += len(s.Tokens)
	}
	return n
}
