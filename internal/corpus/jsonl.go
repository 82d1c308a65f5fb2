// Package corpus reads and writes the engine's document interchange format:
// JSON Lines, one document per line, sentences as token arrays.  Upstream
// cleaning stages produce this format; the engine consumes it and writes
// expanded documents and audit logs back in the same framing.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// maxLineBytes bounds a single document line.  Documents are sentences, not
// whole books; 16 MiB leaves generous headroom.
const maxLineBytes = 16 << 20

// documentLine is the wire shape of one document.
type documentLine struct {
	ID        string     `json:"id"`
	Sentences [][]string `json:"sentences"`
}

// ReadDocuments decodes a JSONL stream into documents, preserving input
// order.  Sentence ids are assigned 1-based per document and token offsets
// 0-based per sentence.  A malformed line fails the whole read with the
// offending line number; partial corpora would silently skew corpus-wide
// resolution.
func ReadDocuments(r io.Reader) ([]document.Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var docs []document.Document
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line documentLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, errors.Wrap(err, errors.CodeCorpusRead,
				fmt.Sprintf("line %d: malformed document", lineNo))
		}
		docs = append(docs, toDocument(line))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCorpusRead, "reading corpus")
	}
	return docs, nil
}

func toDocument(line documentLine) document.Document {
	doc := document.Document{ID: line.ID}
	for si, words := range line.Sentences {
		sent := document.Sentence{ID: si + 1}
		for i, w := range words {
			sent.Tokens = append(sent.Tokens, document.Token{Text: w, Offset: i})
		}
		doc.Sentences = append(doc.Sentences, sent)
	}
	return doc
}

// WriteDocuments encodes docs as JSONL in input order.
func WriteDocuments(w io.Writer, docs []document.Document) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, doc := range docs {
		line := documentLine{ID: doc.ID, Sentences: make([][]string, len(doc.Sentences))}
		for si, sent := range doc.Sentences {
			line.Sentences[si] = sent.Texts()
		}
		if err := enc.Encode(line); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "writing corpus")
		}
	}
	return bw.Flush()
}

// WriteAudit encodes audit entries as JSONL, one entry per line, in the
// order produced by the run.
func WriteAudit(w io.Writer, entries []acronym.AuditEntry) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "writing audit log")
		}
	}
	return bw.Flush()
}
