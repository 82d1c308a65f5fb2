package corpus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

func TestReadDocuments(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"doc-1","sentences":[["The","WHO","met","."],["Talks","continued","."]]}`,
		``,
		`{"id":"doc-2","sentences":[["NASA","launched","."]]}`,
	}, "\n")

	docs, err := ReadDocuments(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "doc-1", docs[0].ID)
	require.Len(t, docs[0].Sentences, 2)
	assert.Equal(t, 1, docs[0].Sentences[0].ID)
	assert.Equal(t, 2, docs[0].Sentences[1].ID)
	assert.Equal(t, []string{"The", "WHO", "met", "."}, docs[0].Sentences[0].Texts())
	assert.Equal(t, document.Token{Text: "WHO", Offset: 1}, docs[0].Sentences[0].Tokens[1])

	assert.Equal(t, "doc-2", docs[1].ID)
}

func TestReadDocumentsMalformedLine(t *testing.T) {
	input := `{"id":"doc-1","sentences":[["fine"]]}` + "\n" + `{not json`

	_, err := ReadDocuments(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCorpusRead))
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadDocumentsEmpty(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWriteDocumentsRoundTrip(t *testing.T) {
	docs := []document.Document{
		{ID: "doc-1", Sentences: []document.Sentence{
			{ID: 1, Tokens: []document.Token{
				{Text: "world", Offset: 0},
				{Text: "health", Offset: 1},
				{Text: "organization", Offset: 2},
			}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDocuments(&buf, docs))

	back, err := ReadDocuments(&buf)
	require.NoError(t, err)
	assert.Equal(t, docs, back)
}

func TestWriteAudit(t *testing.T) {
	entries := []acronym.AuditEntry{
		{RunID: "run-1", Acronym: "WHO", DocumentID: "doc-1", SentenceID: 1, Offset: 5,
			Outcome: "defined", PrototypeID: "WHO#1", Expansion: "world health organization", Confidence: 1.0},
		{RunID: "run-1", Acronym: "NASA", DocumentID: "doc-1", SentenceID: 2, Offset: 0,
			Outcome: "unresolved"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAudit(&buf, entries))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"prototype_id":"WHO#1"`)
	assert.Contains(t, lines[1], `"outcome":"unresolved"`)
	assert.NotContains(t, lines[1], "prototype_id")
}
