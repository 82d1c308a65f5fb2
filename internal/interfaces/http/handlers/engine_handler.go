package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/AcroLex/internal/application/expansion"
	"github.com/turtacn/AcroLex/internal/engine/aligner"
	"github.com/turtacn/AcroLex/internal/infrastructure/cache"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/pkg/errors"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// EngineHandler serves corpus expansion, registry lookups, and ad-hoc
// alignment scoring.  It keeps the most recent run's registry as the served
// snapshot; lookup traffic reads that snapshot, optionally through the
// redis cache.
type EngineHandler struct {
	svc    *expansion.Service
	align  *aligner.Aligner
	lookup *cache.LookupCache
	logger logging.Logger

	mu    sync.RWMutex
	runID string
	reg   snapshot
}

// snapshot is the read surface lookups need.
type snapshot interface {
	Acronyms() []string
	Lookup(surface string) []acronym.Prototype
}

// NewEngineHandler wires an EngineHandler.  lookup may be nil (no cache).
func NewEngineHandler(svc *expansion.Service, align *aligner.Aligner, lookup *cache.LookupCache, logger logging.Logger) *EngineHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EngineHandler{svc: svc, align: align, lookup: lookup, logger: logger}
}

// documentPayload mirrors the JSONL corpus line format.
type documentPayload struct {
	ID        string     `json:"id"`
	Sentences [][]string `json:"sentences"`
}

// ExpandRequest is the POST /expand body.
type ExpandRequest struct {
	Documents []documentPayload `json:"documents" binding:"required"`
}

// Expand answers POST /api/v1/expand: runs the engine over the posted
// corpus, returns the expanded documents with the audit log, and installs
// the run's registry as the served snapshot.
func (h *EngineHandler) Expand(c *gin.Context) {
	var req ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid expand request"))
		return
	}

	docs := make([]document.Document, len(req.Documents))
	for i, p := range req.Documents {
		docs[i] = toDocument(p)
	}

	result, err := h.svc.Run(c.Request.Context(), docs)
	if err != nil && result == nil {
		writeError(c, err)
		return
	}
	if err != nil {
		// Side effects failed but the run itself completed; serve the
		// result and let the archive be retried out of band.
		h.logger.Warn("run side effects failed", logging.Err(err))
	}

	h.mu.Lock()
	h.runID = result.RunID
	h.reg = result.Registry
	h.mu.Unlock()

	out := make([]documentPayload, len(result.Documents))
	for i, doc := range result.Documents {
		out[i] = fromDocument(doc)
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":    result.RunID,
		"documents": out,
		"audit":     result.Audit,
		"stats":     result.Stats,
	})
}

// Acronyms answers GET /api/v1/acronyms with the served snapshot's surface
// forms.
func (h *EngineHandler) Acronyms(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.reg == nil {
		c.JSON(http.StatusOK, gin.H{"acronyms": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": h.runID, "acronyms": h.reg.Acronyms()})
}

// Lookup answers GET /api/v1/acronyms/:surface with the prototype list,
// best-ranked first.
func (h *EngineHandler) Lookup(c *gin.Context) {
	surface := c.Param("surface")

	h.mu.RLock()
	runID, reg := h.runID, h.reg
	h.mu.RUnlock()
	if reg == nil {
		writeError(c, errors.New(errors.CodeAcronymUnknown, "no corpus has been processed"))
		return
	}

	var protos []acronym.Prototype
	if h.lookup != nil {
		var err error
		protos, err = h.lookup.Lookup(c.Request.Context(), runID, surface,
			func(_ context.Context, _, s string) ([]acronym.Prototype, error) {
				return reg.Lookup(s), nil
			})
		if err != nil {
			writeError(c, err)
			return
		}
	} else {
		protos = reg.Lookup(surface)
	}

	if len(protos) == 0 {
		writeError(c, errors.New(errors.CodeAcronymUnknown, "acronym has no prototypes").WithDetail(surface))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "acronym": surface, "prototypes": protos})
}

// ScoreRequest is the POST /score body.
type ScoreRequest struct {
	Acronym string   `json:"acronym" binding:"required"`
	Phrase  []string `json:"phrase" binding:"required"`
}

// Score answers POST /api/v1/score with the alignment verdict for an
// ad-hoc acronym/phrase pair.
func (h *EngineHandler) Score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid score request"))
		return
	}
	c.JSON(http.StatusOK, h.align.Align(req.Acronym, req.Phrase))
}

// writeError renders an AppError with its mapped status code.
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(code.HTTPStatus(), gin.H{
		"code":    string(code),
		"message": err.Error(),
	})
}

func toDocument(p documentPayload) document.Document {
	doc := document.Document{ID: p.ID}
	for si, words := range p.Sentences {
		sent := document.Sentence{ID: si + 1}
		for i, w := range words {
			sent.Tokens = append(sent.Tokens, document.Token{Text: w, Offset: i})
		}
		doc.Sentences = append(doc.Sentences, sent)
	}
	return doc
}

func fromDocument(doc document.Document) documentPayload {
	p := documentPayload{ID: doc.ID, Sentences: make([][]string, len(doc.Sentences))}
	for si, sent := range doc.Sentences {
		p.Sentences[si] = sent.Texts()
	}
	return p
}
