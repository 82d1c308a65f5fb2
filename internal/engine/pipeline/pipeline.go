// Package pipeline orchestrates a corpus run: document-parallel scanning,
// registry-serial prototype commits, a global resolution barrier, and
// expansion writing.
//
// The concurrency model follows the "many readers, one writer stream"
// pattern: scan workers are pure functions over single documents; their
// results are funneled to one committing goroutine that applies them to the
// shared registry in document input order.  Input-order commits make the
// registry — and therefore every downstream resolution and audit entry —
// identical across runs regardless of worker count or scheduling.
package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/AcroLex/internal/config"
	"github.com/turtacn/AcroLex/internal/engine/aligner"
	"github.com/turtacn/AcroLex/internal/engine/extractor"
	"github.com/turtacn/AcroLex/internal/engine/registry"
	"github.com/turtacn/AcroLex/internal/engine/resolver"
	"github.com/turtacn/AcroLex/internal/engine/writer"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
	"github.com/turtacn/AcroLex/pkg/types/document"
)

// Stats summarizes one corpus run.
type Stats struct {
	Documents       int `json:"documents"`
	FailedDocuments int `json:"failed_documents"`
	Occurrences     int `json:"occurrences"`
	Defined         int `json:"defined"`
	Resolved        int `json:"resolved"`
	Unresolved      int `json:"unresolved"`
	Acronyms        int `json:"acronyms"`
	Prototypes      int `json:"prototypes"`
}

// Result carries everything a corpus run produces: the expanded documents
// in input order, the audit log in document/sentence/offset order, the
// finalized registry, and summary statistics.
type Result struct {
	RunID     string
	Documents []document.Document
	Audit     []acronym.AuditEntry
	Registry  *registry.Registry
	Stats     Stats
}

// Pipeline is a reusable corpus-run engine.  It is configured once; each
// Run constructs a fresh registry, so one Pipeline may process several
// corpora sequentially or concurrently without state bleeding between runs.
type Pipeline struct {
	cfg     config.EngineConfig
	ext     *extractor.Extractor
	align   *aligner.Aligner
	ranking resolver.RankingPolicy
	workers int
	logger  logging.Logger
	metrics *prometheus.EngineMetrics
}

// New builds a Pipeline from the engine configuration.  logger may be nil
// (no logging); metrics may be nil (no metrics).
func New(cfg config.EngineConfig, logger logging.Logger, metrics *prometheus.EngineMetrics) *Pipeline {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	pred := extractor.NewShapePredicate(cfg.Shape.MinLength, cfg.Shape.MaxLength, cfg.Shape.Exclusions)
	return &Pipeline{
		cfg:     cfg,
		ext:     extractor.New(pred, cfg.WindowSentences, logger.Named("extractor")),
		align:   aligner.New(cfg.Aligner),
		ranking: resolver.PolicyFor(cfg.RankingPolicy),
		workers: workers,
		logger:  logger,
		metrics: metrics,
	}
}

// SetAcceptThreshold changes the aligner's minimum confidence for new
// alignments.  Safe to call while a Run is in progress.
func (p *Pipeline) SetAcceptThreshold(t float64) {
	p.align.SetAcceptThreshold(t)
}

// occRecord is one acronym occurrence with its scan-phase evidence and, for
// accepted local definitions, the prototype id assigned at commit time.
type occRecord struct {
	cand      extractor.Candidate
	alignment acronym.AlignmentResult
	protoID   string
}

// docScan is the outcome of scanning one document.  Failed scans carry the
// error and are isolated: nothing from them reaches the registry.
type docScan struct {
	index int
	occs  []*occRecord
	err   error
}

// Run processes docs end to end.  It honors ctx cancellation between
// documents; on cancellation the error is ctx.Err() and the partial result
// is discarded.
func (p *Pipeline) Run(ctx context.Context, docs []document.Document) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.With(logging.String("run_id", runID))
	log.Info("corpus run starting",
		logging.Int("documents", len(docs)),
		logging.Int("workers", p.workers))

	reg := registry.New(registry.MaxAggregation{}, registry.MergePolicyFor(p.cfg.MergePolicy), log.Named("registry"))
	scans := make([]*docScan, len(docs))

	// Phase 1+2: parallel scans feeding the single committing goroutine.
	if err := p.scanAndCommit(ctx, docs, reg, scans, log); err != nil {
		return nil, err
	}

	// Barrier passed: the registry is final.  An acronym defined in the
	// last document now resolves occurrences in the first.
	res := resolver.New(p.ranking)
	wr := writer.New(runID, log.Named("writer"))

	result := &Result{
		RunID:     runID,
		Documents: make([]document.Document, len(docs)),
		Registry:  reg,
	}
	result.Stats.Documents = len(docs)

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scan := scans[i]
		if scan.err != nil {
			// Isolated failure: pass the document through untouched.
			result.Stats.FailedDocuments++
			result.Documents[i] = doc
			log.Error("document excluded from run",
				logging.String("document_id", doc.ID),
				logging.Err(scan.err))
			continue
		}

		resolutions := make([]acronym.Resolution, 0, len(scan.occs))
		for _, occ := range scan.occs {
			resolutions = append(resolutions, p.resolve(occ, reg, res))
		}
		expanded, audit := wr.ExpandDocument(doc, resolutions)
		result.Documents[i] = expanded
		result.Audit = append(result.Audit, audit...)

		for _, r := range resolutions {
			result.Stats.Occurrences++
			p.metrics.ObserveResolution(r.Outcome.String())
			switch r.Outcome {
			case acronym.OutcomeDefined:
				result.Stats.Defined++
			case acronym.OutcomeResolved:
				result.Stats.Resolved++
			case acronym.OutcomeUnresolved:
				result.Stats.Unresolved++
			}
		}
	}

	result.Stats.Acronyms = reg.Len()
	result.Stats.Prototypes = reg.PrototypeCount()
	if p.metrics != nil {
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}
	log.Info("corpus run finished",
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("occurrences", result.Stats.Occurrences),
		logging.Int("unresolved", result.Stats.Unresolved),
		logging.Int("prototypes", result.Stats.Prototypes))
	return result, nil
}

// scanAndCommit runs the document-parallel scan phase and the serial commit
// stream, returning after every document has been scanned and every
// accepted alignment committed.
func (p *Pipeline) scanAndCommit(ctx context.Context, docs []document.Document, reg *registry.Registry, scans []*docScan, log logging.Logger) error {
	jobs := make(chan int)
	results := make(chan *docScan, p.workers)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- p.scanDocument(docs[i], i)
			}
		}()
	}

	committerDone := make(chan struct{})
	go func() {
		defer close(committerDone)
		// Reorder buffer: commits are applied strictly in document
		// input order so that prototype ids and merge decisions do
		// not depend on scheduling.
		pending := make(map[int]*docScan, p.workers)
		next := 0
		for scan := range results {
			pending[scan.index] = scan
			for {
				s, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				p.commit(s, reg, log)
				scans[s.index] = s
				next++
			}
		}
		// Anything still pending belongs to documents skipped by
		// cancelled workers; keep what arrived for completeness.
		for idx, s := range pending {
			p.commit(s, reg, log)
			scans[idx] = s
		}
	}()

	feed := func() error {
		defer close(jobs)
		for i := range docs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	err := feed()
	wg.Wait()
	close(results)
	<-committerDone
	if err != nil {
		return err
	}
	return ctx.Err()
}

// scanDocument extracts and scores one document.  It is a pure function of
// the document and runs concurrently with other scans.
func (p *Pipeline) scanDocument(doc document.Document, index int) *docScan {
	start := time.Now()
	scan := &docScan{index: index}

	cands, err := p.ext.ExtractDocument(doc)
	if err != nil {
		scan.err = err
		if p.metrics != nil {
			p.metrics.DocumentsFailed.Inc()
		}
		return scan
	}

	for _, cand := range cands {
		occ := &occRecord{cand: cand}
		if cand.Defined() {
			occ.alignment = p.align.Align(cand.Acronym.Surface, cand.Phrase.Words)
			p.metrics.ObserveAlignment(occ.alignment.Accepted)
		}
		scan.occs = append(scan.occs, occ)
	}

	if p.metrics != nil {
		p.metrics.DocumentsScanned.Inc()
		p.metrics.CandidatesFound.Add(float64(len(cands)))
		p.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}
	return scan
}

// commit applies one scanned document's accepted alignments to the shared
// registry.  Only the committing goroutine calls it, making the registry
// write path serial by construction.
func (p *Pipeline) commit(scan *docScan, reg *registry.Registry, log logging.Logger) {
	if scan.err != nil {
		return
	}
	for _, occ := range scan.occs {
		if !occ.alignment.Accepted {
			continue
		}
		id, created, err := reg.Record(occ.cand.Acronym, *occ.cand.Phrase, occ.alignment, occ.cand.Context)
		if err != nil {
			// Registry conflicts resolve internally; anything else
			// here is a programming fault worth surfacing loudly.
			log.Error("registry record failed",
				logging.String("occurrence", occ.cand.Acronym.Location()),
				logging.Err(err))
			continue
		}
		occ.protoID = id
		p.metrics.ObservePrototype(created)
	}
}

// resolve turns one occurrence record into a Resolution, using the local
// definition when one was accepted and deferred resolution otherwise.
func (p *Pipeline) resolve(occ *occRecord, reg *registry.Registry, res *resolver.Resolver) acronym.Resolution {
	if occ.alignment.Accepted && occ.protoID != "" {
		proto, ok := reg.Prototype(occ.cand.Acronym.Surface, occ.protoID)
		if ok {
			return acronym.Resolution{
				Token:       occ.cand.Acronym,
				Outcome:     acronym.OutcomeDefined,
				PrototypeID: proto.ID,
				Expansion:   proto.Expansion,
				Confidence:  occ.alignment.Confidence,
			}
		}
	}
	return res.Resolve(occ.cand.Acronym, reg, occ.cand.Context)
}
