// Package augur turns raw news-style text into coded political-event
// records. The engine segments a document into sentences, drives each
// sentence through an external parser and an external event coder, and
// aggregates the outcomes into one order-preserving document result.
package augur

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/civicsignal/augur/pkg/augur/internalerr"
	"github.com/civicsignal/augur/pkg/augur/pipeline"
	"github.com/civicsignal/augur/pkg/augur/scrub"
	"github.com/civicsignal/augur/pkg/augur/segment"
	"github.com/civicsignal/augur/pkg/augur/store"
)

// Document is one unit of caller-submitted text. All three fields are
// caller-owned; date is opaque to the engine.
type Document struct {
	ID   string
	Date string
	Text string
}

// Options configures an Engine.
type Options struct {
	Parser pipeline.Parser
	Coder  pipeline.Coder

	// Segmenter to use; nil means segment.New().
	Segmenter *segment.Segmenter

	// Archive receives one record per processed document. Nil disables
	// archiving. Archive errors are logged and dropped, never surfaced to
	// the caller.
	Archive store.Store

	// Workers bounds concurrent sentence processing per document.
	Workers int

	// DocumentDeadline bounds total processing of one document; zero
	// disables it.
	DocumentDeadline time.Duration

	// ScrubHTML strips markup from document text before segmentation.
	ScrubHTML bool

	// Logger used for archive warnings; nil means slog.Default().
	Logger *slog.Logger
}

// Engine is the document-level extraction facade.
type Engine struct {
	segmenter *segment.Segmenter
	agg       *pipeline.Aggregator
	archive   store.Store
	scrubHTML bool
	logger    *slog.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	seg := opts.Segmenter
	if seg == nil {
		seg = segment.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		segmenter: seg,
		agg: pipeline.New(pipeline.Options{
			Parser:   opts.Parser,
			Coder:    opts.Coder,
			Workers:  opts.Workers,
			Deadline: opts.DocumentDeadline,
		}),
		archive:   opts.Archive,
		scrubHTML: opts.ScrubHTML,
		logger:    logger,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Close releases the archive, if any.
func (e *Engine) Close() error {
	if e.archive != nil {
		return e.archive.Close()
	}
	return nil
}

// Extract processes one document and returns its aggregated result. Text may
// be empty (zero sentences is a valid document); per-sentence parse and code
// failures are recorded in the result, never returned as errors.
func (e *Engine) Extract(ctx context.Context, d Document) (*pipeline.DocumentResult, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("%w: document id required", internalerr.ErrInvalidInput)
	}

	text := d.Text
	if e.scrubHTML {
		text = scrub.Text(text)
	}
	sentences := e.segmenter.Split(text)

	result := e.agg.Run(ctx, d.ID, d.Date, sentences)

	if e.archive != nil {
		if err := e.archive.SaveRecord(ctx, e.record(d, result)); err != nil {
			e.logger.Warn("archive write failed", "doc_id", d.ID, "error", err)
		}
	}
	return result, nil
}

// record flattens a document result into an archive record.
func (e *Engine) record(d Document, result *pipeline.DocumentResult) store.Record {
	r := store.Record{
		ID:            e.newRecordID(),
		DocID:         d.ID,
		Date:          d.Date,
		ReceivedAt:    time.Now().UTC(),
		SentenceCount: len(result.Sents),
	}
	for i := 0; i < len(result.Sents); i++ {
		sr := result.Sents[i]
		if sr.Failed {
			r.FailedCount++
			continue
		}
		for _, ev := range sr.Events {
			r.Events = append(r.Events, store.Event{
				SentenceIndex: i,
				Source:        ev.Source,
				Target:        ev.Target,
				Code:          ev.Code,
			})
		}
	}
	return r
}

func (e *Engine) newRecordID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}
