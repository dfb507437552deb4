// Package pipeline fans a document's sentences out to the external parsing
// and coding services and reassembles the per-sentence outcomes into a
// complete, order-correct document result.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// Aggregator runs the per-document fan-out/fan-in. Sentence failures are
// recorded in the result, never escalated: a document whose every sentence
// fails still yields a DocumentResult.
type Aggregator struct {
	parser   Parser
	coder    Coder
	workers  int
	deadline time.Duration
}

// Options configures an Aggregator.
type Options struct {
	Parser Parser
	Coder  Coder

	// Workers bounds concurrent sentence processing within one document.
	// Zero means the default.
	Workers int

	// Deadline bounds total processing time for one document. Zero disables
	// it. Sentences still unresolved when it fires are marked failed with
	// reason "deadline-exceeded"; resolved siblings keep their results.
	Deadline time.Duration
}

// New creates an Aggregator with the given dependencies.
func New(opts Options) *Aggregator {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Aggregator{
		parser:   opts.Parser,
		coder:    opts.Coder,
		workers:  workers,
		deadline: opts.Deadline,
	}
}

// Run processes the segmented sentences of one document and returns its
// aggregated result. The sents mapping is keyed {0..len(sentences)-1} with
// exactly one entry per sentence regardless of completion order or failure.
// Each sentence index is written by exactly one worker; no state is shared
// across calls.
func (a *Aggregator) Run(ctx context.Context, id, date string, sentences []string) *DocumentResult {
	if a.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.deadline)
		defer cancel()
	}

	results := make([]SentenceResult, len(sentences))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, content := range sentences {
		i, content := i, content
		g.Go(func() error {
			results[i] = processSentence(ctx, a.parser, a.coder, i, content)
			return nil
		})
	}
	// Workers never return errors; failures land in their result slot.
	_ = g.Wait()

	sents := make(SentenceMap, len(results))
	for i, r := range results {
		sents[i] = r
	}
	return &DocumentResult{ID: id, Meta: Meta{Date: date}, Sents: sents}
}
