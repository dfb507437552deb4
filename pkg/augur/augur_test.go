package augur

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/civicsignal/augur/pkg/augur/internalerr"
	"github.com/civicsignal/augur/pkg/augur/pipeline"
	"github.com/civicsignal/augur/pkg/augur/store/memstore"
)

type stubParser struct {
	tree string
	fail *pipeline.Failure
}

func (s stubParser) Parse(ctx context.Context, sentence string) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	return s.tree, nil
}

type stubCoder struct {
	out pipeline.CodeOutput
}

func (s stubCoder) Code(ctx context.Context, tree string) (pipeline.CodeOutput, error) {
	return s.out, nil
}

func oneEvent() pipeline.CodeOutput {
	return pipeline.CodeOutput{
		Events: []pipeline.Event{{Source: "GOV", Target: "REB", Code: "190"}},
	}
}

func TestExtractTwoSentences(t *testing.T) {
	engine := New(Options{
		Parser: stubParser{tree: "(ROOT (NP A ) )"},
		Coder:  stubCoder{out: oneEvent()},
	})
	defer engine.Close()

	result, err := engine.Extract(context.Background(), Document{ID: "x1", Date: "20010101", Text: "A. B."})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if result.Meta.Date != "20010101" {
		t.Errorf("meta date: got %q", result.Meta.Date)
	}
	if len(result.Sents) != 2 {
		t.Fatalf("want 2 sentences, got %d", len(result.Sents))
	}
	for i, content := range []string{"A.", "B."} {
		r := result.Sents[i]
		if r.Failed {
			t.Fatalf("sentence %d failed: %+v", i, r)
		}
		if r.Content != content {
			t.Errorf("sentence %d content: got %q want %q", i, r.Content, content)
		}
		if len(r.Events) != 1 {
			t.Errorf("sentence %d: want exactly one event, got %d", i, len(r.Events))
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, `{"x1":`) {
		t.Errorf("result must be keyed by document id: %s", out)
	}
	if !strings.Contains(out, `"0":`) || !strings.Contains(out, `"1":`) {
		t.Errorf("sents must have keys 0 and 1: %s", out)
	}
}

func TestExtractEmptyText(t *testing.T) {
	engine := New(Options{
		Parser: stubParser{tree: "(ROOT )"},
		Coder:  stubCoder{out: oneEvent()},
	})
	defer engine.Close()

	result, err := engine.Extract(context.Background(), Document{ID: "x2", Date: "20010101", Text: ""})
	if err != nil {
		t.Fatalf("empty text is a valid document: %v", err)
	}
	if len(result.Sents) != 0 {
		t.Fatalf("want zero sentences, got %d", len(result.Sents))
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"sents":{}`) {
		t.Errorf("empty sents must serialize as {}: %s", data)
	}
}

func TestExtractMissingID(t *testing.T) {
	engine := New(Options{
		Parser: stubParser{tree: "(ROOT )"},
		Coder:  stubCoder{out: oneEvent()},
	})
	defer engine.Close()

	_, err := engine.Extract(context.Background(), Document{Date: "20010101", Text: "A."})
	if err == nil {
		t.Fatal("want error for missing id")
	}
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("want invalid input error, got %v", err)
	}
}

func TestExtractAllTimeouts(t *testing.T) {
	engine := New(Options{
		Parser: stubParser{fail: &pipeline.Failure{Stage: "parse", Reason: pipeline.ReasonTimeout}},
		Coder:  stubCoder{out: oneEvent()},
	})
	defer engine.Close()

	result, err := engine.Extract(context.Background(), Document{ID: "x3", Date: "20010101", Text: "A. B. C."})
	if err != nil {
		t.Fatalf("sentence timeouts must not fail the document: %v", err)
	}
	if len(result.Sents) == 0 {
		t.Fatal("want sentences in result")
	}
	for i, r := range result.Sents {
		if !r.Failed || r.Reason != pipeline.ReasonTimeout {
			t.Errorf("sentence %d: want timeout failure, got %+v", i, r)
		}
	}
}

func TestExtractScrubsHTML(t *testing.T) {
	engine := New(Options{
		Parser:    stubParser{tree: "(ROOT )"},
		Coder:     stubCoder{out: oneEvent()},
		ScrubHTML: true,
	})
	defer engine.Close()

	result, err := engine.Extract(context.Background(), Document{
		ID:   "x4",
		Date: "20010101",
		Text: "<p>Rebels attacked the garrison.</p><p>Troops responded in force.</p>",
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Sents) != 2 {
		t.Fatalf("want 2 sentences, got %d", len(result.Sents))
	}
	for i, r := range result.Sents {
		if strings.Contains(r.Content, "<") {
			t.Errorf("sentence %d: markup leaked into content %q", i, r.Content)
		}
	}
}

func TestExtractArchivesRecord(t *testing.T) {
	archive := memstore.New()
	engine := New(Options{
		Parser:  stubParser{tree: "(ROOT )"},
		Coder:   stubCoder{out: oneEvent()},
		Archive: archive,
	})
	defer engine.Close()

	ctx := context.Background()
	if _, err := engine.Extract(ctx, Document{ID: "x5", Date: "20010101", Text: "A. B."}); err != nil {
		t.Fatalf("extract: %v", err)
	}

	records, err := archive.ListRecords(ctx, "x5", 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("want 1 archive record, got %d", len(records))
	}
	r := records[0]
	if r.SentenceCount != 2 || r.FailedCount != 0 {
		t.Errorf("record counts: %+v", r)
	}
	full, ok, err := archive.GetRecord(ctx, r.ID)
	if err != nil || !ok {
		t.Fatalf("get record: ok=%v err=%v", ok, err)
	}
	if len(full.Events) != 2 {
		t.Errorf("want 2 flattened events, got %d", len(full.Events))
	}
}
