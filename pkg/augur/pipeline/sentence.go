package pipeline

import "context"

// Parser obtains a constituency parse for one sentence from the external
// parsing service. One outbound call per invocation; no internal retry.
type Parser interface {
	Parse(ctx context.Context, sentence string) (string, error)
}

// Coder converts one parsed sentence into event tuples and issue tags via
// the external coding engine. Never called for a sentence whose parse
// failed; the processor enforces that ordering.
type Coder interface {
	Code(ctx context.Context, tree string) (CodeOutput, error)
}

// processSentence drives one sentence through parse then code and produces
// its terminal result. Pending → Parsing → {ParseFailed | Parsed} →
// {Coding → {CodeFailed | Coded}}; a parse failure short-circuits coding.
func processSentence(ctx context.Context, parser Parser, coder Coder, index int, content string) SentenceResult {
	failed := func(reason string) SentenceResult {
		return SentenceResult{Index: index, Content: content, Failed: true, Reason: reason}
	}

	if ctx.Err() != nil {
		return failed(ReasonDeadline)
	}

	tree, err := parser.Parse(ctx, content)
	if err != nil {
		return failed(failureReason(ctx, err))
	}

	out, err := coder.Code(ctx, tree)
	if err != nil {
		return failed(failureReason(ctx, err))
	}

	return SentenceResult{
		Index:   index,
		Content: content,
		Parsed:  tree,
		Events:  out.Events,
		Issues:  out.Issues,
	}
}
