package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Event is one (source actor, target actor, event code) tuple extracted from
// a coded sentence. On the wire it is a three-element array, the form the
// coding engine emits.
type Event struct {
	Source string
	Target string
	Code   string
}

// MarshalJSON encodes the event as ["source","target","code"].
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{e.Source, e.Target, e.Code})
}

// UnmarshalJSON decodes a three-element array form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var tuple [3]string
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	e.Source, e.Target, e.Code = tuple[0], tuple[1], tuple[2]
	return nil
}

// Issue is a (topic code, mention count) annotation on a coded sentence.
// Wire form is a two-element array: ["ISSUE_CODE", count].
type Issue struct {
	Code  string
	Count int
}

// MarshalJSON encodes the issue as ["code",count].
func (i Issue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{i.Code, i.Count})
}

// UnmarshalJSON decodes the two-element array form.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("issue: want 2 elements, got %d", len(pair))
	}
	code, ok := pair[0].(string)
	if !ok {
		return fmt.Errorf("issue: code must be a string")
	}
	count, ok := pair[1].(float64)
	if !ok {
		return fmt.Errorf("issue: count must be a number")
	}
	i.Code = code
	i.Count = int(count)
	return nil
}

// CodeOutput is what the coding engine produces for one parsed sentence.
// Zero events with a nil error is a valid outcome: the sentence coded
// cleanly but contained no codable political event.
type CodeOutput struct {
	Events []Event
	Issues []Issue
}

// SentenceResult is the terminal outcome for one sentence: either the full
// parse/code payload or an explicit failure reason. Exactly one is produced
// per sentence index; failures are data, never request-level errors.
type SentenceResult struct {
	Index   int
	Content string
	Parsed  string
	Events  []Event
	Issues  []Issue
	Failed  bool
	Reason  string
}

// MarshalJSON emits the success shape {content,parsed,events,issues} or the
// failure shape {failed:true,reason}. Events and issues are always present
// on success so an empty coding result serializes as [].
func (r SentenceResult) MarshalJSON() ([]byte, error) {
	if r.Failed {
		return json.Marshal(struct {
			Failed bool   `json:"failed"`
			Reason string `json:"reason"`
		}{true, r.Reason})
	}
	events := r.Events
	if events == nil {
		events = []Event{}
	}
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(struct {
		Content string  `json:"content"`
		Parsed  string  `json:"parsed"`
		Events  []Event `json:"events"`
		Issues  []Issue `json:"issues"`
	}{r.Content, r.Parsed, events, issues})
}

// UnmarshalJSON accepts either shape back into the struct form.
func (r *SentenceResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content string  `json:"content"`
		Parsed  string  `json:"parsed"`
		Events  []Event `json:"events"`
		Issues  []Issue `json:"issues"`
		Failed  bool    `json:"failed"`
		Reason  string  `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Content = raw.Content
	r.Parsed = raw.Parsed
	r.Events = raw.Events
	r.Issues = raw.Issues
	r.Failed = raw.Failed
	r.Reason = raw.Reason
	return nil
}

// SentenceMap holds one result per sentence index. For a document with N
// sentences the key set is exactly {0..N-1}.
type SentenceMap map[int]SentenceResult

// MarshalJSON writes entries keyed by the decimal index in ascending numeric
// order, so repeated runs over the same input produce identical bytes. The
// stdlib map encoding sorts keys lexically, which misorders "10" before "2".
func (m SentenceMap) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for n, k := range keys {
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(k))
		buf.WriteString(`":`)
		entry, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the decimal-keyed object form.
func (m *SentenceMap) UnmarshalJSON(data []byte) error {
	var raw map[string]SentenceResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SentenceMap, len(raw))
	for k, v := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("sentence index %q: %w", k, err)
		}
		v.Index = idx
		out[idx] = v
	}
	*m = out
	return nil
}

// Meta carries document-level metadata echoed back to the caller.
type Meta struct {
	Date string `json:"date"`
}

// DocumentResult is the aggregated outcome for one document. It serializes
// as {"<doc id>": {"meta": {...}, "sents": {...}}}, keyed by the caller's
// correlation id.
type DocumentResult struct {
	ID    string
	Meta  Meta
	Sents SentenceMap
}

type documentBody struct {
	Meta  Meta        `json:"meta"`
	Sents SentenceMap `json:"sents"`
}

// MarshalJSON wraps the meta/sents body under the document id key.
func (d DocumentResult) MarshalJSON() ([]byte, error) {
	sents := d.Sents
	if sents == nil {
		sents = SentenceMap{}
	}
	body, err := json.Marshal(documentBody{d.Meta, sents})
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(d.ID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the single-key wrapper form.
func (d *DocumentResult) UnmarshalJSON(data []byte) error {
	var raw map[string]documentBody
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("document result: want exactly one id key, got %d", len(raw))
	}
	for id, body := range raw {
		d.ID = id
		d.Meta = body.Meta
		d.Sents = body.Sents
	}
	return nil
}
