// Package segment splits news-style text into an ordered sequence of
// sentences. Breaks occur at terminal punctuation followed by whitespace and
// an uppercase letter or quote, with suppression for known abbreviations,
// single initials, and unbalanced parentheses or quotation marks. Paragraph
// boundaries (blank lines) always break.
package segment

import (
	"regexp"
	"strings"
)

var (
	terminal  = regexp.MustCompile(`[.?!]\s+["A-Z]`)
	paragraph = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
)

// Titles, ranks, and measurement abbreviations that end with a period but do
// not terminate a sentence.
var defaultAbbreviations = []string{
	"mrs.", "ms.", "mr.", "dr.", "gov.", "sr.", "rev.", "r.n.",
	"pres.", "treas.", "sect.", "maj.", "ph.d.", "ed. psy.",
	"proc.", "fr.", "asst.", "p.f.c.", "prof.", "admr.",
	"engr.", "mgr.", "supt.", "admin.", "assoc.", "voc.",
	"hon.", "m.d.", "dpty.", "sec.", "capt.", "c.e.o.",
	"c.f.o.", "c.i.o.", "c.o.o.", "c.p.a.", "c.n.a.", "acct.",
	"llc.", "inc.", "dir.", "esq.", "lt.", "d.d.", "ed.",
	"revd.", "psy.d.", "v.p.", "senr.", "gen.", "prov.",
	"cmdr.", "sgt.", "sen.", "col.", "lieut.", "cpl.", "pfc.",
	"k.p.h.", "cent.", "deg.", "doz.", "fahr.", "cel.", "f.",
	"c.", "k.", "ft.", "fur.", "gal.", "gr.", "in.", "kg.",
	"km.", "kw.", "l.", "lat.", "lb.", "long.", "mg.", "mm.",
	"m.p.g.", "m.p.h.", "cc.", "qr.", "qt.", "sq.",
	"t.", "vol.", "w.", "wt.",
}

// Segmenter splits document text into sentences. Safe for concurrent use.
type Segmenter struct {
	abbrevs map[string]struct{}
}

// New creates a Segmenter with the default abbreviation list plus any extra
// abbreviations (matched case-insensitively, trailing period included).
func New(extra ...string) *Segmenter {
	abbrevs := make(map[string]struct{}, len(defaultAbbreviations)+len(extra))
	for _, a := range defaultAbbreviations {
		abbrevs[a] = struct{}{}
	}
	for _, a := range extra {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			abbrevs[a] = struct{}{}
		}
	}
	return &Segmenter{abbrevs: abbrevs}
}

// Split returns the sentences of text in source order. Empty or
// whitespace-only text yields zero sentences. Trailing content without
// terminal punctuation is kept as a final sentence.
func (s *Segmenter) Split(text string) []string {
	var sentences []string
	for _, para := range paragraph.Split(text, -1) {
		sentences = s.splitParagraph(para, sentences)
	}
	return sentences
}

func (s *Segmenter) splitParagraph(p string, out []string) []string {
	search := 0
	for {
		m := terminal.FindStringIndex(p[search:])
		if m == nil {
			break
		}
		start := search + m[0]
		end := search + m[1]

		ok := true
		if p[start] == '.' {
			if start >= 2 && isUpper(p[start-1]) && p[start-2] == ' ' {
				// single initial, as in "John F. Kennedy"
				ok = false
			} else if _, abbr := s.abbrevs[strings.ToLower(lastWord(p, start))]; abbr {
				ok = false
			}
		}
		if strings.Count(p[:start], "(") != strings.Count(p[:start], ")") {
			ok = false
		}
		if strings.Count(p[:start], `"`)%2 != 0 {
			ok = false
		}

		if ok {
			if sent := strings.TrimSpace(p[:start+1]); sent != "" {
				out = append(out, sent)
			}
			p = p[end-1:]
			search = 0
		} else {
			search = start + 2
		}
	}
	if rest := strings.TrimSpace(p); rest != "" {
		out = append(out, rest)
	}
	return out
}

// lastWord returns the word ending at the terminal punctuation, period
// included, for the abbreviation check.
func lastWord(p string, start int) string {
	sp := strings.LastIndex(p[:start], " ")
	return p[sp+1 : start+1]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
