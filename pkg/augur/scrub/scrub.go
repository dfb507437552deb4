// Package scrub strips HTML markup from inbound wire text so the segmenter
// sees plain prose. News feeds routinely embed tags and entities in story
// bodies.
package scrub

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags whose boundaries separate prose, mapped to the break they introduce.
var blockBreak = map[string]string{
	"p": "\n\n", "div": "\n\n", "li": "\n\n", "tr": "\n\n",
	"h1": "\n\n", "h2": "\n\n", "h3": "\n\n", "h4": "\n\n",
	"h5": "\n\n", "h6": "\n\n", "blockquote": "\n\n",
	"br": "\n",
}

// Tags whose text content is not prose and is dropped entirely.
var skipContent = map[string]struct{}{
	"script": {}, "style": {},
}

// Text returns the plain-text content of raw, with block-level tag
// boundaries rendered as paragraph breaks and entities decoded. Text without
// markup passes through unchanged.
func Text(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return raw
	}

	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	skipDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way nothing more to read.
			return strings.TrimSpace(buf.String())
		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if brk, ok := blockBreak[tag]; ok {
				buf.WriteString(brk)
			}
			if _, skip := skipContent[tag]; skip {
				if tt == html.StartTagToken {
					skipDepth++
				} else if tt == html.EndTagToken && skipDepth > 0 {
					skipDepth--
				}
			}
		}
	}
}
