package search

import (
	"strings"
	"unicode"
)

// stopWords are skipped when testing for verbatim query matches.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "but": true, "by": true, "do": true,
	"for": true, "from": true, "have": true, "in": true, "is": true,
	"it": true, "not": true, "of": true, "on": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "with": true,
	"you": true,
}

// terms lowercases text, strips surrounding punctuation, and drops
// stop words.
func terms(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		term := strings.TrimFunc(field, unicode.IsPunct)
		if term == "" || stopWords[term] {
			continue
		}
		out = append(out, term)
	}
	return out
}

// containsAllQueryWords reports whether every meaningful query word
// appears somewhere in the document text.
func containsAllQueryWords(document, query string) bool {
	queryTerms := terms(query)
	if len(queryTerms) == 0 {
		return false
	}

	present := make(map[string]bool)
	for _, term := range terms(document) {
		present[term] = true
	}
	for _, term := range queryTerms {
		if !present[term] {
			return false
		}
	}
	return true
}
