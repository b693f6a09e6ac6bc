package rag

import (
	"regexp"
	"strings"
)

// DefaultMinOverlap is the share of answer content words that must appear in
// the retrieved context when strict grounding is enabled
const DefaultMinOverlap = 0.5

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

var groundingStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true, "were": true,
	"with": true, "that": true, "this": true, "from": true, "have": true, "has": true,
	"had": true, "not": true, "but": true, "you": true, "your": true, "our": true,
	"its": true, "they": true, "them": true, "their": true, "there": true, "here": true,
	"what": true, "which": true, "who": true, "how": true, "why": true, "when": true,
	"can": true, "could": true, "would": true, "should": true, "will": true, "does": true,
	"did": true, "been": true, "being": true, "into": true, "about": true, "also": true,
	"hello": true, "thank": true, "thanks": true, "please": true, "sure": true, "glad": true,
	"help": true, "question": true, "great": true, "based": true, "context": true,
	"according": true, "video": true, "transcript": true, "mentioned": true, "says": true,
}

// contentWords returns the lowercase words of text that carry meaning
func contentWords(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < 3 || groundingStopWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Overlap returns the fraction of answer content words that occur in the
// context. An answer without content words counts as fully grounded.
func Overlap(answer, context string) float64 {
	words := contentWords(answer)
	if len(words) == 0 {
		return 1
	}

	vocabulary := make(map[string]bool)
	for _, w := range contentWords(context) {
		vocabulary[w] = true
	}

	found := 0
	for _, w := range words {
		if vocabulary[w] || vocabulary[strings.TrimSuffix(w, "s")] || vocabulary[w+"s"] {
			found++
		}
	}
	return float64(found) / float64(len(words))
}
