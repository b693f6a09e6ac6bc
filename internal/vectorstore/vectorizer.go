package vectorstore

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultTFIDFDimensions is the vocabulary size used when none is configured
const DefaultTFIDFDimensions = 512

var (
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	numericPattern = regexp.MustCompile(`^\d+$`)
)

// NewTFIDFVectorizer creates an unfitted TF-IDF vectorizer producing vectors
// of the given size
func NewTFIDFVectorizer(dimensions int) *TFIDFVectorizer {
	if dimensions <= 0 {
		dimensions = DefaultTFIDFDimensions
	}
	return &TFIDFVectorizer{
		dimensions:    dimensions,
		vocabulary:    make(map[string]int),
		minWordLength: 2,
		maxWordLength: 50,
		stopWords:     defaultStopWords(),
	}
}

// Dimension returns the vector dimension
func (v *TFIDFVectorizer) Dimension() int {
	return v.dimensions
}

// Fit learns the vocabulary and inverse document frequencies of the corpus
// and returns a new fitted vectorizer with the receiver's settings.
func (v *TFIDFVectorizer) Fit(corpus []string) (Embedder, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("cannot fit on empty document corpus")
	}

	v.mu.RLock()
	fitted := &TFIDFVectorizer{
		dimensions:    v.dimensions,
		vocabulary:    make(map[string]int),
		documentCount: len(corpus),
		minWordLength: v.minWordLength,
		maxWordLength: v.maxWordLength,
		stopWords:     make(map[string]bool, len(v.stopWords)),
	}
	for word := range v.stopWords {
		fitted.stopWords[word] = true
	}
	v.mu.RUnlock()

	docCounts := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, word := range fitted.terms(doc) {
			seen[word] = true
		}
		for word := range seen {
			docCounts[word]++
		}
	}

	type wordFreq struct {
		word  string
		count int
	}
	freqs := make([]wordFreq, 0, len(docCounts))
	for word, count := range docCounts {
		freqs = append(freqs, wordFreq{word: word, count: count})
	}

	// Most common terms first; alphabetical on ties so fitting is deterministic.
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].count != freqs[j].count {
			return freqs[i].count > freqs[j].count
		}
		return freqs[i].word < freqs[j].word
	})

	vocabSize := fitted.dimensions
	if len(freqs) < vocabSize {
		vocabSize = len(freqs)
	}

	fitted.idf = make([]float32, vocabSize)
	n := float64(fitted.documentCount)
	for i := 0; i < vocabSize; i++ {
		fitted.vocabulary[freqs[i].word] = i
		// Smoothed so terms present in every segment keep a non-zero weight.
		fitted.idf[i] = float32(math.Log((1+n)/(1+float64(freqs[i].count))) + 1)
	}

	fitted.fitted = true
	return fitted, nil
}

// Embed converts text to a TF-IDF vector over the fitted vocabulary
func (v *TFIDFVectorizer) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.fitted {
		return nil, fmt.Errorf("vectorizer must be fitted before embedding")
	}

	vector := make([]float32, v.dimensions)

	counts := make(map[string]int)
	total := 0
	for _, word := range v.terms(text) {
		counts[word]++
		total++
	}
	if total == 0 {
		return vector, nil
	}

	for word, count := range counts {
		if index, ok := v.vocabulary[word]; ok {
			vector[index] = float32(count) / float32(total) * v.idf[index]
		}
	}

	return vector, nil
}

// terms tokenizes text into lowercase, filtered, lightly stemmed words
func (v *TFIDFVectorizer) terms(text string) []string {
	words := strings.Fields(nonWordPattern.ReplaceAllString(strings.ToLower(text), " "))

	terms := make([]string, 0, len(words))
	for _, word := range words {
		if !v.isValidWord(word) {
			continue
		}
		terms = append(terms, stem(word))
	}
	return terms
}

func (v *TFIDFVectorizer) isValidWord(word string) bool {
	n := len([]rune(word))
	if n < v.minWordLength || n > v.maxWordLength {
		return false
	}
	if v.stopWords[word] {
		return false
	}
	return !numericPattern.MatchString(word)
}

// stem folds simple plural and verb forms ("stars", "produces") onto a
// shared term
func stem(word string) string {
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

func defaultStopWords() map[string]bool {
	stopWords := []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "by", "for", "from",
		"has", "he", "in", "is", "it", "its", "of", "on", "that", "the", "to",
		"was", "will", "with", "this", "but", "they", "have", "had",
		"what", "said", "each", "which", "she", "do", "how", "their", "if",
		"up", "out", "many", "then", "them", "these", "so", "some", "her",
		"would", "make", "like", "him", "into", "two", "more", "go",
		"no", "way", "could", "my", "than", "who", "now", "did", "get",
		"may", "you", "your", "we", "our", "me", "i", "um", "uh",
	}

	set := make(map[string]bool, len(stopWords))
	for _, word := range stopWords {
		set[word] = true
	}
	return set
}

// SetMinWordLength sets the minimum word length considered
func (v *TFIDFVectorizer) SetMinWordLength(length int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.minWordLength = length
}

// SetMaxWordLength sets the maximum word length considered
func (v *TFIDFVectorizer) SetMaxWordLength(length int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.maxWordLength = length
}

// AddStopWords adds words to ignore
func (v *TFIDFVectorizer) AddStopWords(words []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, word := range words {
		v.stopWords[strings.ToLower(word)] = true
	}
}

// VocabularySize returns the number of terms learned by Fit
func (v *TFIDFVectorizer) VocabularySize() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vocabulary)
}

// IsFitted reports whether the vectorizer can embed text
func (v *TFIDFVectorizer) IsFitted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fitted
}
