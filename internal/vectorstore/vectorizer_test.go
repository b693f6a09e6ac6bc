package vectorstore

import (
	"context"
	"testing"
)

func TestTFIDFVectorizerRequiresFit(t *testing.T) {
	v := NewTFIDFVectorizer(32)
	if v.IsFitted() {
		t.Fatal("new vectorizer should not be fitted")
	}
	if _, err := v.Embed(context.Background(), "text"); err == nil {
		t.Error("Embed() before Fit() should fail")
	}
	if _, err := v.Fit(nil); err == nil {
		t.Error("Fit() on empty corpus should fail")
	}
}

func TestTFIDFVectorizerFitReturnsNewEmbedder(t *testing.T) {
	base := NewTFIDFVectorizer(32)
	fitted, err := base.Fit([]string{"stars produce energy", "the moon orbits earth"})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if base.IsFitted() {
		t.Error("Fit() should leave the receiver untouched")
	}

	tv, ok := fitted.(*TFIDFVectorizer)
	if !ok || !tv.IsFitted() {
		t.Fatalf("Fit() returned %T, want fitted *TFIDFVectorizer", fitted)
	}
	if tv.VocabularySize() == 0 || tv.Dimension() != 32 {
		t.Errorf("VocabularySize() = %d, Dimension() = %d", tv.VocabularySize(), tv.Dimension())
	}
}

func TestTFIDFVectorizerStable(t *testing.T) {
	corpus := []string{"alpha beta gamma", "beta gamma delta", "gamma delta epsilon"}

	first, _ := NewTFIDFVectorizer(8).Fit(corpus)
	second, _ := NewTFIDFVectorizer(8).Fit(corpus)

	a, _ := first.Embed(context.Background(), "beta delta")
	b, _ := second.Embed(context.Background(), "beta delta")
	c, _ := first.Embed(context.Background(), "beta delta")

	for i := range a {
		if a[i] != b[i] || a[i] != c[i] {
			t.Fatalf("vectors differ at %d: %v %v %v", i, a[i], b[i], c[i])
		}
	}
}

func TestTFIDFVectorizerTokenizing(t *testing.T) {
	v := NewTFIDFVectorizer(16)
	v.AddStopWords([]string{"Energy"})
	v.SetMinWordLength(3)

	terms := v.terms("Stars PRODUCE energy, via 2024 fusion! ok")
	want := []string{"star", "produce", "via", "fusion"}
	if len(terms) != len(want) {
		t.Fatalf("terms() = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms()[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestTFIDFRetrievesRelevantSegment(t *testing.T) {
	segments := segmentsOf(
		"The sun is a star at the center of the solar system.",
		"Stars produce energy via nuclear fusion in their cores.",
		"The moon orbits the earth roughly once a month.",
	)

	idx, err := Build(context.Background(), segments, NewTFIDFVectorizer(64))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	results, err := idx.Search(context.Background(), "What produces energy in stars?", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].Segment.Index != 1 {
		t.Errorf("top result = %q, want the fusion segment", results[0].Segment.Text)
	}
}
