package nlp

import (
	"math"
	"strings"
	"unicode/utf8"
)

// SparseVector maps vocabulary term indices to weights. Vectors produced by
// the vectorizer are l2-normalized, so the dot product of two vectors is
// their cosine similarity.
type SparseVector map[int]float64

// TFIDFVectorizer holds a term-weighting transform fitted once over a fixed
// document set. It is immutable after FitTFIDF returns and safe for
// concurrent Transform calls.
type TFIDFVectorizer struct {
	vocabulary map[string]int
	idf        []float64
}

// FitTFIDF fits a TF-IDF transform with unigram and bigram terms over the
// given pre-normalized documents and returns the fitted vectorizer together
// with the document matrix, one row per input document in input order.
func FitTFIDF(docs []string) (*TFIDFVectorizer, []SparseVector) {
	v := &TFIDFVectorizer{vocabulary: make(map[string]int)}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = termCounts(doc)
		for term := range counts[i] {
			if _, ok := v.vocabulary[term]; !ok {
				v.vocabulary[term] = len(v.vocabulary)
			}
			df[term]++
		}
	}

	// Smoothed inverse document frequency: ln((1+n)/(1+df)) + 1.
	n := float64(len(docs))
	v.idf = make([]float64, len(v.vocabulary))
	for term, idx := range v.vocabulary {
		v.idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	matrix := make([]SparseVector, len(docs))
	for i := range docs {
		matrix[i] = v.weigh(counts[i])
	}
	return v, matrix
}

// Transform projects pre-normalized text into the fitted space. Terms unseen
// during the fit contribute zero weight; the vocabulary is never extended.
func (v *TFIDFVectorizer) Transform(text string) SparseVector {
	return v.weigh(termCounts(text))
}

func (v *TFIDFVectorizer) weigh(counts map[string]int) SparseVector {
	vec := make(SparseVector, len(counts))
	var norm float64
	for term, count := range counts {
		idx, ok := v.vocabulary[term]
		if !ok {
			continue
		}
		w := float64(count) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx, w := range vec {
			vec[idx] = w / norm
		}
	}
	return vec
}

// termCounts extracts unigram and bigram counts from space-joined tokens.
func termCounts(text string) map[string]int {
	// Single-character tokens carry no signal and are dropped before
	// counting; bigrams pair the surviving neighbors.
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if utf8.RuneCountInString(token) > 1 {
			tokens = append(tokens, token)
		}
	}
	counts := make(map[string]int, 2*len(tokens))
	for i, token := range tokens {
		counts[token]++
		if i+1 < len(tokens) {
			counts[token+" "+tokens[i+1]]++
		}
	}
	return counts
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Both arguments are expected to be l2-normalized, in which case this is the
// plain dot product; unnormalized vectors are handled anyway.
func CosineSimilarity(a, b SparseVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, normA, normB float64
	for idx, w := range a {
		normA += w * w
		if bw, ok := b[idx]; ok {
			dot += w * bw
		}
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
