package intent

import (
	"errors"

	"github.com/harborhealth/bookingbot/internal/nlp"
)

// Zone identifies which of the three document pools a matched row belongs to.
type Zone int

const (
	ZoneIntent Zone = iota
	ZoneGenericQA
	ZoneDomainQA
)

// Match is the result of a nearest-neighbor query: the best-scoring row
// resolved to its zone and in-zone offset, plus the raw cosine similarity.
type Match struct {
	Zone       Zone
	Local      int
	Similarity float64
}

// Index is a similarity space shared by intent patterns and QA questions.
// Rows are laid out in fixed zone order {intent patterns, generic questions,
// domain questions}; the zone boundary counts are frozen at build time. The
// index is immutable once built and safe for concurrent Query calls, so a
// single Index serves any number of sessions.
type Index struct {
	normalizer *nlp.Normalizer
	vectorizer *nlp.TFIDFVectorizer
	matrix     []nlp.SparseVector

	numIntents int
	numGeneric int
	numDomain  int

	// tags is parallel to the intent-zone rows; answers are parallel to
	// their QA zones.
	tags           []string
	genericAnswers []string
	domainAnswers  []string
}

// BuildIndex normalizes every document, concatenates the zones, and fits one
// TF-IDF transform over the union. Each intent contributes one row per
// pattern, all carrying the intent's tag.
func BuildIndex(normalizer *nlp.Normalizer, corpus *Corpus) (*Index, error) {
	if normalizer == nil {
		return nil, errors.New("intent: normalizer required")
	}
	if corpus == nil {
		return nil, errors.New("intent: corpus required")
	}

	ix := &Index{normalizer: normalizer}

	var docs []string
	for _, def := range corpus.Intents {
		for _, pattern := range def.Patterns {
			ix.tags = append(ix.tags, def.Tag)
			docs = append(docs, normalizer.Normalize(pattern))
		}
	}
	ix.numIntents = len(docs)

	for _, pair := range corpus.Generic {
		ix.genericAnswers = append(ix.genericAnswers, pair.Answer)
		docs = append(docs, normalizer.Normalize(pair.Question))
	}
	ix.numGeneric = len(docs) - ix.numIntents

	for _, pair := range corpus.Domain {
		ix.domainAnswers = append(ix.domainAnswers, pair.Answer)
		docs = append(docs, normalizer.Normalize(pair.Question))
	}
	ix.numDomain = len(docs) - ix.numIntents - ix.numGeneric

	if len(docs) == 0 {
		return nil, errors.New("intent: corpus is empty")
	}

	ix.vectorizer, ix.matrix = nlp.FitTFIDF(docs)
	return ix, nil
}

// Query returns the single global best match across all zones. Ties break to
// the lowest row index, so results are stable and deterministic.
func (ix *Index) Query(text string) Match {
	vec := ix.vectorizer.Transform(ix.normalizer.Normalize(text))

	best, bestSim := 0, 0.0
	for row, doc := range ix.matrix {
		if sim := nlp.CosineSimilarity(vec, doc); sim > bestSim {
			best, bestSim = row, sim
		}
	}
	return ix.resolve(best, bestSim)
}

// QueryZone returns the best match within a single zone, used for targeted
// lookups such as answering domain questions.
func (ix *Index) QueryZone(text string, zone Zone) Match {
	vec := ix.vectorizer.Transform(ix.normalizer.Normalize(text))

	lo, hi := ix.zoneBounds(zone)
	best, bestSim := lo, 0.0
	for row := lo; row < hi; row++ {
		if sim := nlp.CosineSimilarity(vec, ix.matrix[row]); sim > bestSim {
			best, bestSim = row, sim
		}
	}
	if hi == lo {
		return Match{Zone: zone, Local: -1}
	}
	return ix.resolve(best, bestSim)
}

// Tag returns the intent tag for an intent-zone offset.
func (ix *Index) Tag(local int) string { return ix.tags[local] }

// Answer returns the canned answer for a QA-zone offset.
func (ix *Index) Answer(zone Zone, local int) string {
	if zone == ZoneDomainQA {
		return ix.domainAnswers[local]
	}
	return ix.genericAnswers[local]
}

func (ix *Index) resolve(row int, sim float64) Match {
	switch {
	case row < ix.numIntents:
		return Match{Zone: ZoneIntent, Local: row, Similarity: sim}
	case row < ix.numIntents+ix.numGeneric:
		return Match{Zone: ZoneGenericQA, Local: row - ix.numIntents, Similarity: sim}
	default:
		return Match{Zone: ZoneDomainQA, Local: row - ix.numIntents - ix.numGeneric, Similarity: sim}
	}
}

func (ix *Index) zoneBounds(zone Zone) (int, int) {
	switch zone {
	case ZoneIntent:
		return 0, ix.numIntents
	case ZoneGenericQA:
		return ix.numIntents, ix.numIntents + ix.numGeneric
	default:
		return ix.numIntents + ix.numGeneric, ix.numIntents + ix.numGeneric + ix.numDomain
	}
}
