package intent

import (
	"github.com/harborhealth/bookingbot/internal/observability/metrics"
)

// ResultKind discriminates the classifier's tagged result.
type ResultKind int

const (
	KindUnknown ResultKind = iota
	KindIntent
	KindAnswer
)

func (k ResultKind) String() string {
	switch k {
	case KindIntent:
		return "intent"
	case KindAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// Result is one classification outcome. For KindIntent, Tag holds the
// matched intent tag; for KindAnswer, Answer holds the canned reply text
// itself.
type Result struct {
	Kind       ResultKind
	Tag        string
	Answer     string
	Similarity float64
}

// Classifier wraps the index with two independent thresholds. Intents are
// short scripted phrases and get the stricter bar; QA pairs are longer and
// more varied, so their bar is looser. Both boundaries are inclusive.
type Classifier struct {
	index           *Index
	intentThreshold float64
	qaThreshold     float64
	metrics         *metrics.ConversationMetrics
}

// NewClassifier builds a classifier over an immutable index. The classifier
// itself is stateless and safe to share across sessions.
func NewClassifier(index *Index, intentThreshold, qaThreshold float64, m *metrics.ConversationMetrics) *Classifier {
	if index == nil {
		panic("intent: index required")
	}
	return &Classifier{
		index:           index,
		intentThreshold: intentThreshold,
		qaThreshold:     qaThreshold,
		metrics:         m,
	}
}

// Classify resolves an utterance to an intent, a canned answer, or unknown.
// Only the single global-best row is ever considered: an intent row below
// its threshold does not fall through to some other QA row, and a QA row
// that is the global best is never displaced by a lower-scoring intent.
func (c *Classifier) Classify(text string) Result {
	match := c.index.Query(text)

	var result Result
	switch {
	case match.Zone == ZoneIntent && match.Similarity >= c.intentThreshold:
		result = Result{
			Kind:       KindIntent,
			Tag:        c.index.Tag(match.Local),
			Similarity: match.Similarity,
		}
	case match.Zone != ZoneIntent && match.Similarity >= c.qaThreshold:
		result = Result{
			Kind:       KindAnswer,
			Answer:     c.index.Answer(match.Zone, match.Local),
			Similarity: match.Similarity,
		}
	default:
		result = Result{Similarity: match.Similarity}
	}

	c.metrics.ObserveClassification(result.Kind.String())
	return result
}

// AnswerDomainQuestion looks up the best domain-zone answer for a free-text
// question about healthcare professionals. It reports false when nothing in
// the domain zone clears the QA threshold.
func (c *Classifier) AnswerDomainQuestion(text string) (string, bool) {
	match := c.index.QueryZone(text, ZoneDomainQA)
	if match.Local < 0 || match.Similarity < c.qaThreshold {
		return "", false
	}
	return c.index.Answer(ZoneDomainQA, match.Local), true
}
