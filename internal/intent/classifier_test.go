package intent

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborhealth/bookingbot/internal/observability/metrics"
)

func testClassifier(t *testing.T, intentThreshold, qaThreshold float64) *Classifier {
	t.Helper()
	ix, err := BuildIndex(testNormalizer(t), testCorpus())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return NewClassifier(ix, intentThreshold, qaThreshold, nil)
}

func TestClassifyIntent(t *testing.T) {
	c := testClassifier(t, 0.25, 0.2)

	result := c.Classify("I'd like to book an appointment please")
	if result.Kind != KindIntent {
		t.Fatalf("Kind = %v, want KindIntent (sim %v)", result.Kind, result.Similarity)
	}
	if result.Tag != "book_appointment" {
		t.Errorf("Tag = %q, want book_appointment", result.Tag)
	}
}

func TestClassifyAnswer(t *testing.T) {
	c := testClassifier(t, 0.25, 0.2)

	result := c.Classify("what are your opening hours?")
	if result.Kind != KindAnswer {
		t.Fatalf("Kind = %v, want KindAnswer (sim %v)", result.Kind, result.Similarity)
	}
	if result.Answer != "We are open 8am to 6pm, Monday to Friday." {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestClassifyUnknown(t *testing.T) {
	c := testClassifier(t, 0.25, 0.2)

	result := c.Classify("colorless green ideas sleep furiously")
	if result.Kind != KindUnknown {
		t.Fatalf("Kind = %v, want KindUnknown (sim %v)", result.Kind, result.Similarity)
	}
}

// Setting the intent threshold to the exact similarity of a match exercises
// the inclusive boundary: similarity == threshold must classify as an
// intent, not unknown.
func TestIntentThresholdBoundaryIsInclusive(t *testing.T) {
	probe := testClassifier(t, 0.0, 0.2)
	sim := probe.Classify("cancel my appointment").Similarity

	c := testClassifier(t, sim, 0.2)
	result := c.Classify("cancel my appointment")
	if result.Kind != KindIntent {
		t.Fatalf("Kind = %v, want KindIntent at boundary (sim %v)", result.Kind, result.Similarity)
	}
	if result.Tag != "cancel_appointment" {
		t.Errorf("Tag = %q, want cancel_appointment", result.Tag)
	}
}

// When the global best is an intent row but below the intent threshold, the
// classifier must not fall back to a QA row that was not the global best.
func TestSubThresholdIntentDoesNotFallThroughToQA(t *testing.T) {
	c := testClassifier(t, 1.0, 0.0)

	result := c.Classify("please book appointment for me")
	if result.Kind != KindUnknown {
		t.Fatalf("Kind = %v, want KindUnknown (sim %v)", result.Kind, result.Similarity)
	}
}

// A QA row that is the global best wins even when intent rows exist: the
// intent priority only applies when the best row itself is an intent row.
func TestGlobalBestQARowBeatsIntents(t *testing.T) {
	c := testClassifier(t, 0.0, 0.2)

	result := c.Classify("where is the clinic located?")
	if result.Kind != KindAnswer {
		t.Fatalf("Kind = %v, want KindAnswer (sim %v)", result.Kind, result.Similarity)
	}
	if result.Answer != "We are on Castle Road in Nottingham." {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestAnswerDomainQuestion(t *testing.T) {
	c := testClassifier(t, 0.25, 0.2)

	answer, ok := c.AnswerDomainQuestion("who is your dentist?")
	if !ok {
		t.Fatal("expected a domain answer")
	}
	if answer != "Dr. Omar Haque is our dentist." {
		t.Errorf("answer = %q", answer)
	}

	if _, ok := c.AnswerDomainQuestion("colorless green ideas sleep furiously"); ok {
		t.Error("expected no answer for unrelated question")
	}
}

func TestClassifyRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewConversationMetrics(reg)

	ix, err := BuildIndex(testNormalizer(t), testCorpus())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	c := NewClassifier(ix, 0.25, 0.2, m)

	c.Classify("book an appointment")
	c.Classify("colorless green ideas sleep furiously")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, fam := range families {
		if fam.GetName() == "bookingbot_intent_classifications_total" {
			found = true
		}
	}
	if !found {
		t.Error("classification counter not registered")
	}
}
