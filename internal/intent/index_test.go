package intent

import (
	"testing"

	"github.com/harborhealth/bookingbot/internal/nlp"
)

// One dictionary load per test binary.
var cachedNormalizer *nlp.Normalizer

func testNormalizer(t *testing.T) *nlp.Normalizer {
	t.Helper()
	if cachedNormalizer == nil {
		n, err := nlp.NewNormalizer()
		if err != nil {
			t.Fatalf("normalizer: %v", err)
		}
		cachedNormalizer = n
	}
	return cachedNormalizer
}

func testCorpus() *Corpus {
	return &Corpus{
		Intents: []Definition{
			{Tag: "greeting", Patterns: []string{"hello there", "hi"}, Responses: []string{"Hello!"}},
			{Tag: "book_appointment", Patterns: []string{"book an appointment", "schedule a visit"}},
			{Tag: "cancel_appointment", Patterns: []string{"cancel my appointment"}},
		},
		Generic: []QAPair{
			{Question: "what are your opening hours", Answer: "We are open 8am to 6pm, Monday to Friday."},
			{Question: "where is the clinic located", Answer: "We are on Castle Road in Nottingham."},
		},
		Domain: []QAPair{
			{Question: "who is the general practitioner", Answer: "Dr. Alice Carter is our general practitioner."},
			{Question: "who is the dentist", Answer: "Dr. Omar Haque is our dentist."},
		},
	}
}

func TestBuildIndexZoneCounts(t *testing.T) {
	ix, err := BuildIndex(testNormalizer(t), testCorpus())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if ix.numIntents != 5 {
		t.Errorf("numIntents = %d, want 5", ix.numIntents)
	}
	if ix.numGeneric != 2 {
		t.Errorf("numGeneric = %d, want 2", ix.numGeneric)
	}
	if ix.numDomain != 2 {
		t.Errorf("numDomain = %d, want 2", ix.numDomain)
	}
}

func TestBuildIndexRejectsEmptyCorpus(t *testing.T) {
	if _, err := BuildIndex(testNormalizer(t), &Corpus{}); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestQueryResolvesZones(t *testing.T) {
	ix, err := BuildIndex(testNormalizer(t), testCorpus())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		wantZone Zone
	}{
		{"intent zone", "I want to book an appointment", ZoneIntent},
		{"generic qa zone", "what are your opening hours?", ZoneGenericQA},
		{"domain qa zone", "who is the general practitioner?", ZoneDomainQA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := ix.Query(tt.input)
			if match.Zone != tt.wantZone {
				t.Errorf("Query(%q) zone = %v, want %v (sim %v)", tt.input, match.Zone, tt.wantZone, match.Similarity)
			}
			if match.Similarity <= 0 {
				t.Errorf("Query(%q) similarity = %v, want > 0", tt.input, match.Similarity)
			}
		})
	}
}

func TestQueryTieBreaksToLowestRow(t *testing.T) {
	corpus := &Corpus{
		Intents: []Definition{
			{Tag: "first", Patterns: []string{"repeat after me"}},
			{Tag: "second", Patterns: []string{"repeat after me"}},
		},
	}
	ix, err := BuildIndex(testNormalizer(t), corpus)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	match := ix.Query("repeat after me")
	if match.Local != 0 {
		t.Errorf("tie resolved to row %d, want 0", match.Local)
	}
	if got := ix.Tag(match.Local); got != "first" {
		t.Errorf("tie resolved to tag %q, want first", got)
	}
}

func TestQueryZoneIgnoresOtherZones(t *testing.T) {
	ix, err := BuildIndex(testNormalizer(t), testCorpus())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	// Globally this matches the book_appointment intent, but a domain-zone
	// query must stay inside the domain zone.
	match := ix.QueryZone("book an appointment with the dentist", ZoneDomainQA)
	if match.Zone != ZoneDomainQA {
		t.Fatalf("zone = %v, want ZoneDomainQA", match.Zone)
	}
	if got := ix.Answer(ZoneDomainQA, match.Local); got != "Dr. Omar Haque is our dentist." {
		t.Errorf("answer = %q", got)
	}
}

func TestQueryZoneEmptyZone(t *testing.T) {
	corpus := &Corpus{
		Intents: []Definition{{Tag: "greeting", Patterns: []string{"hello"}}},
	}
	ix, err := BuildIndex(testNormalizer(t), corpus)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	match := ix.QueryZone("anything", ZoneDomainQA)
	if match.Local != -1 {
		t.Errorf("Local = %d, want -1 for empty zone", match.Local)
	}
}
