package intent

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Definition is one scripted intent: a tag, the phrases that trigger it, and
// the candidate replies the dialogue layer picks from.
type Definition struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

// QAPair is an open-ended question with its canned answer.
type QAPair struct {
	Question string
	Answer   string
}

// Corpus holds the three raw document pools the similarity index is built
// from: scripted intent patterns, generic QA pairs, and domain QA pairs
// about healthcare professionals.
type Corpus struct {
	Intents []Definition
	Generic []QAPair
	Domain  []QAPair
}

// LoadCorpus reads the intents JSON file and the two QA CSV files.
func LoadCorpus(intentsPath, qaPath, domainPath string) (*Corpus, error) {
	intents, err := loadIntents(intentsPath)
	if err != nil {
		return nil, err
	}
	generic, err := loadQAPairs(qaPath)
	if err != nil {
		return nil, err
	}
	domain, err := loadQAPairs(domainPath)
	if err != nil {
		return nil, err
	}
	return &Corpus{Intents: intents, Generic: generic, Domain: domain}, nil
}

// Responses maps each intent tag to its configured reply pool.
func (c *Corpus) Responses() map[string][]string {
	out := make(map[string][]string, len(c.Intents))
	for _, def := range c.Intents {
		out[def.Tag] = def.Responses
	}
	return out
}

func loadIntents(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("intent: open intents file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var payload struct {
		Intents []Definition `json:"intents"`
	}
	if err := json.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("intent: decode intents file: %w", err)
	}
	return payload.Intents, nil
}

// loadQAPairs reads a CSV of (id, question, answer) rows, skipping the
// header row.
func loadQAPairs(path string) ([]QAPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("intent: open qa file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var pairs []QAPair
	header := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("intent: read qa file %s: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 3 {
			continue
		}
		pairs = append(pairs, QAPair{Question: row[1], Answer: row[2]})
	}
	return pairs, nil
}
