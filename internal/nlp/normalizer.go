package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Normalizer reduces free text to a canonical token stream so that corpus
// documents and live utterances land in the same vector space. It lowercases,
// tokenizes on word boundaries, lemmatizes each token, and drops any token
// containing a non-alphabetic rune (numbers and alphanumeric mixes disappear
// entirely).
type Normalizer struct {
	lemmatizer *golem.Lemmatizer
}

// NewNormalizer loads the English lemma dictionary.
func NewNormalizer() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, err
	}
	return &Normalizer{lemmatizer: lemmatizer}, nil
}

// Normalize is pure and deterministic: the same input always yields the same
// output regardless of call order. It is applied identically at corpus-build
// time and at query time.
func (n *Normalizer) Normalize(text string) string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !isAlphabetic(token) {
			continue
		}
		out = append(out, n.lemmatizer.Lemma(token))
	}
	return strings.Join(out, " ")
}

func isAlphabetic(token string) bool {
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
