// Package analysis implements the spider-graph text analysis: sentence and word
// tokenization, word frequencies, key-sentence ranking, tone and writing style.
package analysis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Tokenizer splits documents into sentences and word tokens.
// It is read-only after construction and safe for concurrent use.
type Tokenizer struct {
	segmenter *sentences.DefaultSentenceTokenizer
	stopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer that removes the given stop-words during
// normalization. A nil set selects DefaultStopwords.
func NewTokenizer(stopwords map[string]struct{}) (*Tokenizer, error) {
	segmenter, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence tokenizer: %w", err)
	}
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	return &Tokenizer{
		segmenter: segmenter,
		stopwords: stopwords,
	}, nil
}

// Sentences splits text into sentences in document order.
func (t *Tokenizer) Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	for _, s := range t.segmenter.Tokenize(text) {
		sentence := strings.TrimSpace(s.Text)
		if sentence != "" {
			out = append(out, sentence)
		}
	}
	return out
}

// Tokens splits text into word and punctuation tokens without changing case.
func (t *Tokenizer) Tokens(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil
	}

	tokens := doc.Tokens()
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Text != "" {
			out = append(out, tok.Text)
		}
	}
	return out
}

// Words returns the lowercased tokens of text. Punctuation and stop-words are kept.
func (t *Tokenizer) Words(text string) []string {
	return t.Tokens(strings.ToLower(text))
}

// Normalize returns the word list used for frequency scoring: lowercased tokens
// made only of letters and digits, with stop-words removed.
func (t *Tokenizer) Normalize(text string) []string {
	words := t.Words(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !isAlnum(w) {
			continue
		}
		if _, stop := t.stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
