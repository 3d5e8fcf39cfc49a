package analysis

import "strings"

// paragraphSeparator splits a document into paragraphs.
const paragraphSeparator = "\n\n"

// StyleMetrics describes sentence and paragraph length.
type StyleMetrics struct {
	AvgSentenceLength  float64 `json:"avg_sentence_length"`  // tokens per sentence
	AvgParagraphLength float64 `json:"avg_paragraph_length"` // sentences per paragraph
	ParagraphCount     int     `json:"paragraph_count"`
}

// ProfileStyle computes the writing style metrics of text.
//
// Sentence length counts every token, punctuation included. Paragraphs are the
// chunks between blank lines, so ParagraphCount is at least 1 even for empty text.
func ProfileStyle(tok *Tokenizer, text string) StyleMetrics {
	sentences := tok.Sentences(text)
	tokenCount := 0
	for _, s := range sentences {
		tokenCount += len(tok.Tokens(s))
	}

	paragraphs := strings.Split(text, paragraphSeparator)
	sentenceCount := 0
	for _, p := range paragraphs {
		sentenceCount += len(tok.Sentences(p))
	}

	return StyleMetrics{
		AvgSentenceLength:  float64(tokenCount) / float64(max(len(sentences), 1)),
		AvgParagraphLength: float64(sentenceCount) / float64(max(len(paragraphs), 1)),
		ParagraphCount:     len(paragraphs),
	}
}
