package analysis

// Tone is the coarse polarity of a document.
type Tone string

// Tone labels.
const (
	TonePositive Tone = "Positive"
	ToneNegative Tone = "Negative"
	ToneNeutral  Tone = "Neutral"
)

// ClassifyTone counts positive and negative lexicon words in text and returns
// the side with more matches, or Neutral on a tie (including no matches).
func ClassifyTone(tok *Tokenizer, text string, lexicon Lexicon) Tone {
	positive, negative := toneCounts(tok, text, lexicon)
	switch {
	case positive > negative:
		return TonePositive
	case negative > positive:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func toneCounts(tok *Tokenizer, text string, lexicon Lexicon) (positive, negative int) {
	for _, w := range tok.Words(text) {
		if _, ok := lexicon.Positive[w]; ok {
			positive++
		}
		if _, ok := lexicon.Negative[w]; ok {
			negative++
		}
	}
	return positive, negative
}
