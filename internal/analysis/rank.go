package analysis

import "sort"

// DefaultKeySentences is the number of key sentences selected when none is configured.
const DefaultKeySentences = 5

// ScoredSentence is a sentence with its frequency score.
// Position is the sentence's index in the source document.
type ScoredSentence struct {
	Text     string `json:"text"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// RankKeySentences scores every sentence by the summed index counts of its
// words and returns the top n by descending score.
//
// Sentences without any indexed word are not candidates. Equal scores keep
// document order. Repeated sentences are scored separately and may all be
// returned.
func RankKeySentences(tok *Tokenizer, sentences []string, index *FrequencyIndex, n int) []ScoredSentence {
	if n <= 0 {
		n = DefaultKeySentences
	}

	candidates := make([]ScoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		score, matched := 0, false
		for _, w := range tok.Words(sentence) {
			if index.Contains(w) {
				score += index.Count(w)
				matched = true
			}
		}
		if !matched {
			continue
		}
		candidates = append(candidates, ScoredSentence{
			Text:     sentence,
			Score:    score,
			Position: i,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
