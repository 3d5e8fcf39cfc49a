package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenizer(t *testing.T, stopwords ...string) *Tokenizer {
	t.Helper()
	var set map[string]struct{}
	if len(stopwords) > 0 {
		set = wordSet(stopwords...)
	}
	tok, err := NewTokenizer(set)
	require.NoError(t, err)
	return tok
}

func TestTokenizer_Sentences(t *testing.T) {
	tok := newTestTokenizer(t)

	assert.Nil(t, tok.Sentences(""))
	assert.Nil(t, tok.Sentences("   \n\n "))
	assert.Equal(t,
		[]string{"The sky is blue.", "Is it raining?", "No!"},
		tok.Sentences("The sky is blue. Is it raining? No!"))
}

func TestTokenizer_Normalize(t *testing.T) {
	tok := newTestTokenizer(t)

	got := tok.Normalize("The Quick brown fox, and the lazy dog!")

	assert.Equal(t, []string{"quick", "brown", "fox", "lazy", "dog"}, got)
}

func TestTokenizer_NormalizeCustomStopwords(t *testing.T) {
	tok := newTestTokenizer(t, "is", "the")

	assert.Equal(t, []string{"ai", "great"}, tok.Normalize("AI is great."))
}

func TestTokenizer_TokensKeepPunctuation(t *testing.T) {
	tok := newTestTokenizer(t)

	tokens := tok.Tokens("Hello, world.")

	assert.Contains(t, tokens, "Hello")
	assert.Contains(t, tokens, ",")
	assert.Contains(t, tokens, ".")
}

func TestIsAlnum(t *testing.T) {
	assert.True(t, isAlnum("go"))
	assert.True(t, isAlnum("v2"))
	assert.True(t, isAlnum("café"))
	assert.False(t, isAlnum(""))
	assert.False(t, isAlnum("."))
	assert.False(t, isAlnum("don't"))
}

func TestFrequencyIndex(t *testing.T) {
	index := BuildFrequencyIndex([]string{"b", "a", "b", "c", "a", "b"})

	assert.Equal(t, 3, index.Count("b"))
	assert.Equal(t, 2, index.Count("a"))
	assert.Equal(t, 0, index.Count("z"))
	assert.True(t, index.Contains("c"))
	assert.False(t, index.Contains("z"))
	assert.Equal(t, 3, index.Len())
	assert.Equal(t, 6, index.Total())

	assert.Equal(t, []WordCount{{"b", 3}, {"a", 2}}, index.MostCommon(2))
	assert.Len(t, index.MostCommon(0), 3)
	assert.Len(t, index.MostCommon(10), 3)
}

func TestFrequencyIndex_TiesKeepFirstSeen(t *testing.T) {
	index := BuildFrequencyIndex([]string{"x", "y", "z", "y", "x"})

	assert.Equal(t, []WordCount{{"x", 2}, {"y", 2}, {"z", 1}}, index.MostCommon(-1))
}

func TestFrequencyIndex_Empty(t *testing.T) {
	index := BuildFrequencyIndex(nil)

	assert.Zero(t, index.Len())
	assert.Empty(t, index.MostCommon(10))
}

func TestRankKeySentences(t *testing.T) {
	tok := newTestTokenizer(t)
	text := "Cats sleep. Dogs bark loudly. Cats chase dogs. Birds."
	sentences := tok.Sentences(text)
	index := BuildFrequencyIndex(tok.Normalize(text))

	ranked := RankKeySentences(tok, sentences, index, 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "Cats chase dogs.", ranked[0].Text)
	assert.Equal(t, 2, ranked[0].Position)
	assert.Equal(t, "Dogs bark loudly.", ranked[1].Text)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}

func TestRankKeySentences_Bounds(t *testing.T) {
	tok := newTestTokenizer(t)
	text := "One apple. Two apples. Red apple. Green apple. Big apple. Small apple. Old apple."
	sentences := tok.Sentences(text)
	index := BuildFrequencyIndex(tok.Normalize(text))

	ranked := RankKeySentences(tok, sentences, index, 0)
	assert.Len(t, ranked, DefaultKeySentences)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	ranked = RankKeySentences(tok, sentences[:2], index, 10)
	assert.Len(t, ranked, 2)
}

func TestRankKeySentences_SkipsUnmatched(t *testing.T) {
	tok := newTestTokenizer(t)
	sentences := []string{"It is what it is.", "Compilers are fast."}
	index := BuildFrequencyIndex(tok.Normalize("Compilers are fast."))

	ranked := RankKeySentences(tok, sentences, index, 5)

	require.Len(t, ranked, 1)
	assert.Equal(t, "Compilers are fast.", ranked[0].Text)
}

func TestClassifyTone(t *testing.T) {
	tok := newTestTokenizer(t)
	lexicon := DefaultLexicon()

	tests := []struct {
		name string
		text string
		want Tone
	}{
		{"empty", "", ToneNeutral},
		{"no lexicon words", "The train left at noon.", ToneNeutral},
		{"positive", "What a great and wonderful day.", TonePositive},
		{"negative", "What a terrible and awful day.", ToneNegative},
		{"tie", "Good food, bad service.", ToneNeutral},
		{"case insensitive", "EXCELLENT work.", TonePositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTone(tok, tt.text, lexicon))
		})
	}
}

func TestClassifyTone_Symmetric(t *testing.T) {
	tok := newTestTokenizer(t)
	lexicon := DefaultLexicon()

	positive := "The results were great. The team was amazing. Costs were bad."
	negative := "The results were terrible. The team was awful. Costs were good."

	assert.Equal(t, TonePositive, ClassifyTone(tok, positive, lexicon))
	assert.Equal(t, ToneNegative, ClassifyTone(tok, negative, lexicon))
}

func TestProfileStyle(t *testing.T) {
	tok := newTestTokenizer(t)

	style := ProfileStyle(tok, "Go is fun. It compiles fast.\n\nTests pass.")

	// 4 + 4 + 3 tokens over 3 sentences.
	assert.InDelta(t, 11.0/3.0, style.AvgSentenceLength, 0.001)
	assert.InDelta(t, 1.5, style.AvgParagraphLength, 0.001)
	assert.Equal(t, 2, style.ParagraphCount)
}

func TestProfileStyle_Empty(t *testing.T) {
	tok := newTestTokenizer(t)

	style := ProfileStyle(tok, "")

	assert.Zero(t, style.AvgSentenceLength)
	assert.Zero(t, style.AvgParagraphLength)
	assert.Equal(t, 1, style.ParagraphCount)
}
