package analysis

import "sort"

// WordCount is a word and the number of times it occurs.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FrequencyIndex maps normalized words to occurrence counts.
// It remembers the order words were first seen so ties sort deterministically.
type FrequencyIndex struct {
	counts map[string]int
	order  []string
	total  int
}

// BuildFrequencyIndex counts the words of a normalized word list.
func BuildFrequencyIndex(words []string) *FrequencyIndex {
	idx := &FrequencyIndex{counts: make(map[string]int, len(words))}
	for _, w := range words {
		if _, seen := idx.counts[w]; !seen {
			idx.order = append(idx.order, w)
		}
		idx.counts[w]++
	}
	idx.total = len(words)
	return idx
}

// Count returns the occurrences of word, or 0 when it is not indexed.
func (f *FrequencyIndex) Count(word string) int {
	return f.counts[word]
}

// Contains reports whether word is indexed.
func (f *FrequencyIndex) Contains(word string) bool {
	_, ok := f.counts[word]
	return ok
}

// Len returns the number of distinct words.
func (f *FrequencyIndex) Len() int {
	return len(f.order)
}

// Total returns the sum of all counts, which equals the indexed word list length.
func (f *FrequencyIndex) Total() int {
	return f.total
}

// MostCommon returns the n most frequent words by descending count, ties in
// first-seen order. n <= 0 returns every word.
func (f *FrequencyIndex) MostCommon(n int) []WordCount {
	out := make([]WordCount, 0, len(f.order))
	for _, w := range f.order {
		out = append(out, WordCount{Word: w, Count: f.counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
