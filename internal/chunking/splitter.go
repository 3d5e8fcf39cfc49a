// Package chunking splits long documents into overlapping chunks that fit a
// model's context window.
package chunking

import (
	"strings"
	"unicode/utf8"
)

// Defaults for the recursive splitter.
const (
	DefaultChunkSize = 4000
	DefaultOverlap   = 200
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text on the coarsest separator that yields pieces smaller
// than ChunkSize, recursing into oversized pieces with finer separators, and
// merges adjacent pieces back up to ChunkSize with Overlap carried between
// chunks. Lengths are counted in runes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. Non-positive sizes fall back to the defaults
// and an overlap not smaller than the chunk size is clamped below it.
func NewSplitter(chunkSize, overlap int, separators ...string) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: separators,
	}
}

// Default returns a splitter with the default size, overlap and separators.
func Default() *Splitter {
	return NewSplitter(DefaultChunkSize, DefaultOverlap)
}

// Split returns the chunks of text. Blank text yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			finer = separators[i+1:]
			break
		}
	}

	var chunks, small []string
	for _, piece := range splitOn(text, separator) {
		if runeLen(piece) < s.chunkSize {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small, separator)...)
			small = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, finer)...)
		}
	}
	if len(small) > 0 {
		chunks = append(chunks, s.merge(small, separator)...)
	}
	return chunks
}

// merge joins pieces into chunks of at most chunkSize runes, starting each
// new chunk with the trailing pieces of the previous one up to overlap runes.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)
	var chunks, current []string
	total := 0

	// joined length of current plus n more runes
	grown := func(n int) int {
		if len(current) > 0 {
			return total + n + sepLen
		}
		return total + n
	}

	for _, piece := range pieces {
		n := runeLen(piece)
		if grown(n) > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total > 0 && grown(n) > s.chunkSize) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		total = grown(n)
		current = append(current, piece)
	}

	if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func splitOn(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	for _, p := range strings.Split(text, separator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
