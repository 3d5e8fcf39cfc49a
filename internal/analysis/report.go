package analysis

import (
	"fmt"
	"strings"
)

// DefaultTopWords is the number of frequency pairs kept in a report.
const DefaultTopWords = 10

// Report is the spider-graph analysis of one document.
type Report struct {
	KeySentences []string     `json:"key_sentences"`
	Tone         Tone         `json:"tone"`
	Style        StyleMetrics `json:"style"`
	TopWords     []WordCount  `json:"top_words"`
}

// Format renders the report as the text block handed to prompt templates.
func (r *Report) Format() string {
	var sb strings.Builder

	sb.WriteString("Spider Graph Analysis Summary:\n\n")

	sb.WriteString("1. Key Points:\n")
	for _, s := range r.KeySentences {
		sb.WriteString(fmt.Sprintf("- %s\n", s))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("2. Tone: %s\n\n", r.Tone))

	sb.WriteString("3. Writing Style:\n")
	sb.WriteString(fmt.Sprintf("- Average sentence length: %.2f words\n", r.Style.AvgSentenceLength))
	sb.WriteString(fmt.Sprintf("- Average paragraph length: %.2f sentences\n", r.Style.AvgParagraphLength))
	sb.WriteString(fmt.Sprintf("- Number of paragraphs: %d\n\n", r.Style.ParagraphCount))

	sb.WriteString(fmt.Sprintf("4. Word Frequency (top %d):\n", DefaultTopWords))
	pairs := make([]string, 0, len(r.TopWords))
	for _, wc := range r.TopWords {
		pairs = append(pairs, fmt.Sprintf("%s: %d", wc.Word, wc.Count))
	}
	sb.WriteString(strings.Join(pairs, " "))
	sb.WriteString("\n")

	return sb.String()
}

func (r *Report) String() string {
	return r.Format()
}
