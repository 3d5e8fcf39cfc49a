package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/content-assistant/internal/analysis"
	"github.com/jonathan/content-assistant/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *db.Record {
	return &db.Record{
		ID:       uuid.MustParse("6f1c2b8e-3f7a-4c55-9a1e-2d7c0b9e4a10"),
		Task:     "tweets",
		URLs:     []string{"https://example.com/post"},
		Audience: "developers",
		Topic:    "Go",
		Analysis: &analysis.Report{
			KeySentences: []string{"Go is great."},
			Tone:         analysis.TonePositive,
			Style:        analysis.StyleMetrics{AvgSentenceLength: 4, AvgParagraphLength: 1, ParagraphCount: 1},
			TopWords:     []analysis.WordCount{{Word: "go", Count: 1}, {Word: "great", Count: 1}},
		},
		Result:    "Tweet one #golang\n\nTweet two <script>alert(1)</script>",
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{
		"txt":      FormatText,
		".MD":      FormatMarkdown,
		"markdown": FormatMarkdown,
		"json":     FormatJSON,
		"htm":      FormatHTML,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFileNameAndContentType(t *testing.T) {
	r := sampleRecord()

	assert.Equal(t, "analysis-tweets-6f1c2b8e.md", FileName(r, FormatMarkdown))
	assert.Equal(t, "application/json", ContentType(FormatJSON))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType(FormatText))
	assert.Len(t, Formats(), 4)
}

func TestRender_Text(t *testing.T) {
	out, err := Render(sampleRecord(), FormatText)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "Task: Write Tweets from Content\n"))
	assert.Contains(t, text, "URLs: https://example.com/post")
	assert.Contains(t, text, "Spider Graph Analysis Summary:")
	assert.Contains(t, text, "Result:\nTweet one #golang")
}

func TestRender_Markdown(t *testing.T) {
	out, err := Render(sampleRecord(), FormatMarkdown)
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Write Tweets from Content\n"))
	assert.Contains(t, md, "- **Audience:** developers")
	assert.Contains(t, md, "- <https://example.com/post>")
	assert.Contains(t, md, "**Tone:** Positive")
	assert.Contains(t, md, "| Paragraphs | 1 |")
	assert.Contains(t, md, "- go: 1")
}

func TestRender_JSON(t *testing.T) {
	out, err := Render(sampleRecord(), FormatJSON)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "6f1c2b8e-3f7a-4c55-9a1e-2d7c0b9e4a10", doc["id"])
	assert.Equal(t, "Write Tweets from Content", doc["task_label"])
	assert.Equal(t, "2025-03-01T10:00:00Z", doc["created_at"])

	a := doc["analysis"].(map[string]any)
	assert.Equal(t, "Positive", a["tone"])
}

func TestRender_JSONWithoutAnalysis(t *testing.T) {
	r := sampleRecord()
	r.Analysis = nil
	r.URLs = nil

	out, err := Render(r, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"tone": "Neutral"`)
	assert.Contains(t, string(out), `"urls": []`)
}

func TestRender_HTMLSanitizesResult(t *testing.T) {
	r := sampleRecord()
	r.Topic = "<b>Go</b>"

	out, err := Render(r, FormatHTML)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Write Tweets from Content</title>")
	assert.Contains(t, html, "<p>Tweet one #golang</p>")
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "alert(1)")
	assert.Contains(t, html, "&lt;b&gt;Go&lt;/b&gt;")
}

func TestSanitizeResult(t *testing.T) {
	got := SanitizeResult("line one\nline two\n\n<a href=\"https://go.dev\" onclick=\"x()\">Go</a>")

	assert.Contains(t, string(got), "<p>line one<br>\nline two</p>")
	assert.Contains(t, string(got), `href="https://go.dev"`)
	assert.NotContains(t, string(got), "onclick")
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(nil, FormatText)
	assert.Error(t, err)

	_, err = Render(sampleRecord(), Format("pdf"))
	assert.Error(t, err)
}
