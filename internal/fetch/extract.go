package fetch

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Kind classifies a response body.
type Kind int

// Body kinds.
const (
	KindUnsupported Kind = iota
	KindHTML
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindText:
		return "text"
	default:
		return "unsupported"
	}
}

// DetectKind decides how a body should be read, trusting the declared content
// type first and sniffing the bytes when the header is missing or generic.
func DetectKind(body []byte, contentType string) Kind {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mediaType == "text/html" || mediaType == "application/xhtml+xml":
			return KindHTML
		case strings.HasPrefix(mediaType, "text/"):
			return KindText
		}
	}

	detected := mimetype.Detect(body)
	if detected.Is("text/html") || detected.Is("application/xhtml+xml") {
		return KindHTML
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return KindText
		}
	}
	return KindUnsupported
}

// DecodeBody converts body to UTF-8. The declared charset and any <meta> tag
// win; otherwise the encoding is guessed from the bytes.
func DecodeBody(body []byte, contentType string) (string, error) {
	_, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if guessed := detectCharset(body, contentType); guessed != "" {
			name = guessed
		}
	}

	reader, err := charset.NewReaderLabel(name, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", name, err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return string(decoded), nil
}

func detectCharset(body []byte, contentType string) string {
	detector := chardet.NewTextDetector()
	if strings.Contains(contentType, "html") || DetectKind(body, "") == KindHTML {
		detector = chardet.NewHtmlDetector()
	}
	result, err := detector.DetectBest(body)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}

// ExtractText parses HTML and returns its visible body text. Scripts and styles
// are dropped. Lines are trimmed and blank-line runs collapse to one blank line
// so paragraph breaks survive.
func ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	content := doc.Find("body")
	if content.Length() == 0 {
		content = doc.Selection
	}

	return cleanWhitespace(content.Text()), nil
}

// cleanWhitespace trims each line and keeps at most one blank line between text.
func cleanWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var cleaned []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(cleaned) > 0
			continue
		}
		if blank {
			cleaned = append(cleaned, "")
			blank = false
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}
