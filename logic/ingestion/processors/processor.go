package processors

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	blankLines   = regexp.MustCompile(`\n\s*\n+`)
	spaces       = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// CleanText removes NUL bytes, invalid UTF-8 and control characters, and
// collapses runs of whitespace while keeping paragraph breaks.
func CleanText(text string) string {
	// 移除无效的 UTF-8 字符
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = controlChars.ReplaceAllString(text, "")
	text = spaces.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Processor cleans parsed documents and drops the ones left empty.
func Processor(ctx context.Context, src []*schema.Document) ([]*schema.Document, error) {
	var cleanDocs []*schema.Document
	for _, doc := range src {
		content := CleanText(doc.Content)
		if content == "" {
			continue
		}
		doc.Content = content
		cleanDocs = append(cleanDocs, doc)
	}
	return cleanDocs, nil
}

// Join concatenates document contents separated by blank lines.
func Join(docs []*schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}
