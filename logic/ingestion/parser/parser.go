package parser

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	docparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
)

// MetaKeyTitle carries the page title of HTML documents.
const MetaKeyTitle = "title"

// HTMLParser extracts the readable part of an HTML page as one document.
type HTMLParser struct{}

func (HTMLParser) Parse(ctx context.Context, r io.Reader, opts ...docparser.Option) ([]*schema.Document, error) {
	o := docparser.GetCommonOptions(nil, opts...)
	base := &url.URL{}
	if o.URI != "" {
		if u, err := url.Parse(o.URI); err == nil {
			base = u
		}
	}

	article, err := readability.FromReader(r, base)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	meta := map[string]any{
		docparser.MetaKeySource: o.URI,
		MetaKeyTitle:            article.Title,
	}
	for k, v := range o.ExtraMeta {
		meta[k] = v
	}
	return []*schema.Document{{Content: article.TextContent, MetaData: meta}}, nil
}

// NewPDFParser is the eino PDF parser with whole-document output.
func NewPDFParser(ctx context.Context) (docparser.Parser, error) {
	// pdf解析器
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}
	return p, nil
}

// NewDocumentParser picks a parser by file extension: PDF, HTML, and plain
// text for anything else.
func NewDocumentParser(ctx context.Context, pdfParser docparser.Parser) (docparser.Parser, error) {
	html := HTMLParser{}
	p, err := docparser.NewExtParser(ctx, &docparser.ExtParserConfig{
		Parsers: map[string]docparser.Parser{
			".pdf":  pdfParser,
			".PDF":  pdfParser,
			".html": html,
			".htm":  html,
		},
		FallbackParser: docparser.TextParser{},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
