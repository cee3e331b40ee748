package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"procurement-radar/logic/ingestion/parser"
	"procurement-radar/logic/ingestion/processors"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino/components/document"
	docparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

const (
	maxDocumentBytes = 20 << 20
	maxDocumentRunes = 100_000
)

// DocFetcher turns lot documentation into plain text. http(s) URLs are
// downloaded; file:// URLs are read from a local archive. PDFs go through the
// eino PDF parser, HTML through readability.
type DocFetcher struct {
	client *http.Client
	pdf    docparser.Parser
	html   docparser.Parser
	files  document.Loader
	log    *zap.Logger
}

func NewDocFetcher(ctx context.Context, client *http.Client, log *zap.Logger) (*DocFetcher, error) {
	pdfParser, err := parser.NewPDFParser(ctx)
	if err != nil {
		return nil, err
	}
	byExt, err := parser.NewDocumentParser(ctx, pdfParser)
	if err != nil {
		return nil, fmt.Errorf("create document parser: %w", err)
	}
	files, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{Parser: byExt})
	if err != nil {
		return nil, fmt.Errorf("create file loader: %w", err)
	}
	if client == nil {
		client = &http.Client{}
	}
	return &DocFetcher{
		client: client,
		pdf:    pdfParser,
		html:   parser.HTMLParser{},
		files:  files,
		log:    log,
	}, nil
}

// Fetch returns the cleaned documentation text behind rawURL. The caller
// bounds the call through ctx.
func (f *DocFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %s", rawURL)
	}

	var docs []*schema.Document
	switch {
	case u.Scheme == "file" && u.Path != "":
		docs, err = f.files.Load(ctx, document.Source{URI: u.Path})
	case (u.Scheme == "http" || u.Scheme == "https") && u.Host != "":
		docs, err = f.download(ctx, u)
	default:
		return "", fmt.Errorf("invalid URL: %s", rawURL)
	}
	if err != nil {
		return "", err
	}

	docs, err = processors.Processor(ctx, docs)
	if err != nil {
		return "", err
	}
	text := processors.Join(docs)
	if r := []rune(text); len(r) > maxDocumentRunes {
		text = string(r[:maxDocumentRunes])
	}
	f.log.Debug("documentation fetched", zap.String("url", rawURL), zap.Int("bytes", len(text)))
	return text, nil
}

func (f *DocFetcher) download(ctx context.Context, u *url.URL) ([]*schema.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; procurement-radar/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body := bufio.NewReader(io.LimitReader(resp.Body, maxDocumentBytes))
	p := f.html
	if isPDF(resp.Header.Get("Content-Type"), u.Path, body) {
		p = f.pdf
	}
	docs, err := p.Parse(ctx, body, docparser.WithURI(u.String()))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return docs, nil
}

func isPDF(contentType, path string, body *bufio.Reader) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return true
	}
	head, _ := body.Peek(4)
	return bytes.Equal(head, []byte("%PDF"))
}
