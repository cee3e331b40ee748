package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// SearchLotNumbers runs a BM25 query over the text fields and returns the
// matching lot numbers, best first.
func (e *LotIndexer) SearchLotNumbers(ctx context.Context, keywords []string, limit int) ([]string, error) {
	query := strings.TrimSpace(strings.Join(keywords, " "))
	if query == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = 100
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildLotQuery(query, limit)); err != nil {
		return nil, fmt.Errorf("error encoding query: %w", err)
	}
	e.log.Debug("es query", zap.String("body", buf.String()))

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("error getting response: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error response: %s", res.String())
	}
	return parseLotNumbers(res.Body)
}

func buildLotQuery(query string, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"title^3", "customer^2", "description", "documentation", "nomenclature"},
			},
		},
		"size":    limit,
		"_source": []string{"lot_number"},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				LotNumber string `json:"lot_number"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseLotNumbers(body io.Reader) ([]string, error) {
	var result searchResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing response body: %w", err)
	}

	seen := make(map[string]struct{}, len(result.Hits.Hits))
	numbers := make([]string, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		n := hit.Source.LotNumber
		if n == "" {
			n = hit.ID
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}
	return numbers, nil
}
