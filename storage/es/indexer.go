package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"procurement-radar/types"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

// LotIndexer keeps a full-text copy of lots in Elasticsearch.
type LotIndexer struct {
	client *elasticsearch.Client
	index  string
	log    *zap.Logger
}

// NewLotIndexer 初始化 ES 客户端并确保索引存在
func NewLotIndexer(ctx context.Context, addresses []string, indexName string, log *zap.Logger) (*LotIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}

	indexer := &LotIndexer{client: client, index: indexName, log: log}
	if err := indexer.initMapping(ctx); err != nil {
		return nil, err
	}
	return indexer, nil
}

const lotMapping = `
{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "lot_number":   { "type": "keyword" },
      "title":        { "type": "text", "analyzer": "russian" },
      "description":  { "type": "text", "analyzer": "russian" },
      "customer": {
        "type": "text",
        "analyzer": "russian",
        "fields": { "keyword": { "type": "keyword" } }
      },
      "nomenclature":  { "type": "keyword" },
      "documentation": { "type": "text", "analyzer": "russian" },
      "budget":        { "type": "double" },
      "deadline":      { "type": "date" },
      "review_status": { "type": "keyword" }
    }
  }
}`

func (e *LotIndexer) initMapping(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	e.log.Info("creating lot index", zap.String("index", e.index))
	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(lotMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index response error: %s", res.String())
	}
	return nil
}

// lotDocument is the indexed shape of a lot.
type lotDocument struct {
	LotNumber     string   `json:"lot_number"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Customer      string   `json:"customer,omitempty"`
	Nomenclature  []string `json:"nomenclature,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
	Budget        float64  `json:"budget"`
	Deadline      string   `json:"deadline"`
	ReviewStatus  string   `json:"review_status"`
}

func toDocument(l *types.Lot) lotDocument {
	return lotDocument{
		LotNumber:     l.LotNumber,
		Title:         l.Title,
		Description:   l.Description,
		Customer:      l.CustomerName(),
		Nomenclature:  l.Nomenclature,
		Documentation: l.DocumentationText,
		Budget:        l.Budget.InexactFloat64(),
		Deadline:      l.Deadline.Format(time.RFC3339),
		ReviewStatus:  string(l.ReviewStatus),
	}
}

// IndexLots 批量写入, lot_number 作为 _id 保证重复写入幂等
func (e *LotIndexer) IndexLots(ctx context.Context, lots []types.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.index,
		Client:        e.client,
		FlushInterval: time.Second,
	})
	if err != nil {
		return err
	}

	var failed atomic.Int64
	for i := range lots {
		data, err := json.Marshal(toDocument(&lots[i]))
		if err != nil {
			return err
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: lots[i].LotNumber,
			Body:       bytes.NewReader(data),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, _ esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				e.log.Warn("index lot failed", zap.String("lot_number", item.DocumentID), zap.Error(err))
			},
		})
		if err != nil {
			return err
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d lots were not indexed", n, len(lots))
	}
	e.log.Debug("lots indexed", zap.Int("count", len(lots)))
	return nil
}

// DeleteByLotNumbers removes the given lots from the index.
func (e *LotIndexer) DeleteByLotNumbers(ctx context.Context, lotNumbers []string) error {
	if len(lotNumbers) == 0 {
		return nil
	}
	query := map[string]any{
		"query": map[string]any{
			"terms": map[string]any{
				"lot_number": lotNumbers,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return fmt.Errorf("error encoding query: %w", err)
	}

	res, err := e.client.DeleteByQuery(
		[]string{e.index},
		&buf,
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("ES delete request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES delete response error: %s", res.String())
	}

	e.log.Info("lots removed from index", zap.Int("count", len(lotNumbers)))
	return nil
}
