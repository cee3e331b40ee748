package retrieval

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"procurement-radar/logic/chat"
	"procurement-radar/types"
	"procurement-radar/vars"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"
)

// QueryAnalyzer turns a free-text lot query into filters and keywords.
type QueryAnalyzer struct {
	gen     chat.Generator
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewQueryAnalyzer(gen chat.Generator, timeout time.Duration, log *zap.Logger) *QueryAnalyzer {
	return &QueryAnalyzer{gen: gen, timeout: timeout, log: log, now: time.Now}
}

// Analyze never fails: when the model is unavailable or answers garbage the
// query words themselves become the keywords and no filter is applied.
func (a *QueryAnalyzer) Analyze(ctx context.Context, query string) *types.SearchIntent {
	query = strings.TrimSpace(query)
	if query == "" {
		return &types.SearchIntent{}
	}

	system, err := chat.Render(vars.ANALYZE_QUERY, map[string]string{
		"CurrentDate": a.now().Format("2006-01-02"),
	})
	if err != nil {
		a.log.Error("render query prompt failed", zap.Error(err))
		return fallbackIntent(query)
	}

	raw, err := chat.Ask(ctx, a.gen, system, query, a.timeout, model.WithTemperature(0))
	if err != nil {
		a.log.Warn("query analysis failed", zap.String("query", query), zap.Error(err))
		return fallbackIntent(query)
	}

	intent, ok := ParseIntent(raw)
	if !ok {
		a.log.Warn("query analysis returned no json", zap.String("raw", raw))
		return fallbackIntent(query)
	}
	if len(intent.Keywords) == 0 && intent.Filters.Empty() {
		intent.Keywords = queryWords(query)
	}
	return intent
}

// ParseIntent decodes the model's JSON answer.
func ParseIntent(raw string) (*types.SearchIntent, bool) {
	obj, ok := chat.ExtractJSON(raw)
	if !ok {
		return nil, false
	}
	// модели иногда отдают filters массивом
	obj = strings.ReplaceAll(obj, `"filters": []`, `"filters": {}`)
	obj = strings.ReplaceAll(obj, `"filters":[]`, `"filters":{}`)

	var intent types.SearchIntent
	if err := json.Unmarshal([]byte(obj), &intent); err != nil {
		return nil, false
	}
	kw := intent.Keywords[:0]
	for _, k := range intent.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kw = append(kw, k)
		}
	}
	intent.Keywords = kw
	return &intent, true
}

func fallbackIntent(query string) *types.SearchIntent {
	return &types.SearchIntent{Keywords: queryWords(query)}
}

// queryWords keeps words of three or more letters.
func queryWords(query string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= 3 {
			out = append(out, w)
		}
	}
	return out
}
