package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"procurement-radar/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxFeedBytes = 10 << 20

// feedLot is the wire shape of one lot in a JSON feed.
type feedLot struct {
	LotNumber    string          `json:"lot_number"`
	PlatformName string          `json:"platform_name"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Budget       decimal.Decimal `json:"budget"`
	Deadline     string          `json:"deadline"`
	Customer     string          `json:"customer"`
	Nomenclature []string        `json:"nomenclature"`
	URL          string          `json:"url"`
	Source       string          `json:"source"`
	Status       string          `json:"status"`
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

// ParseDeadline accepts the date formats seen in procurement feeds. Date-only
// values mean the end of that day.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" || layout == "02.01.2006" {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognised deadline %q", s)
}

// HTTPFeed pulls raw lots from one or more JSON endpoints. Each endpoint
// returns either an array of lots or an object with a "lots" array.
type HTTPFeed struct {
	urls   []string
	client *http.Client
	loc    *time.Location
	log    *zap.Logger
}

func NewHTTPFeed(urls []string, timeout time.Duration, log *zap.Logger) *HTTPFeed {
	return &HTTPFeed{
		urls:   urls,
		client: &http.Client{Timeout: timeout},
		loc:    time.Local,
		log:    log,
	}
}

// Fetch never fails: an unreachable or malformed feed contributes nothing.
func (f *HTTPFeed) Fetch(ctx context.Context) []types.RawLot {
	var all []types.RawLot
	for _, u := range f.urls {
		lots, err := f.fetchOne(ctx, u)
		if err != nil {
			f.log.Warn("lot feed unavailable", zap.String("url", u), zap.Error(err))
			continue
		}
		f.log.Info("lot feed fetched", zap.String("url", u), zap.Int("lots", len(lots)))
		all = append(all, lots...)
	}
	return all
}

func (f *HTTPFeed) fetchOne(ctx context.Context, url string) ([]types.RawLot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	items, err := decodeFeed(body)
	if err != nil {
		return nil, err
	}

	lots := make([]types.RawLot, 0, len(items))
	for _, it := range items {
		lot := types.RawLot{
			LotNumber:    it.LotNumber,
			PlatformName: it.PlatformName,
			Title:        it.Title,
			Description:  it.Description,
			Budget:       it.Budget,
			Customer:     it.Customer,
			Nomenclature: it.Nomenclature,
			URL:          it.URL,
			Source:       types.LotSource(it.Source),
			Status:       types.LotStatus(it.Status),
		}
		if it.Deadline != "" {
			d, err := ParseDeadline(it.Deadline, f.loc)
			if err != nil {
				f.log.Debug("bad deadline in feed", zap.String("lot_number", it.LotNumber), zap.Error(err))
			} else {
				lot.Deadline = d
			}
		}
		lots = append(lots, lot)
	}
	return lots, nil
}

func decodeFeed(body []byte) ([]feedLot, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []feedLot
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode feed: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Lots []feedLot `json:"lots"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return wrapped.Lots, nil
}
