package extract

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-radar/logic/chat"
	"procurement-radar/logic/ingestion/processors"
	"procurement-radar/types"
	"procurement-radar/vars"

	"github.com/cloudwego/eino/components/model"
	"github.com/shopspring/decimal"
)

const maxContentRunes = 10000

var ErrNoLot = errors.New("no lot found in text")

// mailedLot is what the model returns for a forwarded tender e-mail.
type mailedLot struct {
	LotNumber   string          `json:"lot_number"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Budget      json.RawMessage `json:"budget"`
	Deadline    string          `json:"deadline"`
	Customer    string          `json:"customer"`
	URL         string          `json:"url"`
}

// LotExtractor turns free mail text into a raw lot with the chat model.
type LotExtractor struct {
	gen     chat.Generator
	timeout time.Duration
	now     func() time.Time
}

func NewLotExtractor(gen chat.Generator, timeout time.Duration) *LotExtractor {
	return &LotExtractor{gen: gen, timeout: timeout, now: time.Now}
}

// ExtractLot returns a raw lot with source=mailed. A missing lot number is
// replaced by a stable one derived from the text.
func (e *LotExtractor) ExtractLot(ctx context.Context, content string) (*types.RawLot, error) {
	content = processors.CleanText(content)
	if content == "" {
		return nil, ErrNoLot
	}
	if r := []rune(content); len(r) > maxContentRunes {
		content = string(r[:maxContentRunes])
	}

	prompt, err := chat.Render(vars.EXTRACT_LOT, map[string]string{
		"CurrentDate": e.now().Format("2006-01-02"),
		"Content":     content,
	})
	if err != nil {
		return nil, err
	}

	answer, err := chat.Ask(ctx, e.gen, "", prompt, e.timeout, model.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("llm extract failed: %w", err)
	}

	raw, ok := chat.ExtractJSON(answer)
	if !ok {
		return nil, fmt.Errorf("no JSON object in model answer: %q", answer)
	}
	var m mailedLot
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w, raw: %s", err, raw)
	}
	return toRawLot(&m, content)
}

func toRawLot(m *mailedLot, content string) (*types.RawLot, error) {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return nil, ErrNoLot
	}

	lot := &types.RawLot{
		LotNumber:   strings.TrimSpace(m.LotNumber),
		Title:       title,
		Description: strings.TrimSpace(m.Description),
		Budget:      parseBudget(m.Budget),
		Customer:    strings.TrimSpace(m.Customer),
		URL:         strings.TrimSpace(m.URL),
		Source:      types.SourceMailed,
	}
	if lot.LotNumber == "" {
		sum := sha1.Sum([]byte(content))
		lot.LotNumber = "MAIL-" + strings.ToUpper(hex.EncodeToString(sum[:])[:10])
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(m.Deadline)); err == nil {
		lot.Deadline = t.Add(24*time.Hour - time.Second)
	}
	return lot, nil
}

// parseBudget accepts a JSON number or a string like "1 250 000,50".
func parseBudget(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".", "₽", "", "руб.", "", "руб", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
