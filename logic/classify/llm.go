package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"procurement-radar/logic/chat"
	"procurement-radar/logic/matching"
	"procurement-radar/types"
	"procurement-radar/vars"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"
)

const (
	maxDescriptionRunes = 500
	maxLotNomenclature  = 10
	maxHintKeywords     = 5
)

// LLMClassifier asks the chat model a yes/no question about the lot.
type LLMClassifier struct {
	gen     chat.Generator
	timeout time.Duration
	log     *zap.Logger
}

func NewLLMClassifier(gen chat.Generator, timeout time.Duration, log *zap.Logger) *LLMClassifier {
	return &LLMClassifier{gen: gen, timeout: timeout, log: log}
}

func (c *LLMClassifier) Classify(ctx context.Context, lot *types.Lot, candidates []matching.Category) matching.Verdict {
	prompt, err := chat.Render(vars.CLASSIFY_USER, map[string]string{
		"Lot":    LotText(lot),
		"Groups": groupsText(candidates),
	})
	if err != nil {
		c.log.Error("render classify prompt", zap.Error(err))
		return matching.VerdictUnknown
	}

	answer, err := chat.Ask(ctx, c.gen, vars.CLASSIFY_SYSTEM, prompt, c.timeout,
		model.WithTemperature(0.1), model.WithMaxTokens(50))
	if err != nil {
		c.log.Warn("nomenclature classifier failed",
			zap.String("lot_number", lot.LotNumber), zap.Error(err))
		return matching.VerdictUnknown
	}

	yes, ok := chat.YesNo(answer)
	if !ok {
		c.log.Warn("nomenclature classifier gave no verdict",
			zap.String("lot_number", lot.LotNumber), zap.String("answer", answer))
		return matching.VerdictUnknown
	}
	if yes {
		return matching.VerdictYes
	}
	return matching.VerdictNo
}

// LotText is the lot summary shown to classifiers.
func LotText(lot *types.Lot) string {
	parts := []string{lot.Title}
	if d := strings.TrimSpace(lot.Description); d != "" {
		parts = append(parts, "Описание: "+truncateRunes(d, maxDescriptionRunes))
	}
	if len(lot.Nomenclature) > 0 {
		items := lot.Nomenclature
		if len(items) > maxLotNomenclature {
			items = items[:maxLotNomenclature]
		}
		parts = append(parts, "Номенклатура в лоте: "+strings.Join(items, ", "))
	}
	return strings.Join(parts, "\n")
}

func groupsText(candidates []matching.Category) string {
	lines := make([]string, 0, len(candidates))
	for _, cat := range candidates {
		kws := cat.Keywords
		if len(kws) > maxHintKeywords {
			kws = kws[:maxHintKeywords]
		}
		if len(kws) == 0 {
			lines = append(lines, "- "+cat.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", cat.Name, strings.Join(kws, ", ")))
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
