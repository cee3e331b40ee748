package scoring

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"procurement-radar/logic/chat"
	"procurement-radar/vars"

	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"
)

// Assessment is a supplier reliability rating with its narrative.
type Assessment struct {
	Rating  int
	Summary string
}

// Assessor rates supplier reliability. It never fails: any problem yields
// a neutral assessment with an explanation.
type Assessor interface {
	Assess(ctx context.Context, supplierName, taxID string) Assessment
}

// LLMAssessor asks the chat model for a rating.
type LLMAssessor struct {
	gen     chat.Generator
	timeout time.Duration
	log     *zap.Logger
}

func NewLLMAssessor(gen chat.Generator, timeout time.Duration, log *zap.Logger) *LLMAssessor {
	return &LLMAssessor{gen: gen, timeout: timeout, log: log}
}

func (a *LLMAssessor) Assess(ctx context.Context, supplierName, taxID string) Assessment {
	tax := ""
	if taxID != "" {
		tax = "ИНН: " + taxID
	}
	prompt, err := chat.Render(vars.RELIABILITY, map[string]string{"Supplier": supplierName, "TaxID": tax})
	if err != nil {
		return neutral(err)
	}

	answer, err := chat.Ask(ctx, a.gen, "", prompt, a.timeout,
		model.WithTemperature(0.2), model.WithMaxTokens(500))
	if err != nil {
		a.log.Warn("supplier reliability assessment failed",
			zap.String("supplier", supplierName), zap.Error(err))
		return neutral(err)
	}
	return ParseAssessment(answer)
}

func neutral(err error) Assessment {
	return Assessment{
		Rating:  NeutralRating,
		Summary: "Не удалось провести анализ надежности поставщика: " + err.Error(),
	}
}

var (
	digits     = regexp.MustCompile(`\d+`)
	ratingLine = regexp.MustCompile(`(?i)(РЕЙТИНГ|RATING)\s*:`)
	infoLine   = regexp.MustCompile(`(?i)ИНФОРМАЦИЯ\s*:\s*`)
)

// ParseAssessment reads the "РЕЙТИНГ:" / "RATING:" line and the
// "ИНФОРМАЦИЯ:" section. A missing rating is neutral.
func ParseAssessment(answer string) Assessment {
	out := Assessment{Rating: NeutralRating, Summary: strings.TrimSpace(answer)}

	lines := strings.Split(answer, "\n")
	for i, line := range lines {
		if loc := ratingLine.FindStringIndex(line); loc != nil {
			if n := digits.FindString(line[loc[1]:]); n != "" {
				if v, err := strconv.Atoi(n); err == nil {
					out.Rating = int(clamp(float64(v)))
				}
			}
			continue
		}
		if loc := infoLine.FindStringIndex(line); loc != nil {
			tail := append([]string{line[loc[1]:]}, lines[i+1:]...)
			if info := strings.TrimSpace(strings.Join(tail, "\n")); info != "" {
				out.Summary = info
			}
		}
	}
	return out
}
