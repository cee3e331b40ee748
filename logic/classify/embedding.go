package classify

import (
	"context"
	"math"
	"strings"
	"time"

	"procurement-radar/logic/matching"
	"procurement-radar/types"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

// EmbeddingClassifier says yes when the lot text is close enough to any
// candidate category description in embedding space.
type EmbeddingClassifier struct {
	embedder  embedding.Embedder
	threshold float64
	timeout   time.Duration
	log       *zap.Logger
}

func NewEmbeddingClassifier(embedder embedding.Embedder, threshold float64, timeout time.Duration, log *zap.Logger) *EmbeddingClassifier {
	return &EmbeddingClassifier{embedder: embedder, threshold: threshold, timeout: timeout, log: log}
}

func (c *EmbeddingClassifier) Classify(ctx context.Context, lot *types.Lot, candidates []matching.Category) matching.Verdict {
	if len(candidates) == 0 {
		return matching.VerdictNo
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, LotText(lot))
	for _, cat := range candidates {
		texts = append(texts, cat.Name+": "+strings.Join(cat.Keywords, ", "))
	}

	vectors, err := c.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		c.log.Warn("embedding classifier failed", zap.String("lot_number", lot.LotNumber), zap.Error(err))
		return matching.VerdictUnknown
	}
	if len(vectors) != len(texts) {
		c.log.Warn("embedding classifier got wrong vector count",
			zap.Int("want", len(texts)), zap.Int("got", len(vectors)))
		return matching.VerdictUnknown
	}

	best := -1.0
	for _, v := range vectors[1:] {
		if s := cosine(vectors[0], v); s > best {
			best = s
		}
	}
	c.log.Debug("embedding similarity", zap.String("lot_number", lot.LotNumber), zap.Float64("best", best))
	if best >= c.threshold {
		return matching.VerdictYes
	}
	return matching.VerdictNo
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
