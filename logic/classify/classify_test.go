package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"procurement-radar/logic/matching"
	"procurement-radar/types"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.prompt = input[len(input)-1].Content
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.answer, nil), nil
}

var candidates = []matching.Category{
	{Name: "Метизы и крепёжные изделия", Keywords: []string{"болт", "гайка", "винт", "шпилька", "шайба", "метиз"}},
}

func testLot() *types.Lot {
	return &types.Lot{
		LotNumber:    "L-7",
		Title:        "Изделия М12",
		Description:  strings.Repeat("о", 800),
		Nomenclature: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
	}
}

func TestLLMClassifierVerdicts(t *testing.T) {
	cases := map[string]matching.Verdict{
		"ДА":          matching.VerdictYes,
		"НЕТ":         matching.VerdictNo,
		"затрудняюсь": matching.VerdictUnknown,
	}
	for answer, want := range cases {
		g := &fakeGenerator{answer: answer}
		got := NewLLMClassifier(g, time.Second, zap.NewNop()).Classify(context.Background(), testLot(), candidates)
		assert.Equal(t, want, got, answer)
	}
}

func TestLLMClassifierErrorIsUnknown(t *testing.T) {
	g := &fakeGenerator{err: errors.New("timeout")}

	got := NewLLMClassifier(g, time.Second, zap.NewNop()).Classify(context.Background(), testLot(), candidates)
	assert.Equal(t, matching.VerdictUnknown, got)
}

func TestLLMClassifierPrompt(t *testing.T) {
	g := &fakeGenerator{answer: "ДА"}
	NewLLMClassifier(g, time.Second, zap.NewNop()).Classify(context.Background(), testLot(), candidates)

	assert.Contains(t, g.prompt, "Изделия М12")
	assert.Contains(t, g.prompt, "- Метизы и крепёжные изделия: болт, гайка, винт, шпилька, шайба\n")
	assert.NotContains(t, g.prompt, "метиз\n")
	assert.Contains(t, g.prompt, "Номенклатура в лоте: a, b, c, d, e, f, g, h, i, j\n")
}

func TestLotTextTruncatesDescription(t *testing.T) {
	text := LotText(testLot())
	desc := strings.Split(text, "\n")[1]
	assert.Equal(t, "Описание: "+strings.Repeat("о", 500), desc)
}

type fakeEmbedder struct {
	vectors [][]float64
	err     error
}

func (f fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[:len(texts)], nil
}

func TestEmbeddingClassifier(t *testing.T) {
	near := fakeEmbedder{vectors: [][]float64{{1, 0}, {0.9, 0.1}}}
	far := fakeEmbedder{vectors: [][]float64{{1, 0}, {0, 1}}}
	broken := fakeEmbedder{err: errors.New("down")}

	assert.Equal(t, matching.VerdictYes, NewEmbeddingClassifier(near, 0.75, time.Second, zap.NewNop()).Classify(context.Background(), testLot(), candidates))
	assert.Equal(t, matching.VerdictNo, NewEmbeddingClassifier(far, 0.75, time.Second, zap.NewNop()).Classify(context.Background(), testLot(), candidates))
	assert.Equal(t, matching.VerdictUnknown, NewEmbeddingClassifier(broken, 0.75, time.Second, zap.NewNop()).Classify(context.Background(), testLot(), candidates))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{2, 0}, []float64{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Zero(t, cosine([]float64{0, 0}, []float64{1, 1}))
	require.Zero(t, cosine([]float64{1}, []float64{1, 2}))
}
