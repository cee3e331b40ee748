package chat

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	answer string
	err    error
	got    []*schema.Message
}

func (s *stubGenerator) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.answer, nil), nil
}

func TestAsk(t *testing.T) {
	g := &stubGenerator{answer: "  ДА \n"}

	out, err := Ask(context.Background(), g, "sys", "user", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ДА", out)
	require.Len(t, g.got, 2)
	assert.Equal(t, schema.System, g.got[0].Role)
	assert.Equal(t, "user", g.got[1].Content)
}

func TestAskWithoutSystem(t *testing.T) {
	g := &stubGenerator{answer: "ok"}

	_, err := Ask(context.Background(), g, "", "user", 0)
	require.NoError(t, err)
	assert.Len(t, g.got, 1)
}

func TestAskError(t *testing.T) {
	g := &stubGenerator{err: errors.New("boom")}

	_, err := Ask(context.Background(), g, "", "user", time.Second)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	raw, ok := ExtractJSON("```json\n{\"a\": {\"b\": 1}}\n```")
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, raw)

	_, ok = ExtractJSON("no object here")
	assert.False(t, ok)
}

func TestYesNo(t *testing.T) {
	cases := []struct {
		in      string
		yes, ok bool
	}{
		{"ДА", true, true},
		{"да.", true, true},
		{"Yes", true, true},
		{"НЕТ", false, true},
		{"no", false, true},
		{"**Нет**", false, true},
		{"возможно", false, false},
		{"", false, false},
	}
	for _, c := range cases {
		yes, ok := YesNo(c.in)
		assert.Equal(t, c.yes, yes, c.in)
		assert.Equal(t, c.ok, ok, c.in)
	}
}

func TestRender(t *testing.T) {
	out, err := Render("Поставщик: {{.Supplier}}", map[string]string{"Supplier": "ООО Ромашка"})
	require.NoError(t, err)
	assert.Equal(t, "Поставщик: ООО Ромашка", out)
}

type nanEmbedder struct{}

func (nanEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	return [][]float64{{1, math.NaN(), math.Inf(1)}}, nil
}

func TestCleanEmbedder(t *testing.T) {
	vecs, err := NewCleanEmbedder(nanEmbedder{}).EmbedStrings(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0, 0}}, vecs)
}
