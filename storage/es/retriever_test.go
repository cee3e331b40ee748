package es

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLotQuery(t *testing.T) {
	q := buildLotQuery("ноутбук ремонт", 20)

	assert.Equal(t, 20, q["size"])
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "ноутбук ремонт", mm["query"])
	assert.Contains(t, mm["fields"], "title^3")
}

func TestParseLotNumbersDeduplicates(t *testing.T) {
	body := `{"hits":{"hits":[
		{"_id":"A-1","_source":{"lot_number":"A-1"}},
		{"_id":"B-2","_source":{}},
		{"_id":"A-1","_source":{"lot_number":"A-1"}}
	]}}`

	numbers, err := parseLotNumbers(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "B-2"}, numbers)
}

func TestParseLotNumbersBadBody(t *testing.T) {
	_, err := parseLotNumbers(strings.NewReader("not json"))
	assert.Error(t, err)
}
