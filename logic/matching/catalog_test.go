package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	assert.Equal(t, 1, c.Version())
	names := c.Names()
	assert.Len(t, names, 21)
	assert.Equal(t, "Строительные материалы", names[0])
	assert.Contains(t, c.Keywords("Спецодежда, СИЗ, товары для ОТ и ТБ"), "каска")
	assert.Nil(t, c.Keywords("нет такой группы"))
}

func TestKeywordsReturnsCopy(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	kws := c.Keywords("Тара")
	kws[0] = "изменено"
	assert.Equal(t, "тара", c.Keywords("Тара")[0])
}

func TestLoadCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "version: 7\ncategories:\n  - name: Кабель\n    keywords: [КАБЕЛЬ, ' провод ']\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Version())
	assert.Equal(t, []string{"кабель", "провод"}, c.Keywords("Кабель"))
	assert.True(t, c.KeywordMatch("Провод ПВС", []string{"Кабель"}))
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := ParseCatalog([]byte("categories: []"))
	assert.Error(t, err, "missing version")

	_, err = ParseCatalog([]byte("version: 1\ncategories:\n  - name: A\n  - name: A\n"))
	assert.Error(t, err, "duplicate")

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLookupKeepsUnknownNames(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	cats := c.Lookup([]string{"Тара", "Неизвестно"})
	require.Len(t, cats, 2)
	assert.NotEmpty(t, cats[0].Keywords)
	assert.Equal(t, "Неизвестно", cats[1].Name)
	assert.Empty(t, cats[1].Keywords)
}
