package vars

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Pipeline.PollInterval())
	assert.Equal(t, 0, cfg.Pipeline.GraceDays)
	assert.Equal(t, 5, cfg.Pipeline.Concurrency)
	assert.Equal(t, 20*time.Second, cfg.Pipeline.CallTimeout)
	assert.True(t, cfg.Pipeline.SemanticFallback)
	assert.Equal(t, "llm", cfg.Pipeline.Classifier)
	assert.Equal(t, LotIndex, cfg.ES.Index)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PARSER_INTERVAL_MINUTES", "15")
	t.Setenv("NOTIFY_EMAILS", "ops@example.com, buyer@example.com,")
	t.Setenv("CLEANUP_GRACE_DAYS", "2")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Pipeline.PollInterval())
	assert.Equal(t, []string{"ops@example.com", "buyer@example.com"}, cfg.Pipeline.FallbackRecipients)
	assert.Equal(t, 2, cfg.Pipeline.GraceDays)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.False(t, cfg.SMTP.Configured())
}

func TestValidate(t *testing.T) {
	base := Config{
		Pipeline: PipelineConfig{PollMinutes: 30, Concurrency: 5, CallTimeout: time.Second, Classifier: "llm"},
		LLM:      LLMConfig{Provider: "ollama"},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Pipeline.Concurrency = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.Pipeline.GraceDays = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.Pipeline.Classifier = "regex"
	assert.Error(t, bad.Validate())

	bad = base
	bad.LLM.Provider = "perplexity"
	assert.Error(t, bad.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c ", ""}))
	assert.Nil(t, splitList(nil))
}
