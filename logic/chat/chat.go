package chat

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"procurement-radar/vars"

	"github.com/cloudwego/eino-ext/components/embedding/ollama"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Generator is the slice of the eino chat model the app depends on.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// NewModel builds the configured chat model. One instance is shared by every
// LLM-backed collaborator.
func NewModel(ctx context.Context, cfg vars.LLMConfig, timeout time.Duration) (model.ToolCallingChatModel, error) {
	switch cfg.Provider {
	case "ollama":
		modelName := cfg.Model
		if modelName == "" || modelName == vars.OpenAIDefaultModel {
			modelName = vars.QWEN7B
		}
		return CreateOllamaChatModel(ctx, cfg.BaseURL, modelName, timeout)
	case "openai":
		return CreateOpenAIChatModel(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model, timeout)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// NewEmbedder builds the ollama embedder wrapped in CleanEmbedder.
func NewEmbedder(ctx context.Context, cfg vars.LLMConfig, timeout time.Duration) (embedding.Embedder, error) {
	inner, err := ollama.NewEmbedder(ctx, &ollama.EmbeddingConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.EmbedModel,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder failed: %w", err)
	}
	return NewCleanEmbedder(inner), nil
}

// Ask sends a system+user exchange and returns the trimmed answer text.
// timeout <= 0 means the caller's context alone bounds the call.
func Ask(ctx context.Context, g Generator, system, user string, timeout time.Duration, opts ...model.Option) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	msgs := make([]*schema.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(user))

	resp, err := g.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("empty model response")
	}
	return strings.TrimSpace(resp.Content), nil
}

// Render executes a prompt template.
func Render(prompt string, data any) (string, error) {
	t, err := template.New("p").Parse(prompt)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ExtractJSON cuts the outermost {...} object out of a model answer, dropping
// markdown fences and chatter around it.
func ExtractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// YesNo interprets a binary answer. ok is false when the answer is neither.
func YesNo(answer string) (yes bool, ok bool) {
	a := strings.ToUpper(strings.TrimSpace(answer))
	a = strings.Trim(a, ".!\"'`* \n")
	switch {
	case strings.HasPrefix(a, "ДА"), strings.HasPrefix(a, "YES"):
		return true, true
	case strings.HasPrefix(a, "НЕТ"), strings.HasPrefix(a, "NO"):
		return false, true
	}
	return false, false
}
