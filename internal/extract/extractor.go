// Package extract turns free-form user text into a flat profile patch via
// an LLM. The model is instructed to answer with bare JSON, but replies are
// defuzzed anyway: code fences and surrounding prose are tolerated.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oxygen-anoxia/recommend-Agent/internal/llm"
)

const extractionTimeout = 30 * time.Second

// Chatter is the slice of the LLM client the extractor needs.
type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// Extractor pulls structured profile patches out of user turns.
type Extractor struct {
	client Chatter
}

// NewExtractor creates an Extractor over the given chat client.
func NewExtractor(client Chatter) *Extractor {
	return &Extractor{client: client}
}

// Extract asks the model which profile attributes the input mentions and
// returns them as a flat patch. An input that mentions nothing yields an
// empty map and no error; a reply that contains braces but is not valid
// JSON is an error.
func (e *Extractor) Extract(ctx context.Context, input string) (map[string]any, error) {
	if strings.TrimSpace(input) == "" {
		return map[string]any{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	messages := []llm.Message{
		{Role: "system", Content: extractionPrompt},
		{Role: "user", Content: input},
	}

	raw, err := e.client.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("信息提取失败: %w", err)
	}

	patch, err := parsePatch(raw)
	if err != nil {
		slog.Warn("extraction reply is not valid JSON", "error", err, "reply", raw)
		return nil, fmt.Errorf("信息提取格式错误: %w", err)
	}
	return patch, nil
}

// parsePatch digs the JSON object out of a model reply. Handles three
// shapes: bare JSON, fenced JSON, and JSON embedded in prose. A reply with
// no object at all is an empty patch.
func parsePatch(raw string) (map[string]any, error) {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return map[string]any{}, nil
	}

	var patch map[string]any
	if err := json.Unmarshal([]byte(content[start:end+1]), &patch); err != nil {
		return nil, err
	}
	return patch, nil
}
