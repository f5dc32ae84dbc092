package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"lowher/internal/logger"
	"lowher/internal/types"
)

// LLMTagger labels tokens with an OpenAI-compatible chat model.
// Tokenization stays local so re-assembly is byte-exact; the model only
// decides which word tokens are named entities. Any API or parse
// failure degrades to the rule tagger.
type LLMTagger struct {
	model    *openai.ChatModel
	fallback *RuleTagger
}

// NewLLMTagger creates an LLMTagger against the given OpenAI-compatible
// endpoint. The chat model is constructed once and reused across calls.
func NewLLMTagger(ctx context.Context, apiKey, baseURL, modelName string) (*LLMTagger, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "API key is not configured", nil)
	}

	cfg := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: apiKey,
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	model, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrAPICall, "failed to create chat model", err)
	}

	logger.Info("LLM tagger initialized", logger.String("model", modelName))
	return &LLMTagger{
		model:    model,
		fallback: NewRuleTagger(),
	}, nil
}

// entityLabel is one entry of the model's JSON reply.
type entityLabel struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
}

// Classify implements Tagger.
func (t *LLMTagger) Classify(ctx context.Context, text string) ([]types.Token, error) {
	tokens := Tokenize(text)

	var words []string
	wordIndex := make([]int, 0, len(tokens))
	for i, tok := range tokens {
		if tok.Category == types.TokenWord {
			words = append(words, tok.Text)
			wordIndex = append(wordIndex, i)
		}
	}
	if len(words) == 0 {
		return tokens, nil
	}

	resp, err := t.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(llmSystemPrompt),
		schema.UserMessage(buildTokenPrompt(words)),
	})
	if err != nil {
		logger.Warn("entity model call failed, falling back to rule tagger", logger.Err(err))
		return t.fallback.Classify(ctx, text)
	}

	labels, err := parseEntityLabels(resp.Content)
	if err != nil {
		logger.Warn("entity model reply unparsable, falling back to rule tagger", logger.Err(err))
		return t.fallback.Classify(ctx, text)
	}

	for _, l := range labels {
		if l.Index < 0 || l.Index >= len(words) {
			continue
		}
		cat, ok := entityCategory(l.Category)
		if !ok {
			continue
		}
		tokens[wordIndex[l.Index]].Category = cat
	}

	return tokens, nil
}

const llmSystemPrompt = `You are a named entity recognizer. You receive a numbered list of tokens from an English text.
Identify tokens that are part of a person name, an organization name, or a location/place name.

Reply with ONLY a JSON array, no prose, no code fences. Each element:
{"index": <token number>, "category": "person" | "organization" | "location"}

Tokens that are not part of such an entity must not appear in the array. An empty array is a valid reply.`

// buildTokenPrompt lists the word tokens with their indices.
func buildTokenPrompt(words []string) string {
	var sb strings.Builder
	sb.WriteString("Tokens:\n")
	for i, w := range words {
		fmt.Fprintf(&sb, "%d: %s\n", i, w)
	}
	return sb.String()
}

// parseEntityLabels extracts the JSON array from the model reply,
// tolerating code fences and surrounding prose.
func parseEntityLabels(content string) ([]entityLabel, error) {
	s := strings.TrimSpace(content)

	// Strip a fenced reply despite the prompt asking for bare JSON.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return nil, types.NewAppErrorWithDetails(types.ErrAPICall,
			"no JSON array in model reply", truncateForLog(content), nil)
	}

	var labels []entityLabel
	if err := json.Unmarshal([]byte(s[start:end+1]), &labels); err != nil {
		return nil, types.NewAppError(types.ErrAPICall, "failed to parse entity labels", err)
	}
	return labels, nil
}

// entityCategory maps a model label to a token category.
func entityCategory(label string) (types.TokenCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "person", "per":
		return types.TokenPerson, true
	case "organization", "org":
		return types.TokenOrganization, true
	case "location", "loc", "gpe", "place":
		return types.TokenLocation, true
	default:
		return types.TokenWord, false
	}
}

// truncateForLog shortens a model reply for log output.
func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
