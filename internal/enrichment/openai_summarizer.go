package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/logger"
)

const systemPrompt = "You summarize coding standards. Answer with one or two plain sentences describing what the standard enforces and where it applies. No markdown."

// ChatCompleter is the subset of the go-openai client the summarizer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAISummarizer asks a chat model for a version summary.
type OpenAISummarizer struct {
	client    ChatCompleter
	model     string
	maxTokens int
	log       *logger.Logger
}

func NewOpenAISummarizer(client ChatCompleter, model string, log *logger.Logger) *OpenAISummarizer {
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISummarizer{
		client:    client,
		model:     model,
		maxTokens: 200,
		log:       logger.OrNop(log).With("component", "OpenAISummarizer"),
	}
}

// NewOpenAIClient builds a go-openai client, honouring a custom base URL for
// compatible gateways.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, version domain.StandardVersion, rules []domain.Rule) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(version, rules)},
		},
		MaxCompletionTokens: s.maxTokens,
	}
	s.log.Debug("requesting summary", "model", s.model, "standard_id", version.StandardID, "version", version.Version)
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildPrompt renders the version into the user message sent to the model.
func BuildPrompt(version domain.StandardVersion, rules []domain.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Standard: %s\n", version.Name)
	if desc := strings.TrimSpace(version.Description); desc != "" {
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}
	if scope := domain.ScopeValue(version.Scope); scope != "" {
		fmt.Fprintf(&b, "Applies to: %s\n", scope)
	}
	if len(rules) > 0 {
		b.WriteString("Rules:\n")
		for _, content := range domain.RuleContents(rules) {
			fmt.Fprintf(&b, "- %s\n", content)
		}
	}
	return b.String()
}
