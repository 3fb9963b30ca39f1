package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
)

type stubChat struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.req = req
	return s.resp, s.err
}

func TestOpenAISummarizer(t *testing.T) {
	scope := "src/api/**"
	version := domain.NewStandardVersion(uuid.New(), "API Style", "api-style", "REST conventions", &scope, 1, nil, nil)
	rules := []domain.Rule{
		domain.NewRule(version.ID, "Use plural nouns", 0),
		domain.NewRule(version.ID, "Version your endpoints", 1),
	}
	chat := &stubChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "  Consistent REST APIs. "}},
	}}}

	summary, err := NewOpenAISummarizer(chat, "", nil).Summarize(context.Background(), version, rules)
	require.NoError(t, err)
	assert.Equal(t, "Consistent REST APIs.", summary)
	assert.Equal(t, openai.GPT4oMini, chat.req.Model)
	require.Len(t, chat.req.Messages, 2)
	assert.Contains(t, chat.req.Messages[1].Content, "- Version your endpoints")
	assert.Contains(t, chat.req.Messages[1].Content, "Applies to: src/api/**")
}

func TestOpenAISummarizerErrors(t *testing.T) {
	version := domain.NewStandardVersion(uuid.New(), "x", "x", "", nil, 1, nil, nil)

	_, err := NewOpenAISummarizer(&stubChat{err: errors.New("rate limited")}, "gpt-4o", nil).Summarize(context.Background(), version, nil)
	assert.ErrorContains(t, err, "rate limited")

	_, err = NewOpenAISummarizer(&stubChat{}, "gpt-4o", nil).Summarize(context.Background(), version, nil)
	assert.ErrorContains(t, err, "no choices")
}
