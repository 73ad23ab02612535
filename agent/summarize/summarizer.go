// Package summarize produces the short form of stored notes, detached from
// the turn that stored them.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	llmx "github.com/tanpawarit/voice-diary/agent/llm"
	openrouterx "github.com/tanpawarit/voice-diary/pkg/openrouter"
)

var ErrEmptySummary = errors.New("model returned an empty summary")

// ChatSummarizer runs a prompt and chat model pair as an eino graph.
type ChatSummarizer struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Summarizer = (*ChatSummarizer)(nil)

func NewChatSummarizer(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*ChatSummarizer, error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add summarize prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add summarize model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add summarize edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add summarize edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add summarize edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("summarize.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile summarize graph: %w", err)
	}
	return &ChatSummarizer{runner: runner}, nil
}

func (s *ChatSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	msg, err := s.runner.Invoke(ctx, map[string]any{"input": text})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if msg == nil {
		return "", ErrEmptySummary
	}
	out := strings.TrimSpace(msg.Content)
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}

// CompletionSummarizer calls the chat completions API directly.
type CompletionSummarizer struct {
	client       *openai.Client
	model        string
	temperature  float64
	maxTokens    int64
	systemPrompt string
}

var _ contractx.Summarizer = (*CompletionSummarizer)(nil)

func NewCompletionSummarizer(client *openai.Client, cfg llmx.Config, systemPrompt string) (*CompletionSummarizer, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrConfiguration)
	}
	return &CompletionSummarizer{
		client:       client,
		model:        strings.TrimSpace(cfg.Model),
		temperature:  float64(cfg.Temperature),
		maxTokens:    int64(cfg.MaxCompletionToken),
		systemPrompt: systemPrompt,
	}, nil
}

func (s *CompletionSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.systemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(s.temperature),
	}
	if s.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(s.maxTokens)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptySummary
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptySummary
	}
	return out, nil
}

// New picks the backend named by cfg.
func New(ctx context.Context, cfg llmx.Config, systemPrompt string) (contractx.Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orCfg := cfg.OpenRouter()
	switch cfg.Backend {
	case llmx.BackendCompletion:
		return NewCompletionSummarizer(openrouterx.NewClient(orCfg), cfg, systemPrompt)
	default:
		chatModel, err := orCfg.New(ctx)
		if err != nil {
			return nil, err
		}
		return NewChatSummarizer(ctx, chatModel, systemPrompt)
	}
}
