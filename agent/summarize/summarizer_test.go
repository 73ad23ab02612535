package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	llmx "github.com/tanpawarit/voice-diary/agent/llm"
	openrouterx "github.com/tanpawarit/voice-diary/pkg/openrouter"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func TestChatSummarizer(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{reply: "  Вы сходили в поход.  "}
	s, err := NewChatSummarizer(context.Background(), fake, "перескажи коротко")
	if err != nil {
		t.Fatalf("NewChatSummarizer() error = %v", err)
	}

	got, err := s.Summarize(context.Background(), "Сегодня мы ходили в поход {и это было} здорово")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Вы сходили в поход." {
		t.Fatalf("Summarize() = %q", got)
	}
	if len(fake.seen) != 2 || fake.seen[0].Role != schema.System || fake.seen[1].Content != "Сегодня мы ходили в поход {и это было} здорово" {
		t.Fatalf("model saw %+v", fake.seen)
	}
}

func TestChatSummarizerEmptyReply(t *testing.T) {
	t.Parallel()

	s, err := NewChatSummarizer(context.Background(), &fakeChatModel{reply: "   "}, "p")
	if err != nil {
		t.Fatalf("NewChatSummarizer() error = %v", err)
	}
	if _, err := s.Summarize(context.Background(), "text"); !errors.Is(err, ErrEmptySummary) {
		t.Fatalf("Summarize() error = %v, want ErrEmptySummary", err)
	}
}

func TestCompletionSummarizer(t *testing.T) {
	t.Parallel()

	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxCompletionTokens int `json:"max_completion_tokens"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "m",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Коротко."}}]
		}`))
	}))
	defer srv.Close()

	cfg := llmx.Config{Backend: llmx.BackendCompletion, BaseURL: srv.URL, APIKey: "k", Model: "test-model", MaxCompletionToken: 64}
	client := openrouterx.NewClient(cfg.OpenRouter())
	s, err := NewCompletionSummarizer(client, cfg, "system prompt")
	if err != nil {
		t.Fatalf("NewCompletionSummarizer() error = %v", err)
	}

	out, err := s.Summarize(context.Background(), "полный текст")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out != "Коротко." {
		t.Fatalf("Summarize() = %q", out)
	}
	if got.Model != "test-model" || got.MaxCompletionTokens != 64 {
		t.Fatalf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "полный текст" {
		t.Fatalf("messages = %+v", got.Messages)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), llmx.Config{Backend: llmx.BackendEino}, "p"); err == nil {
		t.Fatal("New() without api key must fail")
	}
}
