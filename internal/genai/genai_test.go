package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"

	"github.com/BTreeMap/CallPrep/internal/testutil"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp      openai.ChatCompletion
	err       error
	gotParams openai.ChatCompletionNewParams
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	m.gotParams = params
	return m.resp, m.err
}

func singleChoice(content string) openai.ChatCompletion {
	return openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerateSummary_Success(t *testing.T) {
	mock := &mockChatService{resp: singleChoice("Hello World")}
	client := &Client{chat: mock, model: DefaultModel}
	out, err := client.GenerateSummary(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Hello World" {
		t.Errorf("expected 'Hello World', got '%s'", out)
	}
	if mock.gotParams.Model != DefaultModel {
		t.Errorf("expected model %q, got %q", DefaultModel, mock.gotParams.Model)
	}
	if len(mock.gotParams.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(mock.gotParams.Messages))
	}
}

func TestGenerateSummary_ServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}, model: DefaultModel}
	_, err := client.GenerateSummary(context.Background(), "sys", "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGenerateSummary_NoChoices(t *testing.T) {
	mock := &mockChatService{resp: openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{}}}
	client := &Client{chat: mock, model: DefaultModel}
	_, err := client.GenerateSummary(context.Background(), "sys", "usr")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestClinicalSummary_RecordInPrompt(t *testing.T) {
	mock := &mockChatService{resp: singleChoice("briefing")}
	client := &Client{chat: mock, model: DefaultModel}
	out, err := client.ClinicalSummary(context.Background(), testutil.SamplePatientRecord())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "briefing" {
		t.Errorf("expected 'briefing', got '%s'", out)
	}
	if len(mock.gotParams.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mock.gotParams.Messages))
	}
	user := mock.gotParams.Messages[1].OfUser
	if user == nil {
		t.Fatal("expected second message to be a user message")
	}
	if !strings.Contains(user.Content.OfString.Value, "PITWICZ") {
		t.Error("expected user prompt to carry the patient record JSON")
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_WithKey(t *testing.T) {
	cli, err := NewClient(WithAPIKey("test-key"), WithModel("gpt-4o"))
	if err != nil {
		t.Fatalf("expected no error with API key, got %v", err)
	}
	if cli == nil {
		t.Fatal("expected client instance, got nil")
	}
	if cli.model != "gpt-4o" {
		t.Errorf("expected model override, got %q", cli.model)
	}
}
