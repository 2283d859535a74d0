package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gradepilot/gradepilot/internal/config"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/logging"
)

func geminiResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, url string, maxRetries int) *Client {
	t.Helper()
	client, err := NewClient(config.GeminiConfig{
		APIKey:     "test-key",
		Model:      "gemini-2.0-flash",
		Endpoint:   url,
		Timeout:    "5s",
		MaxRetries: maxRetries,
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.GeminiConfig{Model: "gemini-2.0-flash"}, logging.NewNop())
	if !core.IsCategory(err, core.ErrCatValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGradeAnswer(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiResponse(
			"GRADE: 88/100\nGRADE_JUSTIFICATION: Strong answer.\nFEEDBACK: Well done.")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	result, err := client.GradeAnswer(context.Background(), core.AnswerGradingRequest{
		AssignmentTitle: "Essay 1",
		Questionnaire:   "Explain photosynthesis.",
		AnswerKey:       "Light reactions convert light to chemical energy.",
		StudentAnswer:   "Plants turn sunlight into sugar.",
		StudentName:     "Ada",
	})
	if err != nil {
		t.Fatalf("GradeAnswer failed: %v", err)
	}

	if result.Grade != 88 || result.Feedback != "Well done." {
		t.Errorf("unexpected result: %+v", result)
	}
	if gotPath != "/models/gemini-2.0-flash:generateContent" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header missing, got %q", gotKey)
	}
	body := string(gotBody)
	if !strings.Contains(body, "Explain photosynthesis.") || !strings.Contains(body, "Plants turn sunlight into sugar.") {
		t.Error("prompt should include questionnaire and submission")
	}
}

func TestGradeAnswerValidation(t *testing.T) {
	client := newTestClient(t, "http://unused", 0)

	_, err := client.GradeAnswer(context.Background(), core.AnswerGradingRequest{
		AnswerKey: "key",
	})
	if !core.IsCategory(err, core.ErrCatValidation) {
		t.Fatalf("expected validation error for empty answer, got %v", err)
	}

	_, err = client.GradeAnswer(context.Background(), core.AnswerGradingRequest{
		StudentAnswer: "answer",
	})
	if !core.IsCategory(err, core.ErrCatValidation) {
		t.Fatalf("expected validation error for empty key, got %v", err)
	}
}

func TestGradeAnswerUnparseableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiResponse("I think this deserves a good grade!")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	_, err := client.GradeAnswer(context.Background(), core.AnswerGradingRequest{
		AnswerKey:     "key",
		StudentAnswer: "answer",
	})
	if !core.IsCategory(err, core.ErrCatParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(geminiResponse("the answer key")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	key, err := client.GenerateAnswerKey(context.Background(), "What is DNA?")
	if err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if key != "the answer key" {
		t.Errorf("unexpected key %q", key)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"invalid argument"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	_, err := client.GenerateAnswerKey(context.Background(), "What is DNA?")
	if !core.IsCategory(err, core.ErrCatExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
	if core.IsRetryable(err) {
		t.Error("client errors should not be retryable")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestGenerateRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	_, err := client.GenerateAnswerKey(context.Background(), "What is DNA?")
	if !core.IsCategory(err, core.ErrCatRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected upstream message, got %v", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	_, err := client.GenerateAnswerKey(context.Background(), "What is DNA?")
	if !core.IsCategory(err, core.ErrCatParse) {
		t.Fatalf("expected parse error for empty candidates, got %v", err)
	}
}

func TestRefineAnswerKey(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(geminiResponse("refined key")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	refined, err := client.RefineAnswerKey(context.Background(), "old key", "add more detail on question 2")
	if err != nil {
		t.Fatalf("RefineAnswerKey failed: %v", err)
	}
	if refined != "refined key" {
		t.Errorf("unexpected refined key %q", refined)
	}
	if !strings.Contains(gotBody, "old key") || !strings.Contains(gotBody, "add more detail") {
		t.Error("prompt should carry the current key and feedback")
	}

	if _, err := client.RefineAnswerKey(context.Background(), "", "feedback"); !core.IsCategory(err, core.ErrCatValidation) {
		t.Errorf("expected validation error for empty key, got %v", err)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.GenerateAnswerKey(ctx, "What is DNA?"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
