package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gradepilot/gradepilot/internal/config"
	"github.com/gradepilot/gradepilot/internal/core"
	"github.com/gradepilot/gradepilot/internal/logging"
)

// Client talks to the Gemini generateContent REST API. It implements
// core.AnswerGrader.
type Client struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
	log        *logging.Logger
}

// NewClient creates a Gemini client. The API key is mandatory.
func NewClient(cfg config.GeminiConfig, log *logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, core.ErrValidation(core.CodeMissingField, "gemini api key is not configured")
	}

	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing gemini timeout: %w", err)
		}
		timeout = parsed
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("gemini"),
	}, nil
}

// GradeAnswer grades one submission and parses the structured response.
func (c *Client) GradeAnswer(ctx context.Context, req core.AnswerGradingRequest) (*core.GeminiGradeResult, error) {
	if strings.TrimSpace(req.AnswerKey) == "" {
		return nil, core.ErrValidation(core.CodeEmptyText, "answer key is empty")
	}
	if strings.TrimSpace(req.StudentAnswer) == "" {
		return nil, core.ErrValidation(core.CodeEmptyText, "student answer is empty")
	}

	raw, err := c.generate(ctx, gradingPrompt(req))
	if err != nil {
		return nil, err
	}

	result, err := parseGradeResponse(raw)
	if err != nil {
		c.log.WithStudent(req.StudentName).Warn("unparseable grader response", "error", err)
		return nil, err
	}
	return result, nil
}

// GenerateAnswerKey produces an initial answer key from the questionnaire.
func (c *Client) GenerateAnswerKey(ctx context.Context, questionnaire string) (string, error) {
	if strings.TrimSpace(questionnaire) == "" {
		return "", core.ErrValidation(core.CodeEmptyText, "questionnaire is empty")
	}
	return c.generate(ctx, answerKeyPrompt(questionnaire))
}

// RefineAnswerKey revises an answer key per the teacher's instructions.
func (c *Client) RefineAnswerKey(ctx context.Context, currentKey, instructions string) (string, error) {
	if strings.TrimSpace(currentKey) == "" {
		return "", core.ErrValidation(core.CodeEmptyText, "current answer key is empty")
	}
	if strings.TrimSpace(instructions) == "" {
		return "", core.ErrValidation(core.CodeEmptyText, "refinement feedback is empty")
	}
	return c.generate(ctx, refineKeyPrompt(currentKey, instructions))
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// generate calls the generateContent endpoint, retrying retryable failures
// with linear backoff.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	attempts := c.cfg.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.log.Debug("retrying gemini request", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !core.IsRetryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: c.cfg.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", core.ErrExternal(core.CodeGeminiFailed, "gemini request failed").WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.ErrExternal(core.CodeGeminiFailed, "reading gemini response").WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, respBody)
	}

	text := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text")
	if !text.Exists() || text.String() == "" {
		return "", core.ErrParse(core.CodeMalformedOutput, "gemini response has no candidate text")
	}
	return text.String(), nil
}

// apiError maps an HTTP failure to a domain error. Rate limits and server
// errors are retryable, everything else is not.
func apiError(status int, body []byte) *core.DomainError {
	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = fmt.Sprintf("gemini returned status %d", status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return &core.DomainError{
			Category:  core.ErrCatRateLimit,
			Code:      "GEMINI_RATE_LIMITED",
			Message:   message,
			Retryable: true,
		}
	case status >= 500:
		return core.ErrExternal(core.CodeGeminiFailed, message)
	default:
		return &core.DomainError{
			Category: core.ErrCatExternal,
			Code:     core.CodeGeminiFailed,
			Message:  message,
		}
	}
}
