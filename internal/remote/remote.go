// Package remote calls the configured chat-completions endpoint to turn a
// local snippet plus candidate fields into a structured extraction result,
// validated against the schema for the document's classified type.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kestrelcase/intakex/internal/errs"
	"github.com/kestrelcase/intakex/internal/model"
	"github.com/kestrelcase/intakex/internal/schema"
)

const (
	maxAttempts        = 4
	initialBackoff     = 400 * time.Millisecond
	rateLimitBackoffCap = 5 * time.Second
	defaultTimeout     = 120 * time.Second
)

// Client calls the remote extraction endpoint. A Client is safe for
// concurrent use by multiple workers; the limiter serializes dispatch rate
// across all of them.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	registry   *schema.Registry
	stats      *LLMStats
	log        *slog.Logger
}

// NewClient builds a remote extractor. limiter may be nil, in which case no
// rate limiting is applied.
func NewClient(apiKey, modelName string, limiter *rate.Limiter, registry *schema.Registry, log *slog.Logger) *Client {
	return NewClientWithEndpoint(apiKey, modelName, "https://api.openai.com/v1/chat/completions", limiter, registry, log)
}

// NewClientWithEndpoint is NewClient with an overridable endpoint, used by
// tests to point at an httptest server.
func NewClientWithEndpoint(apiKey, modelName, endpoint string, limiter *rate.Limiter, registry *schema.Registry, log *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      modelName,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    limiter,
		registry:   registry,
		stats:      NewLLMStats(time.Hour),
		log:        log,
	}
}

// Stats exposes the latency tracker for diagnostics.
func (c *Client) Stats() *LLMStats { return c.stats }

// SetTimeout overrides the per-request HTTP timeout (default 120s).
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type functionDef struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

type functionCallChoice struct {
	Name string `json:"name"`
}

type chatRequest struct {
	Model        string             `json:"model"`
	Messages     []chatMessage      `json:"messages"`
	Functions    []functionDef      `json:"functions"`
	FunctionCall functionCallChoice `json:"function_call"`
	Temperature  float64            `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content      string `json:"content"`
			FunctionCall *struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract sends localJSON and snippet to the model for the given doc type,
// parses and validates the response, and records latency. It retries
// transient failures per the fixed backoff policy and returns a fatal
// *errs.RemoteError or *errs.TransportError once attempts are exhausted.
func (c *Client) Extract(ctx context.Context, dt model.DocType, local model.LocalCandidates, snippet string) (model.ExtractionResult, error) {
	localBody, err := json.Marshal(local)
	if err != nil {
		return nil, fmt.Errorf("marshal local candidates: %w", err)
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: BuildUserMessage(dt, string(localBody), snippet)},
		},
		FunctionCall: functionCallChoice{Name: schema.ForcedFunctionName(dt)},
		Temperature:  0,
	}
	for _, fn := range schema.FunctionsFor(dt) {
		req.Functions = append(req.Functions, functionDef{Name: fn.Name, Parameters: fn.Parameters})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	start := time.Now()
	raw, err := c.dispatchWithRetry(ctx, body)
	c.stats.Record(dt, time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}

	result, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	if err := c.registry.Validate(dt, result); err != nil {
		return nil, &errs.ParseError{Raw: string(raw), Err: err}
	}
	return result, nil
}

// dispatchWithRetry performs the HTTP round trip with the fixed retry
// policy: up to maxAttempts tries, doubling backoff on 5xx (unbounded) and
// on 429 (capped at rateLimitBackoffCap), fatal on the final attempt or on
// any non-retryable status.
func (c *Client) dispatchWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &errs.TransportError{Err: err}
			}
		}

		raw, status, err := c.doRequest(ctx, body)
		if err != nil {
			lastErr = &errs.TransportError{Err: err}
			if attempt == maxAttempts {
				return nil, lastErr
			}
			c.warnRetry(attempt, lastErr)
			c.sleep(ctx, backoff)
			backoff *= 2
			continue
		}

		if status == http.StatusTooManyRequests {
			lastErr = &errs.RemoteError{StatusCode: status, Body: string(raw)}
			if attempt == maxAttempts {
				return nil, lastErr
			}
			c.warnRetry(attempt, lastErr)
			c.sleep(ctx, backoff)
			backoff *= 2
			if backoff > rateLimitBackoffCap {
				backoff = rateLimitBackoffCap
			}
			continue
		}

		if status >= 500 {
			lastErr = &errs.RemoteError{StatusCode: status, Body: string(raw)}
			if attempt == maxAttempts {
				return nil, lastErr
			}
			c.warnRetry(attempt, lastErr)
			c.sleep(ctx, backoff)
			backoff *= 2
			continue
		}

		if status >= 400 {
			return nil, &errs.RemoteError{StatusCode: status, Body: string(raw)}
		}

		return raw, nil
	}

	return nil, lastErr
}

func (c *Client) warnRetry(attempt int, err error) {
	if c.log == nil {
		return
	}
	c.log.Warn("retryable remote extraction error", "attempt", attempt, "error", err)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

var braceRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseResponse prefers function_call.arguments over plain content, falling
// back to brace-recovery extraction when the payload is wrapped in prose or
// a code fence.
func parseResponse(raw []byte) (model.ExtractionResult, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &errs.ParseError{Raw: string(raw), Err: err}
	}
	if resp.Error != nil {
		return nil, &errs.ParseError{Raw: string(raw), Err: fmt.Errorf("%s: %s", resp.Error.Type, resp.Error.Message)}
	}
	if len(resp.Choices) == 0 {
		return nil, &errs.ParseError{Raw: string(raw), Err: fmt.Errorf("no choices in response")}
	}

	msg := resp.Choices[0].Message
	var payload string
	if msg.FunctionCall != nil && msg.FunctionCall.Arguments != "" {
		payload = msg.FunctionCall.Arguments
	} else {
		payload = msg.Content
	}

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(payload), &result); err == nil {
		return result, nil
	}

	payload = stripCodeFence(payload)
	if err := json.Unmarshal([]byte(payload), &result); err == nil {
		return result, nil
	}

	recovered := braceRe.FindString(payload)
	if recovered == "" {
		return nil, &errs.ParseError{Raw: payload, Err: fmt.Errorf("no JSON object found in model output")}
	}
	if err := json.Unmarshal([]byte(recovered), &result); err != nil {
		return nil, &errs.ParseError{Raw: payload, Err: err}
	}
	return result, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
