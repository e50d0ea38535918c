package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// PingOptions controls JSON mode, reasoning and tokens.
type PingOptions struct {
	ReasoningEffort      string
	MaxOutputTokens      *int
	StructuredSchemaName string
	StructuredSchema     map[string]any
	StructuredStrict     bool
}

// Client talks to an OpenAI-compatible chat/completions endpoint.
type Client struct {
	cfg  apiConfig
	http *http.Client
	opts PingOptions
}

// NewClient resolves provider, key and base URL from the environment.
func NewClient(model string, timeout time.Duration) (*Client, error) {
	cfg, err := resolveAPIConfig(model)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}, opts: envPingOptions()}, nil
}

func (c *Client) Model() string { return c.cfg.Model }

// Complete sends one system+user exchange and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, c.opts)
}

func (c *Client) complete(ctx context.Context, system, user string, opts PingOptions) (string, error) {
	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	if opts.MaxOutputTokens != nil && *opts.MaxOutputTokens > 0 {
		payload["max_tokens"] = *opts.MaxOutputTokens
	}
	if strings.TrimSpace(opts.ReasoningEffort) != "" {
		payload["reasoning"] = map[string]any{"effort": opts.ReasoningEffort}
	}
	if opts.StructuredSchema != nil {
		payload["response_format"] = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   coalesce(opts.StructuredSchemaName, "structured"),
				"strict": opts.StructuredStrict,
				"schema": opts.StructuredSchema,
			},
		}
	} else {
		payload["response_format"] = map[string]any{"type": "json_object"}
	}
	applyTuningFromEnv(payload, c.cfg.Kind == providerOpenRouter)

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setHeaderPreserveCase(req.Header, c.cfg.HeaderName, c.cfg.HeaderPrefix+c.cfg.APIKey)
	if c.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}
	for k, v := range c.cfg.ExtraHeaders {
		setHeaderPreserveCase(req.Header, k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.Bytes()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm http %d: %s", resp.StatusCode, truncate(string(body), 800))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &cc); err != nil {
		return "", err
	}
	if len(cc.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return cc.Choices[0].Message.Content, nil
}

// ChooseKind requests a structured {"action": <kind>} reply restricted to legal.
// It returns the normalised kind and the raw reply.
func (c *Client) ChooseKind(ctx context.Context, system, user string, legal []string) (string, string, error) {
	opts := c.opts
	opts.StructuredSchemaName = "draw_action"
	opts.StructuredStrict = true
	opts.StructuredSchema = map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        legal,
				"description": "One of the legal actions",
			},
		},
		"required": []string{"action"},
	}
	text, err := c.complete(ctx, system, user, opts)
	if err != nil {
		return "", text, err
	}
	kind, ok := ParseKind(text, legal)
	if !ok {
		return "", text, errors.New("no legal action in response")
	}
	return kind, text, nil
}

// ChooseDiscards requests a structured {"discard": [...]} reply drawn from hand.
func (c *Client) ChooseDiscards(ctx context.Context, system, user string, hand []string) ([]string, string, error) {
	opts := c.opts
	opts.StructuredSchemaName = "draw_discards"
	opts.StructuredStrict = true
	opts.StructuredSchema = map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"discard": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "enum": hand},
				"maxItems":    len(hand),
				"uniqueItems": true,
				"description": "Cards to throw away; empty to stand pat",
			},
		},
		"required": []string{"discard"},
	}
	text, err := c.complete(ctx, system, user, opts)
	if err != nil {
		return nil, text, err
	}
	cards, ok := ParseDiscards(text)
	if !ok {
		return nil, text, errors.New("no discard list in response")
	}
	return cards, text, nil
}

// setHeaderPreserveCase keeps non-canonical spellings such as HTTP-Referer,
// which some gateways match case-sensitively.
func setHeaderPreserveCase(h http.Header, key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if http.CanonicalHeaderKey(key) == key {
		h.Set(key, value)
		return
	}
	h.Del(key)
	h[key] = []string{value}
}

func applyTuningFromEnv(m map[string]any, preferOpenRouter bool) {
	if v := envWithFallback(preferOpenRouter, "OPENAI_TEMPERATURE", "OPENROUTER_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m["temperature"] = f
		}
	}
	if v := envWithFallback(preferOpenRouter, "OPENAI_TOP_P", "OPENROUTER_TOP_P"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m["top_p"] = f
		}
	}
	if v := envWithFallback(preferOpenRouter, "OPENAI_TOP_K", "OPENROUTER_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			m["top_k"] = n
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func coalesce(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func envPingOptions() PingOptions {
	opts := PingOptions{}
	preferOpenRouter := preferOpenRouterEnv()
	if v := envWithFallback(preferOpenRouter, "OPENAI_REASONING_EFFORT", "OPENROUTER_REASONING_EFFORT"); v != "" {
		switch strings.ToLower(v) {
		case "low", "medium", "high":
			opts.ReasoningEffort = strings.ToLower(v)
		}
	}
	if v := envWithFallback(preferOpenRouter, "OPENAI_MAX_OUTPUT_TOKENS", "OPENROUTER_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxOutputTokens = &n
		}
	}
	return opts
}

func envWithFallback(preferOpenRouter bool, openAIKey, openRouterKey string) string {
	keys := []string{openAIKey, openRouterKey}
	if preferOpenRouter {
		keys[0], keys[1] = keys[1], keys[0]
	}
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func preferOpenRouterEnv() bool {
	if strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")) != "" && strings.TrimSpace(os.Getenv("OPENAI_API_KEY")) == "" {
		return true
	}
	if strings.TrimSpace(os.Getenv("OPENROUTER_MODEL")) != "" && strings.TrimSpace(os.Getenv("OPENAI_MODEL")) == "" {
		return true
	}
	if strings.TrimSpace(os.Getenv("OPENROUTER_API_BASE")) != "" || strings.TrimSpace(os.Getenv("OPENROUTER_BASE_URL")) != "" {
		return true
	}
	for _, k := range []string{"OPENAI_API_BASE", "OPENAI_BASE_URL"} {
		if base := strings.TrimSpace(os.Getenv(k)); base != "" && strings.Contains(strings.ToLower(base), "openrouter") {
			return true
		}
	}
	return false
}
