package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LLM_PROVIDER", "OPENAI_API_KEY", "OPENROUTER_API_KEY", "OPENAI_MODEL", "OPENROUTER_MODEL",
		"OPENAI_API_BASE", "OPENAI_BASE_URL", "OPENROUTER_API_BASE", "OPENROUTER_BASE_URL",
		"OPENAI_API_KEY_HEADER", "OPENROUTER_API_KEY_HEADER", "OPENAI_API_KEY_PREFIX", "OPENROUTER_API_KEY_PREFIX",
		"OPENROUTER_SITE_URL", "OPENROUTER_TITLE", "OPENAI_ORG",
	} {
		t.Setenv(k, "")
	}
}

func TestResolveOpenAI(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := resolveAPIConfig("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, providerOpenAI, cfg.Kind)
	assert.Equal(t, "https://api.openai.com/v1", cfg.BaseURL)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "Authorization", cfg.HeaderName)
	assert.Equal(t, "Bearer ", cfg.HeaderPrefix)
	assert.Empty(t, cfg.ExtraHeaders)
}

func TestResolveOpenRouterFromBaseURL(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_BASE", "https://openrouter.ai/api/v1/")
	t.Setenv("OPENAI_API_KEY", "test-key")
	cfg, err := resolveAPIConfig("meta-llama/llama-3.1-70b-instruct")
	require.NoError(t, err)
	assert.Equal(t, providerOpenRouter, cfg.Kind)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.BaseURL)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.NotContains(t, cfg.ExtraHeaders, "HTTP-Referer")
	assert.Equal(t, "DrawBench", cfg.ExtraHeaders["X-Title"])
}

func TestResolveOpenRouterAttribution(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("OPENAI_API_KEY", "sk-other")
	t.Setenv("OPENROUTER_SITE_URL", "https://example.com/app")
	t.Setenv("OPENROUTER_TITLE", "Custom Title")
	cfg, err := resolveAPIConfig("openrouter/auto")
	require.NoError(t, err)
	assert.Equal(t, providerOpenRouter, cfg.Kind)
	assert.Equal(t, "or-key", cfg.APIKey)
	assert.Equal(t, "https://example.com/app", cfg.ExtraHeaders["Referer"])
	assert.Equal(t, "Custom Title", cfg.ExtraHeaders["X-Title"])
}

func TestResolveProviderOverrideAndModelFallback(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_BASE", "https://openrouter.ai/api/v1")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("OPENAI_API_KEY_HEADER", "api-key")
	cfg, err := resolveAPIConfig("")
	require.NoError(t, err)
	assert.Equal(t, providerOpenAI, cfg.Kind)
	assert.Equal(t, "gpt-4.1-mini", cfg.Model)
	assert.Equal(t, "or-key", cfg.APIKey)
	assert.Equal(t, "api-key", cfg.HeaderName)
	assert.Empty(t, cfg.HeaderPrefix)
}

func TestResolveErrors(t *testing.T) {
	clearProviderEnv(t)
	_, err := resolveAPIConfig("")
	assert.ErrorContains(t, err, "model missing")

	_, err = resolveAPIConfig("gpt-4o-mini")
	assert.ErrorContains(t, err, "API key missing")
}
