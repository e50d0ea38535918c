package llm

import (
	"errors"
	"os"
	"strings"
)

type providerKind int

const (
	providerOpenAI providerKind = iota
	providerOpenRouter
)

const defaultTitle = "DrawBench"

// provider lists where a chat provider reads its settings, most specific first.
type provider struct {
	kind      providerKind
	baseURL   string
	keyEnv    []string
	modelEnv  []string
	headerEnv []string
	prefixEnv []string
}

var providers = map[providerKind]provider{
	providerOpenAI: {
		kind:      providerOpenAI,
		baseURL:   "https://api.openai.com/v1",
		keyEnv:    []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY"},
		modelEnv:  []string{"OPENAI_MODEL"},
		headerEnv: []string{"OPENAI_API_KEY_HEADER", "OPENROUTER_API_KEY_HEADER"},
		prefixEnv: []string{"OPENAI_API_KEY_PREFIX", "OPENROUTER_API_KEY_PREFIX"},
	},
	providerOpenRouter: {
		kind:      providerOpenRouter,
		baseURL:   "https://openrouter.ai/api/v1",
		keyEnv:    []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY"},
		modelEnv:  []string{"OPENROUTER_MODEL", "OPENAI_MODEL"},
		headerEnv: []string{"OPENROUTER_API_KEY_HEADER", "OPENAI_API_KEY_HEADER"},
		prefixEnv: []string{"OPENROUTER_API_KEY_PREFIX", "OPENAI_API_KEY_PREFIX"},
	},
}

var baseURLEnv = []string{"OPENAI_API_BASE", "OPENAI_BASE_URL", "OPENROUTER_API_BASE", "OPENROUTER_BASE_URL"}

type apiConfig struct {
	Kind         providerKind
	APIKey       string
	Model        string
	BaseURL      string
	HeaderName   string
	HeaderPrefix string
	Organization string
	ExtraHeaders map[string]string
}

// firstEnv returns the first non-blank variable among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// pickProvider resolves LLM_PROVIDER, then the model name, then the base URL,
// then which keys and models are set.
func pickProvider(model, base string) providerKind {
	switch strings.ToLower(firstEnv("LLM_PROVIDER")) {
	case "openrouter":
		return providerOpenRouter
	case "openai":
		return providerOpenAI
	}
	if strings.Contains(strings.ToLower(model), "openrouter/") ||
		strings.Contains(strings.ToLower(base), "openrouter") ||
		preferOpenRouterEnv() {
		return providerOpenRouter
	}
	return providerOpenAI
}

func resolveAPIConfig(model string) (apiConfig, error) {
	model = strings.TrimSpace(model)
	base := strings.TrimRight(firstEnv(baseURLEnv...), "/")
	p := providers[pickProvider(model, base)]

	if model == "" {
		model = firstEnv(p.modelEnv...)
	}
	if model == "" {
		return apiConfig{}, errors.New("model missing: set OPENAI_MODEL/OPENROUTER_MODEL or pass llm:<model>")
	}
	if base == "" {
		base = p.baseURL
	}
	key := firstEnv(p.keyEnv...)
	if key == "" {
		return apiConfig{}, errors.New("API key missing: set OPENAI_API_KEY or OPENROUTER_API_KEY")
	}

	cfg := apiConfig{
		Kind:         p.kind,
		APIKey:       key,
		Model:        model,
		BaseURL:      base,
		HeaderName:   coalesce(firstEnv(p.headerEnv...), "Authorization"),
		Organization: firstEnv("OPENAI_ORG"),
		ExtraHeaders: map[string]string{},
	}
	// The prefix keeps its trailing space, so it is not trimmed.
	for _, k := range p.prefixEnv {
		if v := os.Getenv(k); v != "" {
			cfg.HeaderPrefix = v
			break
		}
	}
	if cfg.HeaderName == "Authorization" && strings.TrimSpace(cfg.HeaderPrefix) == "" {
		cfg.HeaderPrefix = "Bearer "
	}
	if p.kind == providerOpenRouter {
		if site := firstEnv("OPENROUTER_SITE_URL"); site != "" {
			cfg.ExtraHeaders["HTTP-Referer"] = site
			cfg.ExtraHeaders["Referer"] = site
		}
		cfg.ExtraHeaders["X-Title"] = coalesce(firstEnv("OPENROUTER_TITLE"), defaultTitle)
	}
	return cfg, nil
}
