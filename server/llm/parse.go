package llm

import (
	"encoding/json"
	"strings"
)

// ParseKind pulls an action kind out of a model reply. It tries strict JSON,
// then a fenced or embedded object, then "action: x" lines, then keywords.
func ParseKind(text string, legal []string) (string, bool) {
	if m, ok := parseObject(text); ok {
		if v, ok := m["action"].(string); ok {
			if k, ok := matchKind(v, legal); ok {
				return k, true
			}
		}
	}
	if v, ok := parseYAMLish(text, "action"); ok {
		if k, ok := matchKind(v, legal); ok {
			return k, true
		}
	}
	return parseNLKind(text, legal)
}

// ParseDiscards pulls a card list from {"discard": [...]} or a "discard:" line.
func ParseDiscards(text string) ([]string, bool) {
	if m, ok := parseObject(text); ok {
		for _, key := range []string{"discard", "discards"} {
			raw, ok := m[key]
			if !ok {
				continue
			}
			switch t := raw.(type) {
			case []any:
				out := make([]string, 0, len(t))
				for _, x := range t {
					s, ok := x.(string)
					if !ok {
						return nil, false
					}
					out = append(out, strings.TrimSpace(s))
				}
				return out, true
			case string:
				return splitCards(t), true
			case nil:
				return nil, true
			}
		}
	}
	if v, ok := parseYAMLish(text, "discard"); ok {
		return splitCards(v), true
	}
	return nil, false
}

func parseObject(text string) (map[string]any, bool) {
	parsed := map[string]any{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &parsed); err == nil {
		return parsed, true
	}
	if cleaned := extractJSONObject(text); cleaned != "" {
		parsed = map[string]any{}
		if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
			return parsed, true
		}
	}
	return nil, false
}

func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

func parseYAMLish(s, key string) (string, bool) {
	for _, ln := range strings.Split(strings.TrimSpace(s), "\n") {
		t := strings.TrimPrefix(strings.TrimSpace(ln), "- ")
		i := strings.Index(t, ":")
		if i <= 0 {
			continue
		}
		if strings.ToLower(strings.TrimSpace(t[:i])) != key {
			continue
		}
		return strings.Trim(strings.TrimSpace(t[i+1:]), "\"'`[] "), true
	}
	return "", false
}

// matchKind maps loose wording ("bet", "raise", "call") onto the legal kind
// for this street. Bet and raise are interchangeable.
func matchKind(word string, legal []string) (string, bool) {
	w := strings.ToLower(strings.Trim(strings.TrimSpace(word), "\"'`."))
	if contains(legal, w) {
		return w, true
	}
	switch {
	case strings.HasPrefix(w, "bet"), strings.HasPrefix(w, "raise"):
		for _, prefix := range []string{"bet_", "raise_"} {
			if k, ok := withPrefix(legal, prefix); ok {
				return k, true
			}
		}
	case strings.HasPrefix(w, "call"):
		if k, ok := withPrefix(legal, "call_"); ok {
			return k, true
		}
		if contains(legal, "check") {
			return "check", true
		}
	case strings.HasPrefix(w, "check"):
		if contains(legal, "check") {
			return "check", true
		}
	case strings.HasPrefix(w, "fold"):
		if contains(legal, "fold") {
			return "fold", true
		}
	}
	return "", false
}

func parseNLKind(s string, legal []string) (string, bool) {
	ls := strings.ToLower(s)
	for _, word := range []string{"raise", "bet", "call", "check", "fold"} {
		if strings.Contains(ls, word) {
			if k, ok := matchKind(word, legal); ok {
				return k, true
			}
		}
	}
	return "", false
}

func withPrefix(ss []string, prefix string) (string, bool) {
	for _, s := range ss {
		if strings.HasPrefix(s, prefix) {
			return s, true
		}
	}
	return "", false
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func splitCards(s string) []string {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '[' || r == ']' || r == '"' })
	out := make([]string, 0, len(f))
	for _, x := range f {
		if x = strings.TrimSpace(x); x != "" && !strings.EqualFold(x, "none") {
			out = append(out, x)
		}
	}
	return out
}
