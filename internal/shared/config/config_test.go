package config

import "testing"

func TestLoadLeavesProviderEmptyWhenUnset(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("ENV", "dev")

	cfg := Load()
	if cfg.LLMProvider != "" {
		t.Fatalf("LLMProvider = %q, want empty", cfg.LLMProvider)
	}
}

func TestNormalizeProvider(t *testing.T) {
	cases := []struct{ in, want string }{
		{"openai", "openai"},
		{" OpenAI ", "openai"},
		{"GEMINI", "gemini"},
		{"anthropic", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeProvider(tc.in); got != tc.want {
			t.Errorf("normalizeProvider(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEnv(t *testing.T) {
	cases := []struct{ in, want string }{
		{"prod", "production"},
		{"PRODUCTION", "production"},
		{"staging", "staging"},
		{"local", "local"},
		{"anything-else", "dev"},
		{"", "dev"},
	}
	for _, tc := range cases {
		if got := normalizeEnv(tc.in); got != tc.want {
			t.Errorf("normalizeEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
