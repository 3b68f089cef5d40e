package language_test

import (
	"testing"

	"zhibo/internal/language"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"pure chinese", "你好世界", language.LangChinese},
		{"pure english", "hello world", language.LangEnglish},
		{"empty defaults to chinese", "", language.LangChinese},
		{"symbols only defaults to chinese", "!!!???", language.LangChinese},
		{"mostly english", "hello 世界", language.LangEnglish},
		{"mostly chinese", "我们一起去play", language.LangChinese},
		{"emotion marker ignored", "开心 *happy*", language.LangChinese},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := language.Detect(tc.input); got != tc.expected {
				t.Errorf("Detect(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
