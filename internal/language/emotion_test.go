package language_test

import (
	"testing"

	"zhibo/internal/language"
)

func TestDetectEmotion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected language.Emotion
	}{
		{"empty is neutral", "", language.EmotionNeutral},
		{"no keywords is neutral", "今天天气", language.EmotionNeutral},
		{"chinese happy", "今天好开心哈哈", language.EmotionHappy},
		{"chinese sad", "好难过，想哭", language.EmotionSad},
		{"chinese sleepy", "好困了想睡觉", language.EmotionSleepy},
		{"english excited", "this is awesome and fantastic", language.EmotionExcited},
		{"double bang boosts excited", "we did it!!", language.EmotionExcited},
		{"double question boosts surprised", "真的吗??", language.EmotionSurprised},
		{"trailing ellipsis leans calm", "放松一下...", language.EmotionCalm},
		{"emotion marker counts", "看 *happy* 了吗", language.EmotionHappy},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, _ := language.DetectEmotion(tc.input)
			if got != tc.expected {
				t.Errorf("DetectEmotion(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDetectEmotion_AllMatches(t *testing.T) {
	t.Parallel()

	_, all := language.DetectEmotion("又开心又激动，爱你们！")
	if len(all) < 2 {
		t.Fatalf("expected multiple emotions, got %v", all)
	}

	seen := map[language.Emotion]bool{}
	for _, e := range all {
		if seen[e] {
			t.Errorf("duplicate emotion %q in %v", e, all)
		}
		seen[e] = true
	}
	if !seen[language.EmotionHappy] || !seen[language.EmotionExcited] {
		t.Errorf("expected happy and excited in %v", all)
	}
}
