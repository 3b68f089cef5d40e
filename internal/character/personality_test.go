package character_test

import (
	"math/rand"
	"strings"
	"testing"

	"zhibo/internal/character"
	"zhibo/internal/language"
	"zhibo/pkg/log"
)

func testLogger() *log.Logger {
	return log.NewLogger(&log.Option{Mode: "test", ServiceName: "character-test"})
}

func TestPersonalityManager_MultipliersInRange(t *testing.T) {
	t.Parallel()

	m := character.NewPersonalityManager(testLogger())
	for _, id := range m.List() {
		if err := m.Select(id); err != nil {
			t.Fatalf("Select(%q) failed: %v", id, err)
		}
		p := m.Current()
		if p.PitchMultiplier <= 0 || p.PitchMultiplier > 3 {
			t.Errorf("personality %q pitch %v out of range (0, 3]", id, p.PitchMultiplier)
		}
		if p.SpeedMultiplier <= 0 || p.SpeedMultiplier > 3 {
			t.Errorf("personality %q speed %v out of range (0, 3]", id, p.SpeedMultiplier)
		}
	}
}

func TestPersonalityManager_BuiltinProfiles(t *testing.T) {
	t.Parallel()

	m := character.NewPersonalityManager(testLogger())
	want := []string{"cute_girl", "asmr_girl", "energetic_girl", "shy_girl"}
	ids := map[string]bool{}
	for _, id := range m.List() {
		ids[id] = true
	}
	for _, id := range want {
		if !ids[id] {
			t.Errorf("builtin personality %q missing", id)
		}
	}
}

func TestPersonalityManager_SelectUnknownFallsBack(t *testing.T) {
	t.Parallel()

	m := character.NewPersonalityManager(testLogger())
	if err := m.Select("energetic_girl"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	err := m.Select("no_such_personality")
	if err == nil {
		t.Fatal("expected error for unknown personality")
	}
	if got := m.Current().ID; got != character.DefaultPersonality {
		t.Errorf("current = %q after unknown select, want %q", got, character.DefaultPersonality)
	}
}

func TestPersonalityManager_VoiceParams(t *testing.T) {
	t.Parallel()

	m := character.NewPersonalityManager(testLogger())
	if err := m.Select("cute_girl"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// excited: pitch 1.3*1.3, speed 1.1*1.2
	params := m.VoiceParams(language.EmotionExcited)
	if params.Emotion != language.EmotionExcited {
		t.Errorf("emotion = %q, want excited", params.Emotion)
	}
	if params.Pitch < 1.68 || params.Pitch > 1.70 {
		t.Errorf("pitch = %v, want ~1.69", params.Pitch)
	}
	if params.Speed < 1.31 || params.Speed > 1.33 {
		t.Errorf("speed = %v, want ~1.32", params.Speed)
	}

	// 中性情绪回落到人设自身倾向(happy)
	params = m.VoiceParams(language.EmotionNeutral)
	if params.Emotion != language.EmotionHappy {
		t.Errorf("neutral emotion should fall back to tendency, got %q", params.Emotion)
	}
}

func TestPersonalityManager_VoiceParamsClamped(t *testing.T) {
	t.Parallel()

	m := character.NewPersonalityManager(testLogger())
	// 倍率本身合法，但乘上激动情绪的修正后会冲出上限
	err := m.Register(&character.Profile{
		ID:              "megaphone",
		PitchMultiplier: 2.5,
		SpeedMultiplier: 2.8,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err = m.Select("megaphone"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	params := m.VoiceParams(language.EmotionExcited)
	if params.Pitch != 3 {
		t.Errorf("pitch = %v, want clamped to 3", params.Pitch)
	}
	if params.Speed != 3 {
		t.Errorf("speed = %v, want clamped to 3", params.Speed)
	}
}

func TestPersonalityManager_RegisterValidation(t *testing.T) {
	t.Parallel()

	m := character.NewPersonalityManager(testLogger())
	tests := []struct {
		name    string
		profile *character.Profile
		wantErr bool
	}{
		{"valid", &character.Profile{ID: "mature_sister", PitchMultiplier: 0.95, SpeedMultiplier: 0.9}, false},
		{"zero pitch", &character.Profile{ID: "bad1", PitchMultiplier: 0, SpeedMultiplier: 1}, true},
		{"pitch too high", &character.Profile{ID: "bad2", PitchMultiplier: 3.1, SpeedMultiplier: 1}, true},
		{"negative speed", &character.Profile{ID: "bad3", PitchMultiplier: 1, SpeedMultiplier: -0.5}, true},
		{"empty id", &character.Profile{PitchMultiplier: 1, SpeedMultiplier: 1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := m.Register(tc.profile)
			if (err != nil) != tc.wantErr {
				t.Errorf("Register(%q) error = %v, wantErr %v", tc.profile.ID, err, tc.wantErr)
			}
		})
	}
}

func TestComposer_GreetingPattern(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	rnd := rand.New(rand.NewSource(42))
	pm := character.NewPersonalityManager(logger)
	am := character.NewAsmrManager(rnd, logger)
	c := character.NewComposer(pm, am, rnd, logger)

	u, params := c.Compose("大家好", "greeting")
	patterns := pm.ResponsePattern("greeting")
	matched := false
	for _, p := range patterns {
		if strings.HasPrefix(u.Text, p) {
			matched = true
			break
		}
	}
	if !matched {
		t.Errorf("composed text %q does not start with any greeting pattern", u.Text)
	}
	if params.Pitch <= 0 || params.Speed <= 0 {
		t.Errorf("invalid params: %+v", params)
	}
}

// 语言以原文判定为准，命中英文台词或追加英文口头禅都不应改变结果
func TestComposer_LanguageFromRawText(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	input := "大家好呀"
	for seed := int64(0); seed < 50; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		pm := character.NewPersonalityManager(logger)
		am := character.NewAsmrManager(rnd, logger)
		c := character.NewComposer(pm, am, rnd, logger)

		u, _ := c.Compose(input, "greeting")
		if u.Language != language.LangChinese {
			t.Fatalf("seed %d: language = %q for Chinese input (text %q), want zh", seed, u.Language, u.Text)
		}
		if u.RawText != input {
			t.Fatalf("seed %d: raw text = %q, want %q", seed, u.RawText, input)
		}
		if u.Text == "" {
			t.Fatalf("seed %d: composed text is empty", seed)
		}
	}
}

// 中文预处理会把省略号改写成逗号，情绪必须在改写前判定
func TestComposer_EmotionBeforeRewrite(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	rnd := rand.New(rand.NewSource(3))
	pm := character.NewPersonalityManager(logger)
	am := character.NewAsmrManager(rnd, logger)
	c := character.NewComposer(pm, am, rnd, logger)

	u, _ := c.Compose("就这样吧...", "")
	if u.Emotion != language.EmotionCalm {
		t.Errorf("emotion = %q for trailing ellipsis, want calm", u.Emotion)
	}

	// 原文无情绪特征时回落到处理后文本，表情转出的标记在那里
	u, _ = c.Compose("😴", "")
	if u.Emotion != language.EmotionSleepy {
		t.Errorf("emotion = %q for sleepy emoji, want sleepy", u.Emotion)
	}
}

func TestComposer_AsmrOverridesParams(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	rnd := rand.New(rand.NewSource(7))
	pm := character.NewPersonalityManager(logger)
	am := character.NewAsmrManager(rnd, logger)
	c := character.NewComposer(pm, am, rnd, logger)

	if err := am.Select("gentle_whisper"); err != nil {
		t.Fatalf("Select asmr failed: %v", err)
	}

	_, params := c.Compose("晚安", "")
	if params.Pitch != 0.7 || params.Speed != 0.5 {
		t.Errorf("asmr params = %+v, want pitch 0.7 speed 0.5", params)
	}
}
