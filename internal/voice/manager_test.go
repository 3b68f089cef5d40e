package voice_test

import (
	"context"
	"errors"
	"testing"

	"zhibo/internal/character"
	"zhibo/internal/config"
	"zhibo/internal/tts"
	"zhibo/internal/voice"
	"zhibo/pkg/log"
)

type fakeProvider struct {
	name   string
	fail   bool
	calls  int
	config *tts.Config
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) SetConfig(cfg *tts.Config) *tts.Config {
	f.config = cfg
	return cfg
}

func (f *fakeProvider) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("synthesis failed")
	}
	return []byte(f.name + ":" + text), nil
}

func (f *fakeProvider) Reset() error { return nil }

func testLogger() *log.Logger {
	return log.NewLogger(&log.Option{Mode: "test", ServiceName: "voice-test"})
}

// 配置里混进未知引擎名只跳过该引擎，不影响其余引擎的构建
func TestNewManager_SkipsUnknownEngine(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.EngineOrder = []string{"edge", "no_such_engine"}

	m, err := voice.NewManager(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	engines := m.Engines()
	if len(engines) != 1 || engines[0] != "edge" {
		t.Errorf("engines = %v, want [edge]", engines)
	}
}

func TestNewManager_NoUsableEngine(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.EngineOrder = []string{"no_such_engine", "another_bad_one"}

	if _, err := voice.NewManager(cfg, testLogger()); err == nil {
		t.Fatal("expected error when no engine can be built")
	}
}

func TestManager_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first"}
	second := &fakeProvider{name: "second"}
	m := voice.NewManagerFromProviders([]tts.Provider{first, second}, testLogger())

	audio, engine, err := m.Synthesize(context.Background(), "你好", character.VoiceParams{Pitch: 1, Speed: 1}, "zh")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if engine != "first" {
		t.Errorf("engine = %q, want first", engine)
	}
	if string(audio) != "first:你好" {
		t.Errorf("audio = %q", audio)
	}
	if second.calls != 0 {
		t.Errorf("second engine called %d times, want 0", second.calls)
	}
}

func TestManager_FallbackOnFailure(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first", fail: true}
	second := &fakeProvider{name: "second"}
	third := &fakeProvider{name: "third"}
	m := voice.NewManagerFromProviders([]tts.Provider{first, second, third}, testLogger())

	audio, engine, err := m.Synthesize(context.Background(), "hello", character.VoiceParams{Pitch: 1, Speed: 1}, "en")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if engine != "second" {
		t.Errorf("engine = %q, want second", engine)
	}
	if string(audio) != "second:hello" {
		t.Errorf("audio = %q", audio)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Errorf("calls = %d/%d/%d, want 1/1/0", first.calls, second.calls, third.calls)
	}
	if got := m.Failures()["first"]; got != 1 {
		t.Errorf("failures[first] = %d, want 1", got)
	}
}

func TestManager_AllEnginesFail(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first", fail: true}
	second := &fakeProvider{name: "second", fail: true}
	m := voice.NewManagerFromProviders([]tts.Provider{first, second}, testLogger())

	_, _, err := m.Synthesize(context.Background(), "你好", character.VoiceParams{Pitch: 1, Speed: 1}, "zh")
	if err == nil {
		t.Fatal("expected error when all engines fail")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
}

func TestManager_EmptyTextSkipsEngines(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first"}
	m := voice.NewManagerFromProviders([]tts.Provider{first}, testLogger())

	audio, engine, err := m.Synthesize(context.Background(), "", character.VoiceParams{}, "zh")
	if err != nil || audio != nil || engine != "" {
		t.Errorf("empty text: audio=%v engine=%q err=%v", audio, engine, err)
	}
	if first.calls != 0 {
		t.Errorf("engine called for empty text")
	}
}

func TestManager_ParamsReachEngine(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first"}
	m := voice.NewManagerFromProviders([]tts.Provider{first}, testLogger())

	params := character.VoiceParams{Pitch: 1.3, Speed: 1.1}
	if _, _, err := m.Synthesize(context.Background(), "哇", params, "zh"); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if first.config == nil {
		t.Fatal("engine config not set")
	}
	if first.config.Pitch != 1.3 || first.config.Speed != 1.1 || first.config.Language != "zh" {
		t.Errorf("config = %+v", first.config)
	}
}

func TestManager_CanceledContext(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first"}
	m := voice.NewManagerFromProviders([]tts.Provider{first}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := m.Synthesize(ctx, "你好", character.VoiceParams{Pitch: 1, Speed: 1}, "zh"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if first.calls != 0 {
		t.Errorf("engine called after cancel")
	}
}
