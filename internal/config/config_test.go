package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, `
server:
  mode: test
  ip: 127.0.0.1
  port: "8989"
engine_order:
  - doubao
  - edge
tts:
  doubao:
    app_id: test-app
    token: test-token
character:
  default_personality: shy_girl
audio:
  sample_rate: 16000
cmd_exit:
  - 退出
`)

	if err := loadConfig(path); err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	cfgLock.RLock()
	cfg := config
	cfgLock.RUnlock()

	if cfg.Server.Port != "8989" {
		t.Errorf("port = %q, want 8989", cfg.Server.Port)
	}
	if len(cfg.EngineOrder) != 2 || cfg.EngineOrder[0] != "doubao" {
		t.Errorf("engine order = %v", cfg.EngineOrder)
	}
	if cfg.Tts["doubao"].AppID != "test-app" {
		t.Errorf("tts config = %+v", cfg.Tts["doubao"])
	}
	if cfg.Character.DefaultPersonality != "shy_girl" {
		t.Errorf("default personality = %q", cfg.Character.DefaultPersonality)
	}
	// 未配置项落默认值
	if cfg.Character.DefaultAsmrMode != "gentle_whisper" {
		t.Errorf("default asmr mode = %q", cfg.Character.DefaultAsmrMode)
	}
	if cfg.Audio.MaxLatencyMS != 200 {
		t.Errorf("max latency = %d, want default 200", cfg.Audio.MaxLatencyMS)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeTestConfig(t, `
audio:
  sample_rate: 16000
  use_gpu: false
`)

	t.Setenv("ZHIBO_SAMPLE_RATE", "44100")
	t.Setenv("ZHIBO_MAX_LATENCY_MS", "150")
	t.Setenv("ZHIBO_USE_GPU", "true")

	if err := loadConfig(path); err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	cfgLock.RLock()
	cfg := config
	cfgLock.RUnlock()

	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want env override 44100", cfg.Audio.SampleRate)
	}
	if cfg.Audio.MaxLatencyMS != 150 {
		t.Errorf("max latency = %d, want env override 150", cfg.Audio.MaxLatencyMS)
	}
	if !cfg.Audio.UseGPU {
		t.Error("use_gpu not overridden by env")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
