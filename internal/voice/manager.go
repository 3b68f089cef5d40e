package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zhibo/internal/character"
	"zhibo/internal/config"
	"zhibo/internal/tts"
	"zhibo/internal/tts/cosy-voice"
	"zhibo/internal/tts/doubao"
	"zhibo/internal/tts/edge"
	"zhibo/pkg/log"
)

// Manager 按配置声明的顺序调度多个合成引擎
// 首个成功的引擎胜出，全部失败才报错
type Manager struct {
	providers []tts.Provider
	engineCfg map[string]config.TtsConfig
	audio     config.AudioConfig

	mu          sync.Mutex
	failures    map[string]int
	synthCount  int64
	lastLatency time.Duration

	log *log.Logger
}

func NewManager(cfg *config.Config, logger *log.Logger) (*Manager, error) {
	providers := make([]tts.Provider, 0, len(cfg.EngineOrder))
	for _, name := range cfg.EngineOrder {
		p, err := newProvider(name, logger)
		if err != nil {
			// 配置写错一个引擎名不应拖垮整个服务，跳过继续
			logger.Warnf("跳过不可用的语音引擎 %s: %v", name, err)
			continue
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("engine_order 中没有可用的语音引擎: %v", cfg.EngineOrder)
	}
	return &Manager{
		providers: providers,
		engineCfg: cfg.Tts,
		audio:     cfg.Audio,
		failures:  make(map[string]int),
		log:       logger,
	}, nil
}

// NewManagerFromProviders 直接注入引擎实例，顺序即调度顺序
func NewManagerFromProviders(providers []tts.Provider, logger *log.Logger) *Manager {
	return &Manager{
		providers: providers,
		failures:  make(map[string]int),
		log:       logger,
	}
}

func newProvider(name string, logger *log.Logger) (tts.Provider, error) {
	switch name {
	case "edge":
		return edge.NewEdge(logger), nil
	case "doubao":
		return doubao.NewDoubao(logger), nil
	case "cosy_voice":
		return cosy_voice.NewCosyVoice(logger), nil
	default:
		return nil, fmt.Errorf("不支持的语音引擎: %s", name)
	}
}

// Engines 返回调度顺序中的引擎名
func (m *Manager) Engines() []string {
	names := make([]string, 0, len(m.providers))
	for _, p := range m.providers {
		names = append(names, p.Name())
	}
	return names
}

// Synthesize 依次尝试各引擎，返回音频和成功的引擎名
func (m *Manager) Synthesize(ctx context.Context, text string, params character.VoiceParams, lang string) ([]byte, string, error) {
	if text == "" {
		return nil, "", nil
	}

	start := time.Now()
	var lastErr error
	for _, p := range m.providers {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		p.SetConfig(m.buildConfig(p.Name(), params, lang))
		audio, err := p.Synthesize(ctx, text)
		if err != nil {
			m.recordFailure(p.Name())
			m.log.Warnf("引擎 %s 合成失败: %v", p.Name(), err)
			lastErr = err
			continue
		}

		m.recordSuccess(time.Since(start))
		m.log.Debugf("引擎 %s 合成成功, 耗时 %v, 音频 %d 字节", p.Name(), time.Since(start), len(audio))
		return audio, p.Name(), nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("没有可用的语音引擎")
	}
	return nil, "", fmt.Errorf("所有语音引擎合成失败: %w", lastErr)
}

func (m *Manager) buildConfig(engine string, params character.VoiceParams, lang string) *tts.Config {
	ec := m.engineCfg[engine]
	return &tts.Config{
		ApiKey:     ec.ApiKey,
		AppID:      ec.AppID,
		Token:      ec.Token,
		Cluster:    ec.Cluster,
		Speed:      params.Speed,
		Pitch:      params.Pitch,
		Volume:     50,
		SampleRate: m.audio.SampleRate,
		Language:   lang,
	}
}

func (m *Manager) recordFailure(engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[engine]++
}

func (m *Manager) recordSuccess(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synthCount++
	m.lastLatency = latency
}

// Failures 各引擎的累计失败次数
func (m *Manager) Failures() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.failures))
	for k, v := range m.failures {
		out[k] = v
	}
	return out
}

// SynthCount 成功合成的总次数
func (m *Manager) SynthCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synthCount
}

// LastLatency 最近一次成功合成的耗时
func (m *Manager) LastLatency() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLatency
}

// Reset 重置所有引擎的内部状态
func (m *Manager) Reset() {
	for _, p := range m.providers {
		if err := p.Reset(); err != nil {
			m.log.Warnf("引擎 %s 重置失败: %v", p.Name(), err)
		}
	}
}
