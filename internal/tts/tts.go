package tts

import "context"

// Config 需要请求tts的相关配置
type Config struct {
	ApiKey  string
	AppID   string
	Token   string
	Cluster string
	// 可选参数
	Speaker    string  // 发音人
	Speed      float32 // 语速倍率
	Volume     int     // 音量
	Pitch      float32 // 语调倍率
	Format     string  // 合成音频的格式
	SampleRate int     // 合成音频的采样率
	Language   string  // 合成的语言
}

type Provider interface {
	// Name 引擎名，用于调度与日志
	Name() string
	// SetConfig 设置 Provider 的配置
	// @param cfg: 客户端需求的配置
	// @return *Config: 实际请求的配置（越界参数会被修正）
	SetConfig(cfg *Config) *Config
	// Synthesize 将文本交给 Provider 合成语音，返回完整音频数据
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// Reset 重置 Provider
	Reset() error
}
