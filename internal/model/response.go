package model

import "zhibo/internal/streaming"

type BaseResponse struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	ErrorCode int    `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// HelloResponse 连接初始化应答，返回协商后的人设与合成参数
type HelloResponse struct {
	BaseResponse
	Personality string `json:"personality"`
	AsmrMode    string `json:"asmr_mode,omitempty"`
	TtsParams   struct {
		Speed      float32 `json:"speed,omitzero"`
		Volume     int     `json:"volume,omitzero"`
		Pitch      float32 `json:"pitch,omitzero"`
		SampleRate int     `json:"sample_rate,omitzero"`
		Format     string  `json:"format,omitempty"`
		Language   string  `json:"language,omitempty"`
	} `json:"tts_params,omitzero"`
}

// ChatResponse 主播的文本回复
type ChatResponse struct {
	BaseResponse
	Text    string `json:"text"`
	Emotion string `json:"emotion,omitempty"`
}

// TtsResponse 合成出的音频，base64编码
type TtsResponse struct {
	BaseResponse
	Audio  string `json:"audio"`
	Engine string `json:"engine,omitempty"` // 实际合成的引擎名
}

// CommandResponse 命令执行结果
type CommandResponse struct {
	BaseResponse
	Command string `json:"command"`
	Result  string `json:"result,omitempty"`
}

// StatsResponse 运行统计
type StatsResponse struct {
	BaseResponse
	Stats streaming.Stats `json:"stats"`
}
