package model

// ClientTextMessage 客户端发送的文本消息结构
// Type 字段用于区分不同的消息类型
// Type 为 hello 时，用于初始化连接，可携带初始人设和合成参数
// Type 为 chat 时，用于发送弹幕文本，需要带上 ChatText 字段
// Type 为 command 时，用于切换人设/ASMR模式或查询统计
// Type 为 abort 时，用于终止当前的对话，不需要其他字段
type ClientTextMessage struct {
	Type      string `json:"type"`
	ChatText  string `json:"chat_text,omitempty"`
	UserName  string `json:"user_name,omitempty"` // 观众昵称，回复时使用
	Scene     string `json:"scene,omitempty"`     // 场景提示，如 greeting、thanks
	EnableTts bool   `json:"enable_tts,omitempty"`

	Command    string `json:"command,omitempty"`     // personality、asmr、asmr_off、stats
	CommandArg string `json:"command_arg,omitempty"` // 命令参数，如人设ID

	Personality string `json:"personality,omitempty"` // 初始人设
	AsmrMode    string `json:"asmr_mode,omitempty"`   // 初始ASMR模式，空表示不开启

	TtsParams struct {
		Speaker    string  `json:"speaker,omitempty"`    // 发音人
		Format     string  `json:"format,omitempty"`     // 音频格式，如 "mp3"
		Speed      float32 `json:"speed,omitzero"`       // 语速，默认为1.0
		Volume     int     `json:"volume,omitzero"`      // 音量，默认为50
		Pitch      float32 `json:"pitch,omitzero"`       // 语调，默认为1.0
		SampleRate int     `json:"sample_rate,omitzero"` // 采样率，默认为16000
		Language   string  `json:"language,omitempty"`   // 语言，如 "zh"
	} `json:"tts_params,omitzero"`
}
