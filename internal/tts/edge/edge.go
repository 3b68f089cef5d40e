package edge

import (
	"context"
	"errors"
	"fmt"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"zhibo/internal/tts"
	"zhibo/pkg/log"
)

// 微软 Edge TTS，免费接口，无需鉴权，适合作为兜底引擎

// 发音人按语言选择，只用女声
var defaultVoices = map[string]string{
	"zh": "zh-CN-XiaoxiaoNeural",
	"en": "en-US-AvaMultilingualNeural",
	"ja": "ja-JP-NanamiNeural",
}

type Edge struct {
	cfg *tts.Config
	log *log.Logger
}

func NewEdge(log *log.Logger) *Edge {
	return &Edge{log: log}
}

func (e *Edge) Name() string {
	return "edge"
}

func (e *Edge) SetConfig(cfg *tts.Config) *tts.Config {
	if cfg.Speaker == "" {
		if v, ok := defaultVoices[cfg.Language]; ok {
			cfg.Speaker = v
		} else {
			cfg.Speaker = defaultVoices["zh"]
		}
	}
	if cfg.Speed < 0.5 || cfg.Speed > 2.0 {
		cfg.Speed = 1.0
	}
	if cfg.Volume < 0 || cfg.Volume > 100 {
		cfg.Volume = 50
	}
	if cfg.Pitch < 0.5 || cfg.Pitch > 2.0 {
		cfg.Pitch = 1.0
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	e.cfg = cfg
	return e.cfg
}

// 倍率参数转换为edge要求的相对量字符串，如 1.1 → "+10%"
func ratioToPercent(ratio float32) string {
	return fmt.Sprintf("%+d%%", int((ratio-1.0)*100))
}

// 音量0-100映射到相对量，50为基准
func volumeToPercent(volume int) string {
	return fmt.Sprintf("%+d%%", volume*2-100)
}

// 语调倍率映射到Hz偏移，edge以Hz表示音高变化
func pitchToHz(ratio float32) string {
	return fmt.Sprintf("%+dHz", int((ratio-1.0)*50))
}

func (e *Edge) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	if e.cfg == nil {
		return nil, errors.New("edge tts not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	connOptions := []edge_tts.CommunicateOption{
		edge_tts.SetVoice(e.cfg.Speaker),
		edge_tts.SetRate(ratioToPercent(e.cfg.Speed)),
		edge_tts.SetVolume(volumeToPercent(e.cfg.Volume)),
		edge_tts.SetPitch(pitchToHz(e.cfg.Pitch)),
		edge_tts.SetReceiveTimeout(20),
	}

	conn, err := edge_tts.NewCommunicate(text, connOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create edge tts communicate: %v", err)
	}

	audio, err := conn.Stream()
	if err != nil {
		return nil, fmt.Errorf("edge tts synthesis failed: %v", err)
	}
	return audio, nil
}

func (e *Edge) Reset() error {
	return nil
}
