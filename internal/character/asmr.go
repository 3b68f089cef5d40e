package character

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"zhibo/pkg/log"
)

// ASMR 触发音类型
type TriggerType string

const (
	TriggerWhispering        TriggerType = "whispering"
	TriggerTapping           TriggerType = "tapping"
	TriggerBrushing          TriggerType = "brushing"
	TriggerRainSounds        TriggerType = "rain_sounds"
	TriggerBreathing         TriggerType = "breathing"
	TriggerMouthSounds       TriggerType = "mouth_sounds"
	TriggerRoleplay          TriggerType = "roleplay"
	TriggerPersonalAttention TriggerType = "personal_attention"
)

// 触发音对应的拟声标记，合成时混入文本
var triggerSounds = map[TriggerType][]string{
	TriggerWhispering: {
		"*轻声耳语*", "*温柔低语*", "*贴耳细语*",
		"*gentle whisper*", "*soft murmur*", "*quiet voice*",
	},
	TriggerTapping: {
		"*轻敲桌面*", "*指尖敲击*", "*节奏敲打*",
		"*gentle tapping*", "*finger taps*", "*rhythmic tapping*",
	},
	TriggerBrushing: {
		"*轻柔刷拭*", "*毛刷声音*", "*温柔抚摸*",
		"*gentle brushing*", "*soft brush sounds*", "*tender stroking*",
	},
	TriggerRainSounds: {
		"*雨滴声*", "*细雨绵绵*", "*雨水敲窗*",
		"*rain drops*", "*gentle rain*", "*rain on window*",
	},
	TriggerBreathing: {
		"*轻柔呼吸*", "*深呼吸*", "*平静呼吸*",
		"*gentle breathing*", "*deep breath*", "*calm breathing*",
	},
	TriggerMouthSounds: {
		"*轻吻声*", "*唇音*", "*口腔音*",
		"*kiss sounds*", "*lip sounds*", "*mouth sounds*",
	},
}

// AsmrMode ASMR模式配置，注册后不可变
type AsmrMode struct {
	ID               string
	DisplayName      string
	Description      string
	Mood             string
	PitchMultiplier  float32
	SpeedMultiplier  float32
	WhisperIntensity float32
	BreathingSounds  bool
	BackgroundSound  string
	TriggerTypes     []TriggerType
	ScriptTemplates  []string
}

const DefaultAsmrMode = "gentle_whisper"

var defaultAsmrModes = []*AsmrMode{
	{
		ID:               "gentle_whisper",
		DisplayName:      "温柔耳语",
		Description:      "轻柔的耳语声，让人放松入睡",
		Mood:             "sleepy",
		PitchMultiplier:  0.7,
		SpeedMultiplier:  0.5,
		WhisperIntensity: 0.8,
		BreathingSounds:  true,
		TriggerTypes:     []TriggerType{TriggerWhispering, TriggerBreathing},
		ScriptTemplates: []string{
			"轻轻地... 闭上眼睛... 听我的声音...",
			"慢慢地... 深呼吸... 放松你的身体...",
			"Gently... close your eyes... listen to my voice...",
			"Slowly... breathe deeply... relax your body...",
		},
	},
	{
		ID:               "personal_attention",
		DisplayName:      "个人关怀",
		Description:      "贴心的个人关怀，像姐姐一样照顾你",
		Mood:             "caring",
		PitchMultiplier:  0.9,
		SpeedMultiplier:  0.7,
		WhisperIntensity: 0.6,
		TriggerTypes:     []TriggerType{TriggerPersonalAttention, TriggerWhispering},
		ScriptTemplates: []string{
			"你今天辛苦了... 让我来照顾你...",
			"来... 躺下休息一会儿... 我在这里陪着你...",
			"You've worked hard today... let me take care of you...",
			"Come... lie down and rest... I'm here with you...",
		},
	},
	{
		ID:               "rain_nature",
		DisplayName:      "雨声自然",
		Description:      "配合雨声和自然音效的放松模式",
		Mood:             "peaceful",
		PitchMultiplier:  0.8,
		SpeedMultiplier:  0.6,
		WhisperIntensity: 0.5,
		BreathingSounds:  true,
		BackgroundSound:  "rain",
		TriggerTypes:     []TriggerType{TriggerRainSounds, TriggerWhispering},
		ScriptTemplates: []string{
			"听... 外面下雨了... 很舒服对吧...",
			"雨滴轻轻敲打着窗户... 就像大自然的摇篮曲...",
			"Listen... it's raining outside... so peaceful...",
			"Raindrops gently tapping the window... like nature's lullaby...",
		},
	},
	{
		ID:               "tapping_sounds",
		DisplayName:      "敲击音效",
		Description:      "各种敲击和触摸音效，刺激听觉",
		Mood:             "relaxing",
		PitchMultiplier:  0.9,
		SpeedMultiplier:  0.8,
		WhisperIntensity: 0.4,
		TriggerTypes:     []TriggerType{TriggerTapping, TriggerBrushing},
		ScriptTemplates: []string{
			"听听这个声音... *轻敲* 很舒服吧...",
			"我用手指轻轻敲击... *tap tap* 放松一下...",
			"Listen to this sound... *gentle tapping* so soothing...",
			"I'm gently tapping with my fingers... *tap tap* just relax...",
		},
	},
	{
		ID:               "roleplay",
		DisplayName:      "角色扮演",
		Description:      "各种角色扮演场景，增加沉浸感",
		Mood:             "intimate",
		PitchMultiplier:  0.85,
		SpeedMultiplier:  0.75,
		WhisperIntensity: 0.7,
		BreathingSounds:  true,
		TriggerTypes:     []TriggerType{TriggerRoleplay, TriggerPersonalAttention},
		ScriptTemplates: []string{
			"欢迎来到我的小屋... 今天想要什么服务呢...",
			"让我来帮你按摩一下... 放松肩膀...",
			"Welcome to my little space... what would you like today...",
			"Let me give you a massage... relax your shoulders...",
		},
	},
}

// AsmrManager ASMR模式注册表，未开启时current为nil
type AsmrManager struct {
	mu      sync.RWMutex
	modes   map[string]*AsmrMode
	current *AsmrMode
	rnd     *rand.Rand
	log     *log.Logger
}

func NewAsmrManager(rnd *rand.Rand, log *log.Logger) *AsmrManager {
	m := &AsmrManager{
		modes: make(map[string]*AsmrMode, len(defaultAsmrModes)),
		rnd:   rnd,
		log:   log,
	}
	for _, mode := range defaultAsmrModes {
		m.modes[mode.ID] = mode
	}
	return m
}

func validateAsmrMode(mode *AsmrMode) error {
	if mode.ID == "" {
		return fmt.Errorf("ASMR模式ID不能为空")
	}
	if mode.PitchMultiplier <= 0 || mode.PitchMultiplier > 3 {
		return fmt.Errorf("ASMR模式 %s 音调倍率超出范围(0, 3]: %v", mode.ID, mode.PitchMultiplier)
	}
	if mode.SpeedMultiplier <= 0 || mode.SpeedMultiplier > 3 {
		return fmt.Errorf("ASMR模式 %s 语速倍率超出范围(0, 3]: %v", mode.ID, mode.SpeedMultiplier)
	}
	return nil
}

// Register 注册自定义ASMR模式
func (m *AsmrManager) Register(mode *AsmrMode) error {
	if err := validateAsmrMode(mode); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[mode.ID] = mode
	m.log.Infof("已注册自定义ASMR模式: %s", mode.ID)
	return nil
}

// Select 切换ASMR模式，未知ID回退到默认模式并返回错误
func (m *AsmrManager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode, ok := m.modes[id]; ok {
		m.current = mode
		m.log.Infof("已切换ASMR模式: %s(%s)", mode.ID, mode.DisplayName)
		return nil
	}
	m.current = m.modes[DefaultAsmrMode]
	return fmt.Errorf("未知ASMR模式 %s，已回退到 %s", id, DefaultAsmrMode)
}

// Disable 退出ASMR模式
func (m *AsmrManager) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

func (m *AsmrManager) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

func (m *AsmrManager) Current() *AsmrMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *AsmrManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.modes))
	for id := range m.modes {
		ids = append(ids, id)
	}
	return ids
}

// VoiceParams 当前ASMR模式的合成参数，未开启时返回默认的低缓参数
func (m *AsmrManager) VoiceParams() VoiceParams {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return VoiceParams{Pitch: 0.8, Speed: 0.6, Emotion: "calm"}
	}
	return VoiceParams{
		Pitch:   m.current.PitchMultiplier,
		Speed:   m.current.SpeedMultiplier,
		Emotion: "calm",
	}
}

// GenerateText 生成带触发音标记的ASMR文本
// baseText为空时从模式的脚本模板中随机取一条；耳语类触发音会把句号改写成停顿
func (m *AsmrManager) GenerateText(baseText string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return baseText
	}

	trigger := m.current.TriggerTypes[m.rnd.Intn(len(m.current.TriggerTypes))]
	sounds := triggerSounds[trigger]

	if baseText == "" {
		if len(m.current.ScriptTemplates) == 0 {
			return "轻轻地... 放松一下... Gently... just relax..."
		}
		text := m.current.ScriptTemplates[m.rnd.Intn(len(m.current.ScriptTemplates))]
		if len(sounds) > 0 && m.rnd.Float64() < 0.5 {
			text = text + " " + sounds[m.rnd.Intn(len(sounds))]
		}
		return text
	}

	text := baseText
	if len(sounds) > 0 && m.rnd.Float64() < 0.7 {
		text = text + " " + sounds[m.rnd.Intn(len(sounds))]
	}
	if trigger == TriggerWhispering {
		text = strings.ReplaceAll(text, "。", "... ")
		text = strings.ReplaceAll(text, ".", "... ")
		text = strings.TrimRight(text, " ")
	}
	return text
}
