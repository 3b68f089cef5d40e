package character

import (
	"fmt"
	"sync"

	"zhibo/internal/language"
	"zhibo/pkg/log"
)

// 情绪倾向，复用文本侧的情绪定义并补充人设专用的几种
const (
	EmotionShy     = language.Emotion("shy")
	EmotionPlayful = language.Emotion("playful")
	EmotionCaring  = language.Emotion("caring")
)

// VoiceModifier 情绪对音调和语速的修正倍率
type VoiceModifier struct {
	Pitch float32
	Speed float32
}

var emotionModifiers = map[language.Emotion]VoiceModifier{
	language.EmotionHappy:     {Pitch: 1.1, Speed: 1.05},
	language.EmotionExcited:   {Pitch: 1.3, Speed: 1.2},
	language.EmotionCalm:      {Pitch: 0.9, Speed: 0.8},
	EmotionShy:                {Pitch: 1.0, Speed: 0.9},
	EmotionPlayful:            {Pitch: 1.2, Speed: 1.1},
	language.EmotionSleepy:    {Pitch: 0.8, Speed: 0.7},
	language.EmotionSurprised: {Pitch: 1.4, Speed: 1.3},
	EmotionCaring:             {Pitch: 0.95, Speed: 0.85},
}

// Profile 人设配置，注册后不可变，按 ID 查找
type Profile struct {
	ID              string
	DisplayName     string
	Description     string
	PitchMultiplier float32
	SpeedMultiplier float32
	EmotionTendency language.Emotion
	SpeakingStyle   string
	Catchphrases    []string
	// 按场景分组的固定台词，场景如 greeting、thanks、goodnight
	ResponsePatterns map[string][]string
}

// VoiceParams 最终下发给合成引擎的参数
type VoiceParams struct {
	Pitch   float32
	Speed   float32
	Emotion language.Emotion
}

const DefaultPersonality = "cute_girl"

var defaultProfiles = []*Profile{
	{
		ID:              "cute_girl",
		DisplayName:     "可爱小萌妹",
		Description:     "甜美可爱的小女孩，声音清脆，喜欢用可爱的语气说话",
		PitchMultiplier: 1.3,
		SpeedMultiplier: 1.1,
		EmotionTendency: language.EmotionHappy,
		SpeakingStyle:   "cute",
		Catchphrases: []string{
			"哇~", "好棒哦~", "嘻嘻~", "么么哒~", "好开心呀~",
			"Wow~", "So cool~", "Hehe~", "Amazing~",
		},
		ResponsePatterns: map[string][]string{
			"greeting": {
				"大家好呀~ 我是你们的小萌妹~",
				"嗨嗨~ 今天大家都好吗？",
				"Hello everyone~ I'm your cute little host~",
			},
			"thanks": {
				"谢谢大家的支持~ 爱你们哦~",
				"么么哒~ 你们真的太好了~",
				"Thank you so much~ Love you all~",
			},
			"excitement": {
				"哇塞~ 太棒了！",
				"好激动呀~ 心跳加速了~",
				"OMG~ This is so exciting!",
			},
		},
	},
	{
		ID:              "asmr_girl",
		DisplayName:     "温柔ASMR姐姐",
		Description:     "声音轻柔温和，专门做ASMR内容，让人放松",
		PitchMultiplier: 0.9,
		SpeedMultiplier: 0.7,
		EmotionTendency: language.EmotionCalm,
		SpeakingStyle:   "gentle",
		Catchphrases: []string{
			"轻轻的~", "慢慢来~", "放松~", "很舒服~",
			"Gently~", "Slowly~", "Relax~", "So soothing~",
		},
		ResponsePatterns: map[string][]string{
			"greeting": {
				"大家好... 欢迎来到我的直播间... 让我们一起放松一下吧...",
				"Hello everyone... Welcome to my stream... Let's relax together...",
				"轻轻地说一声... 大家晚上好...",
			},
			"asmr_triggers": {
				"听听这个声音... 很舒服对吧...",
				"慢慢地... 深呼吸... 放松你的身体...",
				"Let the sound wash over you... so peaceful...",
			},
			"goodnight": {
				"晚安... 做个好梦...",
				"Good night... Sweet dreams...",
				"轻轻地... 闭上眼睛... 睡个好觉...",
			},
		},
	},
	{
		ID:              "energetic_girl",
		DisplayName:     "活力满满小姐姐",
		Description:     "充满活力和热情，说话快速有节奏",
		PitchMultiplier: 1.4,
		SpeedMultiplier: 1.3,
		EmotionTendency: language.EmotionExcited,
		SpeakingStyle:   "energetic",
		Catchphrases: []string{
			"冲冲冲！", "太棒了！", "加油！", "燃起来！", "超级棒！",
			"Let's go!", "Awesome!", "Amazing!", "So cool!", "Fantastic!",
		},
		ResponsePatterns: map[string][]string{
			"greeting": {
				"大家好！我是你们的活力小姐姐！今天要一起嗨起来！",
				"Hello everyone! Ready to have some fun today?!",
				"嗨！准备好跟我一起燃烧吗？！",
			},
			"encouragement": {
				"加油加油！你们都是最棒的！",
				"Come on! You can do it! So amazing!",
				"冲冲冲！一起燃起来！",
			},
			"celebration": {
				"耶！太棒了！我们做到了！",
				"Yes! That was incredible! We did it!",
				"哇！超级无敌棒！",
			},
		},
	},
	{
		ID:              "shy_girl",
		DisplayName:     "害羞小妹妹",
		Description:     "性格害羞内向，说话轻声细语，容易脸红",
		PitchMultiplier: 1.1,
		SpeedMultiplier: 0.9,
		EmotionTendency: EmotionShy,
		SpeakingStyle:   "shy",
		Catchphrases: []string{
			"那个...", "嗯...", "有点害羞...", "不好意思...",
			"Um...", "Well...", "I'm a bit shy...", "Sorry...",
		},
		ResponsePatterns: map[string][]string{
			"greeting": {
				"那个... 大家好... 我有点紧张...",
				"Um... Hello everyone... I'm a bit nervous...",
				"嗯... 请多多关照...",
			},
			"compliment_received": {
				"诶？真的吗... 谢谢... 好害羞...",
				"Really? Thank you... I'm blushing...",
				"不敢当... 大家太夸奖了...",
			},
			"mistake": {
				"啊... 对不起... 我搞错了...",
				"Oh no... Sorry... I made a mistake...",
				"嗯... 不好意思... 让我重新来...",
			},
		},
	},
}

// PersonalityManager 人设注册表，维护当前选中的人设
type PersonalityManager struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	current  *Profile
	log      *log.Logger
}

func NewPersonalityManager(log *log.Logger) *PersonalityManager {
	m := &PersonalityManager{
		profiles: make(map[string]*Profile, len(defaultProfiles)),
		log:      log,
	}
	for _, p := range defaultProfiles {
		m.profiles[p.ID] = p
	}
	m.current = m.profiles[DefaultPersonality]
	return m
}

func validateProfile(p *Profile) error {
	if p.ID == "" {
		return fmt.Errorf("人设ID不能为空")
	}
	if p.PitchMultiplier <= 0 || p.PitchMultiplier > 3 {
		return fmt.Errorf("人设 %s 音调倍率超出范围(0, 3]: %v", p.ID, p.PitchMultiplier)
	}
	if p.SpeedMultiplier <= 0 || p.SpeedMultiplier > 3 {
		return fmt.Errorf("人设 %s 语速倍率超出范围(0, 3]: %v", p.ID, p.SpeedMultiplier)
	}
	return nil
}

// Register 注册自定义人设，倍率必须在(0, 3]范围内
func (m *PersonalityManager) Register(p *Profile) error {
	if err := validateProfile(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	m.log.Infof("已注册自定义人设: %s", p.ID)
	return nil
}

// Select 切换当前人设，未知ID回退到默认人设并返回错误
func (m *PersonalityManager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		m.current = p
		m.log.Infof("已切换人设: %s(%s)", p.ID, p.DisplayName)
		return nil
	}
	m.current = m.profiles[DefaultPersonality]
	return fmt.Errorf("未知人设 %s，已回退到 %s", id, DefaultPersonality)
}

func (m *PersonalityManager) Current() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// List 返回所有已注册的人设ID
func (m *PersonalityManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids
}

// clampRatio 倍率统一限制在(0, 3]，情绪修正后可能越界
func clampRatio(v float32) float32 {
	if v > 3 {
		return 3
	}
	if v <= 0 {
		return 1
	}
	return v
}

// VoiceParams 基于当前人设和情绪计算合成参数
// 传入空情绪时使用人设自身的情绪倾向
func (m *PersonalityManager) VoiceParams(emotion language.Emotion) VoiceParams {
	m.mu.RLock()
	defer m.mu.RUnlock()

	params := VoiceParams{
		Pitch:   m.current.PitchMultiplier,
		Speed:   m.current.SpeedMultiplier,
		Emotion: emotion,
	}
	if emotion == "" || emotion == language.EmotionNeutral {
		params.Emotion = m.current.EmotionTendency
	}
	if mod, ok := emotionModifiers[params.Emotion]; ok {
		params.Pitch *= mod.Pitch
		params.Speed *= mod.Speed
	}
	params.Pitch = clampRatio(params.Pitch)
	params.Speed = clampRatio(params.Speed)
	return params
}

// ResponsePattern 按场景取固定台词，场景不存在时返回空
func (m *PersonalityManager) ResponsePattern(context string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.ResponsePatterns[context]
}
