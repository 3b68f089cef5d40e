package character

import (
	"math/rand"

	"zhibo/internal/language"
	"zhibo/pkg/log"
)

// Composer 把预处理后的文本和人设、ASMR模式组合成最终的合成文本与参数
type Composer struct {
	processor   *language.Processor
	personality *PersonalityManager
	asmr        *AsmrManager
	rnd         *rand.Rand
	log         *log.Logger
}

func NewComposer(personality *PersonalityManager, asmr *AsmrManager, rnd *rand.Rand, log *log.Logger) *Composer {
	return &Composer{
		processor:   language.NewProcessor(),
		personality: personality,
		asmr:        asmr,
		rnd:         rnd,
		log:         log,
	}
}

func (c *Composer) Personality() *PersonalityManager { return c.personality }
func (c *Composer) Asmr() *AsmrManager               { return c.asmr }

// Utterance 一次组装的完整结果，语言和情绪以原文判定为准，
// 后续注入的台词、口头禅不会改变它们
type Utterance struct {
	RawText  string
	Language string
	Emotion  language.Emotion
	Text     string // 最终送入合成引擎的文本
}

// Compose 完整的组装流程：预处理 → 情绪识别 → 人设加工 → ASMR加工
// contextHint为场景名（greeting等），命中人设台词时替换输入文本；可为空
func (c *Composer) Compose(input, contextHint string) (Utterance, VoiceParams) {
	u := Utterance{
		RawText:  input,
		Language: language.Detect(input),
	}

	text := c.processor.Process(input, u.Language)

	// 情绪先从原文取，省略号等特征在中文预处理中会被改写掉；
	// 原文无情绪时再看处理后的文本，表情转出的标记在那里
	u.Emotion, _ = language.DetectEmotion(input)
	if u.Emotion == language.EmotionNeutral {
		u.Emotion, _ = language.DetectEmotion(text)
	}

	text = c.applyPersonality(text, contextHint)

	var params VoiceParams
	if c.asmr.Active() {
		text = c.asmr.GenerateText(text)
		params = c.asmr.VoiceParams()
	} else {
		params = c.personality.VoiceParams(u.Emotion)
	}
	u.Text = text

	c.log.Debugf("组装完成: lang=%s emotion=%s pitch=%.2f speed=%.2f", u.Language, params.Emotion, params.Pitch, params.Speed)
	return u, params
}

// applyPersonality 场景台词优先，口头禅按概率追加
func (c *Composer) applyPersonality(text, contextHint string) string {
	p := c.personality.Current()
	if p == nil {
		return text
	}

	if contextHint != "" {
		if patterns := c.personality.ResponsePattern(contextHint); len(patterns) > 0 {
			text = patterns[c.rnd.Intn(len(patterns))]
			if len(p.Catchphrases) > 0 && c.rnd.Float64() < 0.3 {
				text = text + " " + p.Catchphrases[c.rnd.Intn(len(p.Catchphrases))]
			}
			return text
		}
	}

	if len(p.Catchphrases) > 0 && c.rnd.Float64() < 0.2 {
		text = text + " " + p.Catchphrases[c.rnd.Intn(len(p.Catchphrases))]
	}
	return text
}
