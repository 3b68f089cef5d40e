package language

import (
	"regexp"
	"strings"
)

// Processor 文本预处理器，负责把弹幕、聊天原文清洗成适合送入TTS引擎的文本。
// 所有处理步骤均为幂等操作，重复处理已处理过的文本不会改变结果。
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`https?://\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)

	ellipsisRe = regexp.MustCompile(`[.]{3,}`)
	bangRe     = regexp.MustCompile(`[!]{2,}`)
	questionRe = regexp.MustCompile(`[?]{2,}`)

	zhPauseRe   = regexp.MustCompile(`([。！？])\s*`)
	enPauseRe   = regexp.MustCompile(`([.!?])\s*`)
	zhNumberRe  = regexp.MustCompile(`\d+`)
	punctFixRe  = regexp.MustCompile(`\s+([.!?,:;，。！？、；：])`)
	terminalSet = "。！？.!?…"
)

// emojiRe 覆盖主要的表情符号码位区间
var emojiRe = regexp.MustCompile(`[\x{1F000}-\x{1FFFF}]|[\x{2600}-\x{27BF}]|\x{FE0F}`)

// emotionEmoji 已知情绪表情先转换为文本标记，其余表情直接移除
var emotionEmoji = []struct {
	emojis  []string
	emotion string
}{
	{[]string{"😊", "😄", "😃", "🥰", "😍", "🤗"}, "happy"},
	{[]string{"😢", "😭", "😞", "😔", "💔"}, "sad"},
	{[]string{"🤩", "😆", "🎉", "🔥", "⚡"}, "excited"},
	{[]string{"❤️", "💕", "💖", "💗", "😘"}, "love"},
	{[]string{"😲", "😮", "🤯", "😱"}, "surprised"},
	{[]string{"😴", "💤", "😪", "🥱"}, "sleepy"},
}

// 中文符号替换表，顺序敏感，长模式在前
var zhReplacements = []struct{ old, new string }{
	{"...", "，"},
	{"…", "，"},
	{"--", "，"},
	{"&", "和"},
	{"+", "加"},
	{"=", "等于"},
}

// 英文缩写展开，长模式在前避免子串误替换
var enContractions = []struct{ old, new string }{
	{"won't", "will not"},
	{"can't", "cannot"},
	{"n't", " not"},
	{"'re", " are"},
	{"'ve", " have"},
	{"'ll", " will"},
	{"'d", " would"},
	{"'m", " am"},
	{"'s", " is"},
}

var enAbbreviations = []struct{ old, new string }{
	{"Mr.", "Mister"},
	{"Mrs.", "Missus"},
	{"Dr.", "Doctor"},
	{"Prof.", "Professor"},
	{"vs.", "versus"},
	{"etc.", "etcetera"},
	{"i.e.", "that is"},
	{"e.g.", "for example"},
}

var zhDigits = []rune("零一二三四五六七八九")

// Process 完整的预处理流程：基础清洗 → 表情处理 → 语言相关处理 → 收尾。
// lang 为 "zh"、"en" 或 "auto"，auto 时根据文本内容自动判断。
func (p *Processor) Process(text, lang string) string {
	if text == "" {
		return ""
	}

	text = p.clean(text)

	// 语言判定要在表情转标记之前做，标记引入的字母不应影响判定结果
	if lang != LangChinese && lang != LangEnglish {
		lang = Detect(text)
	}

	text = p.stripEmoji(text)
	if lang == LangChinese {
		text = p.processChinese(text)
	} else {
		text = p.processEnglish(text)
	}

	return p.finalize(text, lang)
}

func (p *Processor) clean(text string) string {
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = urlRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")

	// 压缩连续标点
	text = ellipsisRe.ReplaceAllString(text, "...")
	text = bangRe.ReplaceAllString(text, "!!")
	text = questionRe.ReplaceAllString(text, "??")
	return text
}

// stripEmoji 移除所有表情码位，已知情绪表情先映射为 *emotion* 文本标记
func (p *Processor) stripEmoji(text string) string {
	for _, group := range emotionEmoji {
		for _, e := range group.emojis {
			if strings.Contains(text, e) {
				text = strings.ReplaceAll(text, e, " *"+group.emotion+"* ")
			}
		}
	}
	return emojiRe.ReplaceAllString(text, "")
}

func (p *Processor) processChinese(text string) string {
	for _, r := range zhReplacements {
		text = strings.ReplaceAll(text, r.old, r.new)
	}

	// 短数字转汉字读法，长数字保持原样交给引擎
	text = zhNumberRe.ReplaceAllStringFunc(text, func(num string) string {
		if len(num) > 2 {
			return num
		}
		var b strings.Builder
		for _, d := range num {
			b.WriteRune(zhDigits[d-'0'])
		}
		return b.String()
	})

	// 句末补停顿，利于语音节奏
	text = zhPauseRe.ReplaceAllString(text, "$1 ")
	return text
}

func (p *Processor) processEnglish(text string) string {
	for _, c := range enContractions {
		text = strings.ReplaceAll(text, c.old, c.new)
	}
	for _, a := range enAbbreviations {
		text = strings.ReplaceAll(text, a.old, a.new)
	}
	text = enPauseRe.ReplaceAllString(text, "$1 ")
	return text
}

func (p *Processor) finalize(text, lang string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctFixRe.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// 结尾补标点，合成出来的语音收尾更自然
	runes := []rune(text)
	if !strings.ContainsRune(terminalSet, runes[len(runes)-1]) {
		if lang == LangChinese {
			text += "。"
		} else {
			text += "."
		}
	}
	return text
}
