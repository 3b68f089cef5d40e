package language

import (
	"regexp"
	"unicode"
)

const (
	LangChinese = "zh"
	LangEnglish = "en"
	LangAuto    = "auto"
)

// 形如 *happy* 的情绪标记是元数据，不参与语言判定
var markerRe = regexp.MustCompile(`\*[a-z]+\*`)

// Detect 根据汉字与拉丁字母的占比判断文本主要语言。
// 无法判断时（空文本、纯符号）默认中文。
func Detect(text string) string {
	text = markerRe.ReplaceAllString(text, "")

	var han, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			han++
		case r < 128 && unicode.IsLetter(r):
			latin++
		}
	}

	total := han + latin
	if total == 0 {
		return LangChinese
	}
	if float64(latin)/float64(total) > 0.5 {
		return LangEnglish
	}
	return LangChinese
}
