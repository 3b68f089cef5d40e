package util

import "regexp"

var punctuationRe = regexp.MustCompile(`[\p{P}\p{S}]+`)

// RemoveAllPunctuation 移除所有标点符号
func RemoveAllPunctuation(text string) string {
	return punctuationRe.ReplaceAllString(text, "")
}
