package language

import "strings"

// Emotion 从文本中识别出的情绪，用于调整语音参数
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionExcited   Emotion = "excited"
	EmotionAngry     Emotion = "angry"
	EmotionSurprised Emotion = "surprised"
	EmotionCalm      Emotion = "calm"
	EmotionLove      Emotion = "love"
	EmotionSleepy    Emotion = "sleepy"
)

// emotionKeywords 中英文情绪关键词表，按子串匹配
var emotionKeywords = map[Emotion][]string{
	EmotionHappy: {
		"开心", "高兴", "快乐", "愉快", "喜悦", "幸福",
		"哈哈", "嘻嘻", "呵呵", "嘿嘿",
		"happy", "joy", "glad", "cheerful", "delighted",
		"haha", "hehe", "lol", "smile",
	},
	EmotionSad: {
		"伤心", "难过", "悲伤", "沮丧", "失望", "郁闷",
		"哭", "眼泪", "呜呜", "555",
		"sad", "sorrow", "upset", "depressed", "cry", "tears",
	},
	EmotionExcited: {
		"激动", "兴奋", "热血", "燃", "冲", "太棒了", "厉害",
		"哇塞", "6666",
		"excited", "thrilled", "pumped", "awesome", "incredible", "fantastic",
	},
	EmotionAngry: {
		"生气", "愤怒", "气愤", "恼火", "火大", "讨厌",
		"angry", "mad", "furious", "annoyed", "hate",
	},
	EmotionSurprised: {
		"惊讶", "震惊", "吃惊", "没想到", "天哪", "我的天",
		"哎呀",
		"surprised", "shocked", "amazed", "omg", "no way",
	},
	EmotionCalm: {
		"平静", "冷静", "安静", "宁静", "放松", "舒服", "淡定",
		"calm", "peaceful", "relaxed", "serene", "soothing",
	},
	EmotionLove: {
		"爱你", "喜欢", "亲爱的", "宝贝", "么么哒",
		"love", "sweetheart", "darling",
	},
	EmotionSleepy: {
		"困", "睡觉", "晚安", "入睡", "梦",
		"sleepy", "tired", "good night", "dream",
	},
}

// 情绪优先级，得分相同时排位靠前者胜出，保证结果稳定
var emotionPriority = []Emotion{
	EmotionExcited, EmotionHappy, EmotionLove, EmotionSurprised,
	EmotionAngry, EmotionSad, EmotionSleepy, EmotionCalm,
}

// DetectEmotion 根据关键词和标点特征识别文本情绪。
// 返回主情绪和全部命中的情绪集合，无命中时返回 neutral。
func DetectEmotion(text string) (Emotion, []Emotion) {
	if text == "" {
		return EmotionNeutral, nil
	}

	lower := strings.ToLower(text)
	scores := make(map[Emotion]int)
	for emotion, words := range emotionKeywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				scores[emotion]++
			}
		}
	}

	// 标点特征
	if strings.Contains(text, "!!") || strings.Contains(text, "！！") {
		scores[EmotionExcited] += 2
	}
	if strings.Contains(text, "??") || strings.Contains(text, "？？") {
		scores[EmotionSurprised] += 2
	}
	if strings.HasSuffix(strings.TrimSpace(text), "...") {
		scores[EmotionCalm]++
	}

	if len(scores) == 0 {
		return EmotionNeutral, nil
	}

	var primary Emotion
	best := 0
	for _, emotion := range emotionPriority {
		if scores[emotion] > best {
			best = scores[emotion]
			primary = emotion
		}
	}

	all := make([]Emotion, 0, len(scores))
	for _, emotion := range emotionPriority {
		if scores[emotion] > 0 {
			all = append(all, emotion)
		}
	}
	return primary, all
}
