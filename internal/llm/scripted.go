package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Scripted 无模型时的保底回复，按关键词匹配固定话术
type Scripted struct{}

func NewScripted() *Scripted {
	return &Scripted{}
}

type rule struct {
	keywords []string
	reply    string // %s 处填观众昵称
}

var scriptedRules = []rule{
	{[]string{"你好", "hello", "hi"}, "你好 %s！欢迎来到直播间！"},
	{[]string{"漂亮", "可爱", "beautiful", "cute"}, "谢谢 %s 的夸奖！你也很棒哦！"},
	{[]string{"唱歌", "sing", "song"}, "%s 想听歌吗？我来为大家唱一首！"},
	{[]string{"晚安", "goodnight", "睡觉"}, "晚安 %s！做个好梦！"},
}

func (s *Scripted) Reply(_ context.Context, params ReplyParams) (string, error) {
	content := strings.ToLower(params.Content)
	name := params.UserName
	if name == "" {
		name = "朋友"
	}

	for _, r := range scriptedRules {
		for _, kw := range r.keywords {
			if strings.Contains(content, kw) {
				return fmt.Sprintf(r.reply, name), nil
			}
		}
	}

	// 太短的消息不值得回复
	if utf8.RuneCountInString(params.Content) > 5 {
		return fmt.Sprintf("谢谢 %s 的留言！", name), nil
	}
	return params.Content, nil
}
