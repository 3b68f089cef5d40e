package llm

import "context"

type ReplyParams struct {
	SystemPrompt string // 人设提示词，可不设置
	UserName     string // 观众昵称，可为空
	Content      string // 观众消息原文
}

// Replier 根据观众消息生成主播回复文本
type Replier interface {
	Reply(ctx context.Context, params ReplyParams) (string, error)
}
