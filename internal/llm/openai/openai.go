package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"zhibo/internal/llm"
)

// LLM 兼容openai接口的对话模型，生成主播回复
type LLM struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int64
	// 最大重试次数
	MaxReties int
}

func NewLLM(model, apiKey, baseUrl string) *LLM {
	return &LLM{
		Model:       model,
		APIKey:      apiKey,
		BaseURL:     baseUrl,
		Temperature: 0.8,
		MaxTokens:   256,
		MaxReties:   3,
	}
}

func (l *LLM) Reply(ctx context.Context, params llm.ReplyParams) (string, error) {
	if params.Content == "" {
		return "", errors.New("content is empty")
	}

	userText := params.Content
	if params.UserName != "" {
		userText = fmt.Sprintf("观众 %s 说: %s", params.UserName, params.Content)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(params.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(userText))

	client := openai.NewClient(
		option.WithBaseURL(l.BaseURL),
		option.WithAPIKey(l.APIKey),
		option.WithMaxRetries(l.MaxReties),
	)
	response, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       l.Model,
		Messages:    messages,
		Temperature: openai.Float(l.Temperature),
		MaxTokens:   openai.Int(l.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to ask: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("unexpected errors in ask")
	}
	return response.Choices[0].Message.Content, nil
}
