package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"zhibo/internal/llm"
	"zhibo/internal/model"
	errcode "zhibo/pkg/err-code"
)

func (h *Handler) handleMessage(messageType int, message []byte) error {
	switch messageType {
	case websocket.TextMessage:
		h.clientTextQueue <- string(message)
		return nil
	default:
		return fmt.Errorf("unsupported message type: %d", messageType)
	}
}

func (h *Handler) handleClientTextMessages(ctx context.Context, content string) error {
	var data model.ClientTextMessage
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		_ = h.sendErrorMessage(errcode.ErrInvalidDataType.Code(), errcode.ErrInvalidDataType.Msg())
		return fmt.Errorf("failed to unmarshal text message: %v", err)
	}
	switch data.Type {
	case "abort":
		return h.handleAbortChat()
	case "command":
		return h.handleCommand(data)
	case "chat":
		// 如果有新的对话文本，则应该打断当前的对话
		_ = h.handleAbortChat()
		return h.handleChatMessage(ctx, data)
	default:
		return fmt.Errorf("unsupported message type: %s", data.Type)
	}
}

func (h *Handler) handleHelloMessage(ctx context.Context) error {
	// 进行hello验证
	messageType, message, err := h.conn.ReadMessage()
	if err != nil {
		_ = h.sendErrorMessage(errcode.ErrInternal.Code(), errcode.ErrInternal.Msg())
		return fmt.Errorf("failed to read message: %v", err)
	}
	if messageType != websocket.TextMessage {
		_ = h.sendErrorMessage(errcode.ErrInvalidDataType.Code(), errcode.ErrInvalidDataType.Msg())
		return fmt.Errorf("unsupported message type: %d", messageType)
	}

	var data model.ClientTextMessage
	if err = json.Unmarshal(message, &data); err != nil {
		_ = h.sendErrorMessage(errcode.ErrInvalidDataType.Code(), errcode.ErrInvalidDataType.Msg())
		return fmt.Errorf("failed to unmarshal text message: %v", err)
	}

	h.enableTts = data.EnableTts

	// 初始人设，未指定或未知时落到配置的默认人设
	personality := data.Personality
	if personality == "" {
		personality = h.cfg.Character.DefaultPersonality
	}
	if err = h.composer.Personality().Select(personality); err != nil {
		h.log.Warnf("hello: %v", err)
	}

	// ASMR模式默认不开启，只有显式指定时才进入
	if data.AsmrMode != "" {
		if err = h.composer.Asmr().Select(data.AsmrMode); err != nil {
			h.log.Warnf("hello: %v", err)
		}
	}

	msg := model.HelloResponse{
		BaseResponse: model.BaseResponse{
			Type:      "hello",
			SessionID: h.sessionID,
		},
		Personality: h.composer.Personality().Current().ID,
	}
	if mode := h.composer.Asmr().Current(); mode != nil {
		msg.AsmrMode = mode.ID
	}

	params := h.composer.Personality().VoiceParams("")
	msg.TtsParams.Speed = params.Speed
	msg.TtsParams.Pitch = params.Pitch
	msg.TtsParams.Volume = 50
	msg.TtsParams.SampleRate = h.cfg.Audio.SampleRate
	msg.TtsParams.Format = "mp3"
	msg.TtsParams.Language = data.TtsParams.Language

	// 开始监听客户端文本消息
	h.clientTextQueue = make(chan string, 100)
	go h.listenClientTextMessages(ctx)
	return h.sendHelloMessage(msg)
}

func (h *Handler) handleCommand(data model.ClientTextMessage) error {
	switch data.Command {
	case "personality":
		if err := h.composer.Personality().Select(data.CommandArg); err != nil {
			_ = h.sendErrorMessage(errcode.ErrUnknownPersonality.Code(), errcode.ErrUnknownPersonality.Msg())
			return err
		}
		return h.sendCommandMessage(data.Command, fmt.Sprintf("已切换人设: %s", data.CommandArg))
	case "asmr":
		if err := h.composer.Asmr().Select(data.CommandArg); err != nil {
			_ = h.sendErrorMessage(errcode.ErrUnknownAsmrMode.Code(), errcode.ErrUnknownAsmrMode.Msg())
			return err
		}
		return h.sendCommandMessage(data.Command, fmt.Sprintf("已进入ASMR模式: %s", data.CommandArg))
	case "asmr_off":
		h.composer.Asmr().Disable()
		return h.sendCommandMessage(data.Command, "已退出ASMR模式")
	case "stats":
		return h.sendStatsMessage()
	default:
		return fmt.Errorf("unsupported command: %s", data.Command)
	}
}

func (h *Handler) handleAbortChat() error {
	h.log.Infof("client abort chat")
	atomic.StoreInt32(&h.interrupt, 1)
	return nil
}

func (h *Handler) handleChatMessage(ctx context.Context, data model.ClientTextMessage) error {
	text := data.ChatText
	if text == "" {
		_ = h.handleAbortChat()
		return errors.New("empty text message, skip")
	}

	h.collector.IncMessages()
	h.chatRound++
	h.log.Infof("start new chat round: %d", h.chatRound)

	if h.isExit(text) {
		h.closeAfterChat = true           // 存在退出意图则在此次对话后关闭连接
		atomic.StoreInt32(&h.stopRecv, 1) // 不再接收客户端消息
		h.log.Info("user request exit, abort chat")
	}

	// 如果有中断信号，须关闭中断，保证下一轮对话可打断
	if atomic.LoadInt32(&h.interrupt) == 1 {
		atomic.StoreInt32(&h.interrupt, 0)
	}

	// 开启协程生成回复和音频，避免处理过程中无法响应打断
	go func() {
		reply, err := h.replier.Reply(ctx, llm.ReplyParams{
			SystemPrompt: h.systemPrompt(),
			UserName:     data.UserName,
			Content:      text,
		})
		if err != nil {
			h.log.Warnf("llm reply failed, fallback to scripted: %v", err)
			reply, _ = h.scripted.Reply(ctx, llm.ReplyParams{UserName: data.UserName, Content: text})
		}

		u, params := h.composer.Compose(reply, data.Scene)
		if atomic.LoadInt32(&h.interrupt) == 1 {
			return
		}
		if err = h.sendChatMessage(u.Text, string(params.Emotion)); err != nil {
			h.log.Errorf("failed to send chat message: %v", err)
			return
		}

		if h.enableTts {
			audio, engine, synErr := h.voice.Synthesize(ctx, u.Text, params, u.Language)
			if atomic.LoadInt32(&h.interrupt) == 1 {
				return
			}
			if synErr != nil {
				h.log.Errorf("synthesis failed: %v", synErr)
				_ = h.sendErrorMessage(errcode.ErrSynthesisFailed.Code(), errcode.ErrSynthesisFailed.Msg())
			} else {
				_ = h.sendTtsMessage(base64.StdEncoding.EncodeToString(audio), engine)
			}
		}

		// 对话结束后关闭连接
		if h.closeAfterChat {
			h.log.Info("close after chat")
			h.close()
		}
	}()

	return nil
}
