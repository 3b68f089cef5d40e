package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"zhibo/internal/model"
)

func (h *Handler) send(v any, what string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %v", what, err)
	}
	if err = h.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if h.conn.IsClosed() {
			h.close()
			return nil
		}
		return fmt.Errorf("failed to send %s message: %v", what, err)
	}
	return nil
}

func (h *Handler) sendErrorMessage(code int, msg string) error {
	return h.send(model.BaseResponse{
		Type:      "error",
		SessionID: h.sessionID,
		ErrorCode: code,
		ErrorMsg:  msg,
	}, "error")
}

func (h *Handler) sendHelloMessage(msg model.HelloResponse) error {
	msg.BaseResponse.Type = "hello"
	msg.BaseResponse.SessionID = h.sessionID
	return h.send(msg, "hello")
}

func (h *Handler) sendChatMessage(text, emotion string) error {
	return h.send(model.ChatResponse{
		BaseResponse: model.BaseResponse{
			Type:      "chat",
			SessionID: h.sessionID,
		},
		Text:    text,
		Emotion: emotion,
	}, "chat")
}

func (h *Handler) sendTtsMessage(audio, engine string) error {
	return h.send(model.TtsResponse{
		BaseResponse: model.BaseResponse{
			Type:      "tts",
			SessionID: h.sessionID,
		},
		Audio:  audio,
		Engine: engine,
	}, "tts")
}

func (h *Handler) sendCommandMessage(command, result string) error {
	return h.send(model.CommandResponse{
		BaseResponse: model.BaseResponse{
			Type:      "command",
			SessionID: h.sessionID,
		},
		Command: command,
		Result:  result,
	}, "command")
}

func (h *Handler) sendStatsMessage() error {
	stats := h.collector.Snapshot(h.voice, nil)
	stats.Personality = h.composer.Personality().Current().ID
	if mode := h.composer.Asmr().Current(); mode != nil {
		stats.AsmrMode = mode.ID
	}
	return h.send(model.StatsResponse{
		BaseResponse: model.BaseResponse{
			Type:      "stats",
			SessionID: h.sessionID,
		},
		Stats: stats,
	}, "stats")
}
