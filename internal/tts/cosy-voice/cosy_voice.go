package cosy_voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"zhibo/internal/tts"
	log2 "zhibo/pkg/log"
)

// 阿里语音合成 CosyVoice WebSocket API 文档
// https://help.aliyun.com/zh/model-studio/cosyvoice-websocket-api

const (
	wsURL = "wss://dashscope.aliyuncs.com/api-ws/v1/inference/" // WebSocket服务端地址
)

type CosyVoice struct {
	cfg *tts.Config
	log *log2.Logger

	connectID string
	taskID    string
}

func NewCosyVoice(log *log2.Logger) *CosyVoice {
	return &CosyVoice{
		log:       log,
		connectID: fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

func (c *CosyVoice) Name() string {
	return "cosy_voice"
}

func (c *CosyVoice) SetConfig(cfg *tts.Config) *tts.Config {
	if cfg.Speaker == "" {
		cfg.Speaker = "longwan_v2"
	}
	if cfg.Speed < 0.5 || cfg.Speed > 2.0 {
		cfg.Speed = 1.0
	}
	if cfg.Volume < 0 || cfg.Volume > 100 {
		cfg.Volume = 50
	}
	if cfg.Pitch < 0.5 || cfg.Pitch > 2.0 {
		cfg.Pitch = 1.0
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	c.cfg = cfg
	return c.cfg
}

type Header struct {
	Action       string         `json:"action"`
	TaskID       string         `json:"task_id"`
	Streaming    string         `json:"streaming"`
	Event        string         `json:"event"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Attributes   map[string]any `json:"attributes"`
}

type Payload struct {
	TaskGroup  string `json:"task_group"`
	Task       string `json:"task"`
	Function   string `json:"function"`
	Model      string `json:"model"`
	Parameters Params `json:"parameters"`
	Input      Input  `json:"input"`
}

type Params struct {
	TextType   string  `json:"text_type"`
	Voice      string  `json:"voice"`
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	Volume     int     `json:"volume"`
	Rate       float32 `json:"rate"`
	Pitch      float32 `json:"pitch"`
}

type Input struct {
	Text string `json:"text"`
}

type Event struct {
	Header  Header  `json:"header"`
	Payload Payload `json:"payload"`
}

// Synthesize 按 run-task / continue-task / finish-task 流程完成一次合成，
// 收集全部二进制音频分片直到 task-finished 事件
func (c *CosyVoice) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	if c.cfg == nil {
		return nil, errors.New("cosy voice tts not configured")
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = conn.Close()
	}()

	if err = c.startTask(conn); err != nil {
		return nil, err
	}
	if err = c.sendCmd(conn, c.continueTaskCmd(text)); err != nil {
		return nil, fmt.Errorf("send continue task cmd error: %v", err)
	}
	if err = c.sendCmd(conn, c.finishTaskCmd()); err != nil {
		return nil, fmt.Errorf("send finish task cmd error: %v", err)
	}

	var audio bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgType, message, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read message: %v", err)
		}

		if msgType == websocket.BinaryMessage {
			audio.Write(message)
			continue
		}

		var event Event
		if err = json.Unmarshal(message, &event); err != nil {
			c.log.Errorf("json unmarshal error: %v", err)
			continue
		}
		switch event.Header.Event {
		case "result-generated":
			// 忽略result-generated事件
		case "task-finished":
			return audio.Bytes(), nil
		case "task-failed":
			if event.Header.ErrorMessage != "" {
				return nil, errors.New(event.Header.ErrorMessage)
			}
			return nil, errors.New("未知原因导致任务失败")
		default:
			c.log.Warnf("预料之外的事件：%v", event.Header.Event)
		}
	}
}

func (c *CosyVoice) dial(ctx context.Context) (*websocket.Conn, error) {
	header := make(http.Header)
	header.Add("X-DashScope-DataInspection", "enable")
	header.Add("Authorization", fmt.Sprintf("bearer %s", c.cfg.ApiKey))

	var (
		conn *websocket.Conn
		resp *http.Response
		err  error
	)
	maxRetries := 2 // 最大重试次数
	for i := 0; i < maxRetries; i++ {
		dialer := websocket.DefaultDialer
		conn, resp, err = dialer.DialContext(ctx, wsURL, header)
		if err == nil {
			return conn, nil
		}
		if i+1 < maxRetries {
			backoffTime := time.Duration(500*(i+1)) * time.Millisecond
			c.log.Warnf("failed to connect to the websocket, try %d/%d: %v, will try again %v", i+1, maxRetries, err, backoffTime)
			time.Sleep(backoffTime)
		}
	}
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	return nil, fmt.Errorf("failed to connect(status_code:%d): %v", statusCode, err)
}

// startTask 发送run-task指令并等待task-started事件
func (c *CosyVoice) startTask(conn *websocket.Conn) error {
	c.taskID = uuid.New().String()
	if err := c.sendCmd(conn, c.runTaskCmd()); err != nil {
		return fmt.Errorf("send run task cmd error: %v", err)
	}

	msgType, message, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("get task-started event message error: %v", err)
	}
	if msgType != websocket.TextMessage {
		return fmt.Errorf("unexpected message type: %v", msgType)
	}
	var event Event
	if err = json.Unmarshal(message, &event); err != nil {
		return fmt.Errorf("error unmarshaling task-started event message: %v", err)
	}
	if event.Header.Event != "task-started" {
		return fmt.Errorf("unexpected task-started event, got: %s", event.Header.Event)
	}
	return nil
}

func (c *CosyVoice) sendCmd(conn *websocket.Conn, cmd Event) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *CosyVoice) runTaskCmd() Event {
	return Event{
		Header: Header{
			Action:    "run-task",
			TaskID:    c.taskID,
			Streaming: "duplex",
		},
		Payload: Payload{
			TaskGroup: "audio",
			Task:      "tts",
			Function:  "SpeechSynthesizer",
			Model:     "cosyvoice-v2",
			Parameters: Params{
				TextType:   "PlainText",
				Voice:      c.cfg.Speaker,
				Format:     c.cfg.Format,
				SampleRate: c.cfg.SampleRate,
				Volume:     c.cfg.Volume,
				Rate:       c.cfg.Speed,
				Pitch:      c.cfg.Pitch,
			},
			Input: Input{},
		},
	}
}

func (c *CosyVoice) continueTaskCmd(text string) Event {
	return Event{
		Header: Header{
			Action:    "continue-task",
			TaskID:    c.taskID,
			Streaming: "duplex",
		},
		Payload: Payload{
			Input: Input{Text: text},
		},
	}
}

func (c *CosyVoice) finishTaskCmd() Event {
	return Event{
		Header: Header{
			Action:    "finish-task",
			TaskID:    c.taskID,
			Streaming: "duplex",
		},
		Payload: Payload{
			Input: Input{},
		},
	}
}

func (c *CosyVoice) Reset() error {
	c.taskID = ""
	return nil
}
