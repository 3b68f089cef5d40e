package handler

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"zhibo/internal/character"
	"zhibo/internal/config"
	"zhibo/internal/llm"
	"zhibo/internal/llm/openai"
	"zhibo/internal/streaming"
	"zhibo/internal/voice"
	"zhibo/pkg/log"
	"zhibo/pkg/util"
)

type Handler struct {
	cfg *config.Config
	log *log.Logger

	conn Connection
	once sync.Once // 用于确保只执行一次关闭操作

	sessionID string
	enableTts bool

	composer  *character.Composer
	voice     *voice.Manager
	replier   llm.Replier
	scripted  llm.Replier // 模型不可用时的保底回复
	collector *streaming.Collector

	chatRound      int   // chatRound 对话轮次
	closeAfterChat bool  // closeAfterChat 是否对话结束后关闭连接
	stopRecv       int32 // stopRecv 停止接收客户端消息，0：不停止，1：停止
	interrupt      int32 // interrupt 中断对话，0：不中断，1：中断

	stopChan        chan struct{}
	clientTextQueue chan string
}

func NewHandler(cfg *config.Config, logger *log.Logger, conn Connection, collector *streaming.Collector) (*Handler, error) {
	voiceManager, err := voice.NewManager(cfg, logger)
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	personality := character.NewPersonalityManager(logger)
	asmr := character.NewAsmrManager(rnd, logger)

	handler := &Handler{
		cfg:       cfg,
		log:       logger,
		conn:      conn,
		sessionID: uuid.New().String(),
		composer:  character.NewComposer(personality, asmr, rnd, logger),
		voice:     voiceManager,
		scripted:  llm.NewScripted(),
		collector: collector,
		stopChan:  make(chan struct{}),
	}
	handler.replier = handler.scripted
	if v, ok := cfg.SelectedModule["llm"]; ok {
		if llmCfg, ok := cfg.LLM[v]; ok && llmCfg.APIKey != "" {
			handler.replier = openai.NewLLM(llmCfg.Model, llmCfg.APIKey, llmCfg.BaseURL)
		}
	}
	return handler, nil
}

func (h *Handler) Handle(ctx context.Context) {
	// 接收并处理hello消息
	if err := h.handleHelloMessage(ctx); err != nil {
		h.log.Errorf("failed to handle hello message: %v", err)
		return
	}

	// 开始接收客户端消息
	h.listenClientMessages(ctx)
}

func (h *Handler) listenClientMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopChan:
			return
		default:
			messageType, message, err := h.conn.ReadMessage()
			if err != nil {
				h.log.Errorf("failed to read message: %v", err)
				return
			}
			if err = h.handleMessage(messageType, message); err != nil {
				h.log.Errorf("failed to handle message: %v", err)
			}
		}
	}
}

func (h *Handler) listenClientTextMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopChan:
			return
		case text := <-h.clientTextQueue:
			if atomic.LoadInt32(&h.stopRecv) == 1 {
				continue
			}
			h.log.Infof("received text data: %v", text)
			if err := h.handleClientTextMessages(ctx, text); err != nil {
				h.log.Errorf("failed to process client text message: %v", err)
			}
		}
	}
}

// systemPrompt 把当前人设折叠进提示词
func (h *Handler) systemPrompt() string {
	p := h.composer.Personality().Current()
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("你是一名虚拟主播，人设是「")
	b.WriteString(p.DisplayName)
	b.WriteString("」。")
	b.WriteString(p.Description)
	if len(p.Catchphrases) > 0 {
		b.WriteString("常用口头禅: ")
		b.WriteString(strings.Join(p.Catchphrases, "、"))
		b.WriteString("。")
	}
	b.WriteString("用一两句话回复观众的弹幕，保持人设语气。")
	return b.String()
}

func (h *Handler) isExit(text string) bool {
	if len(h.cfg.CMDExit) == 0 {
		return false
	}
	// 移除标点符号
	text = util.RemoveAllPunctuation(text)
	for _, cmd := range h.cfg.CMDExit {
		if text == cmd {
			return true
		}
	}
	return false
}

func (h *Handler) close() {
	h.once.Do(func() {
		_ = h.conn.Close()
		close(h.stopChan)
		h.voice.Reset()
	})
}
