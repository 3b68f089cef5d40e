package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"zhibo/internal/config"
	"zhibo/internal/streaming"
	"zhibo/pkg/log"
)

type WebsocketServer struct {
	cfg       *config.Config
	log       *log.Logger
	collector *streaming.Collector
}

func NewWebsocketServer(cfg *config.Config, log *log.Logger) *WebsocketServer {
	return &WebsocketServer{
		cfg:       cfg,
		log:       log,
		collector: streaming.NewCollector(),
	}
}

func (w *WebsocketServer) Server(ctx *gin.Context) {
	conn, err := newWebsocketConn(ctx.Writer, ctx.Request)
	if err != nil {
		w.log.Errorf("failed to create websocket connection: %v", err)
		return
	}

	w.log.Infof("client %s connected", fmt.Sprintf("%p", conn))

	handler, err := NewHandler(w.cfg, w.log, conn, w.collector)
	if err != nil {
		w.log.Errorf("failed to create handler: %v", err)
		_ = conn.Close()
		return
	}
	handler.Handle(ctx.Request.Context())
}
