package router

import (
	"github.com/gin-gonic/gin"

	"zhibo/internal/config"
	"zhibo/internal/handler"
	"zhibo/pkg/log"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	ws := handler.NewWebsocketServer(cfg, log.NewLogger(&log.Option{
		Mode:        cfg.Server.Mode,
		ServiceName: "zhibo",
		EncodeType:  log.EncodeTypeJson,
	}))
	r.GET("/zhibo/v1", ws.Server)
	return r
}
