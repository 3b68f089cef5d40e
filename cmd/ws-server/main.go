package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zhibo/internal/config"
	"zhibo/internal/router"
	"zhibo/pkg/log"
)

func main() {
	cfg := config.NewConfig()
	if cfg == nil {
		panic("failed to load config")
	}

	logger := log.NewLogger(&log.Option{
		Mode:        cfg.Server.Mode,
		ServiceName: "zhibo-ws",
	})

	r := router.NewRouter(cfg)
	s := http.Server{
		Addr:           cfg.Server.IP + ":" + cfg.Server.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second, // 仅约束升级握手，升级后由连接自身的超时接管
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Infof("listening on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("s.ListenAndServe err: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM) // 接收系统信号量
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Info("server exiting")
}
