package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"MProject/global"
	"MProject/logger"
	"MProject/service/bus"
	"MProject/service/gateway"
	match "MProject/service/match"
	redis "MProject/service/storage/redis"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := global.ConfigAll(); err != nil {
		logger.Errorf("bootstrap failed: %v", err)
		os.Exit(1)
	}
	cfg := global.Config

	store := match.NewRedisStore(redis.GetRedis())

	var b bus.Bus
	switch cfg.BusKind {
	case global.BusKindNats:
		if cfg.NatsServers == "" {
			logger.Errorf("BUS_KIND=nats requires NATS_SERVERS")
			os.Exit(1)
		}
		nb, err := bus.NewNatsBus(bus.NatsConfig{
			Servers: strings.Split(cfg.NatsServers, ","),
			Name:    cfg.GatewayID,
		})
		if err != nil {
			logger.Errorf("nats bus: %v", err)
			os.Exit(1)
		}
		b = nb
	default:
		b = bus.NewRedisBus(redis.GetRedis())
	}

	conns := gateway.NewConnManager(cfg.GatewayID)
	srv, err := gateway.NewServer(conns, store, b)
	if err != nil {
		logger.Errorf("gateway server: %v", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/chat", srv.HandleWS) // e.g. ws://localhost:8080/chat
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/stats", func(c *gin.Context) {
		waiting, err := srv.Engine().WaitingLen(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"gateway":     cfg.GatewayID,
			"waiting":     waiting,
			"connections": conns.Count(),
		})
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Infof("[HTTP] %s listening on %s", cfg.GatewayID, httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	conns.Close()
	if err := b.Close(); err != nil {
		logger.Errorf("close bus: %v", err)
	}
	if err := redis.CloseRedis(); err != nil {
		logger.Errorf("close redis: %v", err)
	}
	logger.Sync()
}
