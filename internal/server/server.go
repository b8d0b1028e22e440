// Package server exposes games over HTTP long-polling and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/property-tycoon/internal/config"
	"github.com/palemoky/property-tycoon/internal/lobby"
	"github.com/palemoky/property-tycoon/internal/server/identity"
)

// Deps 服务器依赖
type Deps struct {
	Config   *config.Config
	Games    *lobby.Manager
	Identity *identity.Issuer
}

// Server HTTP 与 WebSocket 服务器
type Server struct {
	config   *config.Config
	games    *lobby.Manager
	identity *identity.Issuer
	router   *mux.Router
	upgrader websocket.Upgrader

	clients   map[string]*Conn
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// New 创建服务器实例
func New(deps Deps) *Server {
	cfg := deps.Config
	s := &Server{
		config:   cfg,
		games:    deps.Games,
		identity: deps.Identity,
		clients:  make(map[string]*Conn),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.RateLimit.MaxPerSecond),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	s.router = s.routes()

	log.Printf("🔒 安全配置: 请求限制=%d/s %d/min, 最大连接数=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.RateLimit.MaxPerMinute, cfg.Server.MaxConnections)
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.rateLimiter.Middleware)
	api.HandleFunc("/session", s.handleSession).Methods(http.MethodPost)
	api.HandleFunc("/games", s.handleListGames).Methods(http.MethodGet)
	api.HandleFunc("/games", s.requireAuth(s.handleCreateGame)).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/commands", s.requireAuth(s.handleCommand)).Methods(http.MethodPut)
	api.HandleFunc("/games/{id}/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/standings", s.handleStandings).Methods(http.MethodGet)
	return r
}

// Handler 返回路由，测试中配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then stops accepting work and closes
// every WebSocket connection.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		// 长轮询需要比最长等待更久的写超时
		WriteTimeout: s.config.Game.LongPollMaxDuration() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("🚀 服务器启动在 http://%s (CPU核心数: %d)", addr, runtime.NumCPU())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return s.rateLimiter.Run(ctx) })
	g.Go(func() error { s.monitorStats(ctx); return nil })
	g.Go(func() error {
		<-ctx.Done()
		s.EnterMaintenanceMode()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeClients()
		log.Println("服务器已关闭")
		return err
	})
	return g.Wait()
}
