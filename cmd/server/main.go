package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/property-tycoon/internal/config"
	"github.com/palemoky/property-tycoon/internal/game/board"
	"github.com/palemoky/property-tycoon/internal/game/engine"
	"github.com/palemoky/property-tycoon/internal/lobby"
	"github.com/palemoky/property-tycoon/internal/server"
	"github.com/palemoky/property-tycoon/internal/server/identity"
	"github.com/palemoky/property-tycoon/internal/server/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("服务器异常退出: %v", err)
	}
	log.Println("👋 服务器已关闭")
}

// loadConfig 读取配置文件，文件不存在时使用默认配置加环境变量
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	log.Printf("配置文件 %s 不存在，使用默认配置", path)
	cfg = config.Default()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config) error {
	store, standings, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("关闭存储失败: %v", err)
		}
	}()

	setup, err := gameSetup(cfg)
	if err != nil {
		return err
	}

	secret := cfg.Security.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Println("⚠️ 未配置 jwt_secret，已生成临时密钥，重启后旧令牌失效")
	}
	issuer, err := identity.NewIssuer(secret, cfg.Security.TokenTTLDuration())
	if err != nil {
		return err
	}

	games := lobby.NewManager(lobby.Options{
		Store:       store,
		Standings:   standings,
		Setup:       setup,
		IdleTimeout: cfg.Game.GameTimeoutDuration(),
		MaxWait:     cfg.Game.LongPollMaxDuration(),
		LogEvents:   cfg.Game.LogEvents,
	})
	restored, err := games.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore games: %w", err)
	}
	log.Printf("📦 已从 %s 恢复 %d 局游戏", cfg.Storage.Driver, restored)

	srv := server.New(server.Deps{Config: cfg, Games: games, Identity: issuer})

	log.Println("🎲 地产大亨服务器启动中...")
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return games.Run(ctx) })
	return g.Wait()
}

// openStorage 按配置选择事件日志与排名存储
func openStorage(ctx context.Context, cfg *config.Config) (storage.EventStore, storage.Standings, error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		log.Printf("✅ Redis 连接成功: %s", cfg.Redis.Addr)
		return storage.NewRedisStore(client), storage.NewRedisStandings(client), nil

	case config.DriverSQLite:
		store, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("✅ SQLite 已打开: %s", cfg.Storage.SQLitePath)
		return store, storage.NewMemoryStandings(), nil

	default:
		log.Println("⚠️ 使用内存存储，重启后游戏数据丢失")
		return storage.NewMemoryStore(), storage.NewMemoryStandings(), nil
	}
}

// gameSetup 加载棋盘，未配置时使用经典棋盘
func gameSetup(cfg *config.Config) (engine.Setup, error) {
	b := board.Classic()
	if path := cfg.Game.BoardFile; path != "" {
		loaded, err := board.LoadFile(path)
		if err != nil {
			return engine.Setup{}, fmt.Errorf("load board: %w", err)
		}
		b = loaded
		log.Printf("🗺️ 已加载棋盘 %s，共 %d 格", path, b.Len())
	}
	return engine.Setup{Board: b, Economy: cfg.Game.Economy()}, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
