package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/property-tycoon/internal/game/economy"
)

// EnvPrefix 环境变量前缀，如 PT_SERVER_PORT
const EnvPrefix = "PT_"

// 存储驱动
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 1780
	defaultMaxConnections = 1000
	defaultRedisAddr      = "localhost:6379"
	defaultSQLitePath     = "property-tycoon.db"
	defaultLongPollMax    = 30
	defaultPageLimit      = 100
	defaultGameTimeout    = 120
	defaultTokenTTL       = 24
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Game     GameConfig     `yaml:"game" envPrefix:"GAME_"`
	Security SecurityConfig `yaml:"security" envPrefix:"SECURITY_"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host" env:"HOST"`
	Port           int    `yaml:"port" env:"PORT"`
	MaxConnections int    `yaml:"max_connections" env:"MAX_CONNECTIONS"` // 最大 WebSocket 连接数
}

// StorageConfig 事件日志存储
type StorageConfig struct {
	Driver     string `yaml:"driver" env:"DRIVER"` // memory | redis | sqlite
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// GameConfig 游戏配置
type GameConfig struct {
	BoardFile       string  `yaml:"board_file" env:"BOARD_FILE"` // 为空时使用经典棋盘
	InitialEconomy  int     `yaml:"initial_economy" env:"INITIAL_ECONOMY"`
	InitialMoney    int     `yaml:"initial_money" env:"INITIAL_MONEY"`
	FixedStartMoney int     `yaml:"fixed_start_money" env:"FIXED_START_MONEY"`
	ReturnRate      float64 `yaml:"return_rate" env:"RETURN_RATE"`
	InterestRate    float64 `yaml:"interest_rate" env:"INTEREST_RATE"`
	LongPollMax     int     `yaml:"long_poll_max" env:"LONG_POLL_MAX"` // 长轮询最长等待（秒）
	PageLimit       int     `yaml:"page_limit" env:"PAGE_LIMIT"`       // 单次最多返回事件数
	LogEvents       bool    `yaml:"log_events" env:"LOG_EVENTS"`
	GameTimeout     int     `yaml:"game_timeout" env:"GAME_TIMEOUT"` // 空闲游戏回收（分钟）
}

// LongPollMaxDuration 返回长轮询最长等待
func (c *GameConfig) LongPollMaxDuration() time.Duration {
	return time.Duration(c.LongPollMax) * time.Second
}

// GameTimeoutDuration 返回空闲游戏回收时长
func (c *GameConfig) GameTimeoutDuration() time.Duration {
	return time.Duration(c.GameTimeout) * time.Minute
}

// Economy 返回新游戏的经济参数
func (c *GameConfig) Economy() economy.Params {
	return economy.Params{
		InitialEconomy:  c.InitialEconomy,
		InitialMoney:    c.InitialMoney,
		FixedStartMoney: c.FixedStartMoney,
		ReturnRate:      c.ReturnRate,
		InterestRate:    c.InterestRate,
	}
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWTSecret      string          `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL       int             `yaml:"token_ttl" env:"TOKEN_TTL"` // 令牌有效期（小时）
	AllowedOrigins []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// TokenTTLDuration 返回令牌有效期
func (c *SecurityConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Hour
}

// RateLimitConfig 每个 IP 的请求限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second" env:"MAX_PER_SECOND"`
	MaxPerMinute int `yaml:"max_per_minute" env:"MAX_PER_MINUTE"`
	BanDuration  int `yaml:"ban_duration" env:"BAN_DURATION"` // 封禁时长（秒）
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// Load 加载配置文件，未填写的字段取默认值，最后应用环境变量
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 用 PT_ 前缀的环境变量覆盖配置
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if err := c.Game.Economy().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	eco := economy.Default()
	return &Config{
		Server: ServerConfig{
			Host:           defaultHost,
			Port:           defaultPort,
			MaxConnections: defaultMaxConnections,
		},
		Storage: StorageConfig{
			Driver:     DriverMemory,
			SQLitePath: defaultSQLitePath,
		},
		Redis: RedisConfig{
			Addr: defaultRedisAddr,
		},
		Game: GameConfig{
			InitialEconomy:  eco.InitialEconomy,
			InitialMoney:    eco.InitialMoney,
			FixedStartMoney: eco.FixedStartMoney,
			ReturnRate:      eco.ReturnRate,
			InterestRate:    eco.InterestRate,
			LongPollMax:     defaultLongPollMax,
			PageLimit:       defaultPageLimit,
			GameTimeout:     defaultGameTimeout,
		},
		Security: SecurityConfig{
			TokenTTL:       defaultTokenTTL,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				MaxPerSecond: 20,
				MaxPerMinute: 600,
				BanDuration:  60,
			},
		},
	}
}
