package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"

	"user-resource-service/internal/feature/user"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttlSec"`
}

type DB struct {
	Driver             string // memory / postgres / mysql
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Limits 入口限流 / 并发 / 请求体 / 超时
type Limits struct {
	RPS           float64 `mapstructure:"rps"`
	Burst         int     `mapstructure:"burst"`
	PerIP         bool    `mapstructure:"perIP"` // 按客户端 IP 分别限速
	PerIPIdleSec  int     `mapstructure:"perIPIdleSec"`
	MaxConcurrent int64   `mapstructure:"maxConcurrent"`
	MaxBodyBytes  int64   `mapstructure:"maxBodyBytes"`
	TimeoutSec    int     `mapstructure:"timeoutSec"`
}

type Users struct {
	Username user.FieldLimits   `mapstructure:"username"`
	Password user.FieldLimits   `mapstructure:"password"`
	Seed     []user.Credentials `mapstructure:"seed"`
}

func (u Users) Limits() user.Limits {
	return user.Limits{Username: u.Username, Password: u.Password}
}

type Config struct {
	App    App
	Log    Log
	DB     DB
	Redis  Redis  `mapstructure:"redis"`
	Limits Limits `mapstructure:"limits"`
	Users  Users  `mapstructure:"users"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-resource-service")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.ttlSec", 60)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIP", false)
	v.SetDefault("limits.perIPIdleSec", 600)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)

	v.SetDefault("users.username.minlength", 3)
	v.SetDefault("users.username.maxlength", 30)
	v.SetDefault("users.password.minlength", 6)
	v.SetDefault("users.password.maxlength", 64)
}

// Read 读取 yaml + APP_ 前缀环境变量，并校验用户字段长度限制
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Users.Limits().Check(); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	switch c.DB.Driver {
	case "memory", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("db.driver %q is not supported", c.DB.Driver)
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
