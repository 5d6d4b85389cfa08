package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // 精简镜像中没有系统时区库

	"blogicum/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Media    MediaConfig    `mapstructure:"media"`
	Blog     BlogConfig     `mapstructure:"blog"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Mode     string `mapstructure:"mode"` // debug / release / test
	SiteName string `mapstructure:"site_name"`
	Gzip     bool   `mapstructure:"gzip"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
	Debug  bool               `mapstructure:"debug"`
}

// SessionConfig Cookie 会话配置
type SessionConfig struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
	Secure bool   `mapstructure:"secure"`
}

// MediaConfig 上传文件配置
type MediaConfig struct {
	Dir               string   `mapstructure:"dir"`
	URLPrefix         string   `mapstructure:"url_prefix"`
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// BlogConfig 业务配置
type BlogConfig struct {
	PageSize       int    `mapstructure:"page_size"`
	SeedCategories bool   `mapstructure:"seed_categories"`
	TimeZone       string `mapstructure:"time_zone"` // 表单与页面展示发布时间所用时区
	Captcha        bool   `mapstructure:"captcha"`
}

// Location 解析时区，无效时回退 UTC
func (c BlogConfig) Location() *time.Location {
	name := strings.TrimSpace(c.TimeZone)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnw("config_time_zone_invalid", "time_zone", name, "error", err)
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.site_name", "Blogicum")
	v.SetDefault("server.gzip", true)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "blogicum.log")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/blogicum.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.debug", false)
	v.SetDefault("session.name", "blogicum_session")
	v.SetDefault("session.secret", "secret_key_change_me")
	v.SetDefault("session.max_age", 14*24*3600)
	v.SetDefault("session.secure", false)
	v.SetDefault("media.dir", "./media")
	v.SetDefault("media.url_prefix", "/media")
	v.SetDefault("media.max_size", 5*1024*1024)
	v.SetDefault("media.allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})
	v.SetDefault("media.allowed_extensions", []string{".jpg", ".jpeg", ".png", ".gif", ".webp"})
	v.SetDefault("blog.page_size", 10)
	v.SetDefault("blog.seed_categories", true)
	v.SetDefault("blog.time_zone", "UTC")
	v.SetDefault("blog.captcha", true)
}

// Load 从 .env、config.yml 与环境变量加载配置
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debugw("dotenv_not_found", "fallback", "system_env")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./etc")
	v.AddConfigPath("../")
	setDefaults(v)

	// server.port -> SERVER_PORT
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed", "error", err, "fallback", "env_or_defaults")
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	return decode(v)
}

// Default 返回仅包含默认值的配置，测试与工具使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	if cfg.Blog.PageSize <= 0 {
		cfg.Blog.PageSize = 10
	}
	return &cfg, nil
}
