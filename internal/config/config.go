package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Proxmox  ProxmoxConfig  `mapstructure:"proxmox"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// BackendConfig Kamino 后端 API 配置
type BackendConfig struct {
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`   // 服务间调用令牌（可选）
	Timeout int    `mapstructure:"timeout"` // 请求超时（秒）
}

// ProxmoxConfig Proxmox 控制台配置
// 控制台跳转链接统一从这里读取，不允许在代码里硬编码主机地址
type ProxmoxConfig struct {
	ConsoleURL string `mapstructure:"console_url"`
}

// DatabaseConfig 数据库配置（操作审计日志存储）
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Charset  string `mapstructure:"charset"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpireTime int    `mapstructure:"expire_time"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxSizeMB int64 `mapstructure:"max_size_mb"`
}

// Load 加载配置（纯环境变量模式）
func Load() *Config {
	// 设置默认值
	setDefaults()

	// 先加载 .env 到系统环境变量
	if err := godotenv.Load(); err != nil {
		log.Printf("未找到 .env 文件，使用系统环境变量: %v", err)
	}

	// 读取环境变量
	viper.AutomaticEnv()

	// 绑定服务器环境变量
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.mode", "SERVER_MODE")

	// 绑定后端 API 环境变量
	_ = viper.BindEnv("backend.url", "KAMINO_BACKEND_URL")
	_ = viper.BindEnv("backend.token", "KAMINO_BACKEND_TOKEN")
	_ = viper.BindEnv("backend.timeout", "KAMINO_BACKEND_TIMEOUT")

	// 绑定 Proxmox 环境变量
	_ = viper.BindEnv("proxmox.console_url", "PROXMOX_CONSOLE_URL")

	// 绑定数据库环境变量
	_ = viper.BindEnv("database.driver", "DB_DRIVER")
	_ = viper.BindEnv("database.dsn", "DB_DSN")
	_ = viper.BindEnv("database.host", "DB_HOST")
	_ = viper.BindEnv("database.port", "DB_PORT")
	_ = viper.BindEnv("database.username", "DB_USERNAME")
	_ = viper.BindEnv("database.password", "DB_PASSWORD")
	_ = viper.BindEnv("database.database", "DB_DATABASE")
	_ = viper.BindEnv("database.charset", "DB_CHARSET")

	// 绑定 JWT 环境变量
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expire_time", "JWT_EXPIRE_TIME")

	// 绑定日志环境变量
	_ = viper.BindEnv("log.level", "LOG_LEVEL")

	// 绑定上传环境变量
	_ = viper.BindEnv("upload.max_size_mb", "UPLOAD_MAX_SIZE_MB")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("配置解析失败: %v", err)
	}

	return &config
}

// setDefaults 设置默认配置值
func setDefaults() {
	// 服务器默认配置
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// 后端默认配置
	viper.SetDefault("backend.url", "http://localhost:8000")
	viper.SetDefault("backend.token", "")
	viper.SetDefault("backend.timeout", 30)

	// Proxmox 默认配置
	viper.SetDefault("proxmox.console_url", "https://proxmox.local:8006")

	// 数据库默认配置
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./data/kamino-portal.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "kamino_portal")
	viper.SetDefault("database.charset", "utf8mb4")

	// JWT默认配置
	viper.SetDefault("jwt.secret", "kamino-portal-secret")
	viper.SetDefault("jwt.expire_time", 24) // 24小时

	// 日志默认配置
	viper.SetDefault("log.level", "info")

	// 上传默认配置（模板封面图最大 10MB）
	viper.SetDefault("upload.max_size_mb", 10)
}
