package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Avatar    AvatarConfig    `mapstructure:"avatar"`
	OSS       OSSConfig       `mapstructure:"oss"`
	S3        S3Config        `mapstructure:"s3"`
	Email     EmailConfig     `mapstructure:"email"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	Env       string `mapstructure:"env"`        // development / production / test
	PublicURL string `mapstructure:"public_url"` // 验证邮件里链接的前缀
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql / sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Enabled Redis 只用于限流，未配置 host 时不连接
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type AvatarConfig struct {
	Backend    string        `mapstructure:"backend"`    // local / oss / s3
	PublicDir  string        `mapstructure:"public_dir"` // 静态目录
	Folder     string        `mapstructure:"folder"`     // public_dir 下的头像目录
	TempDir    string        `mapstructure:"temp_dir"`
	TempExpire time.Duration `mapstructure:"temp_expire"` // 临时文件超过该时长由定时任务清理
	Size       int           `mapstructure:"size"`
	Fit        string        `mapstructure:"fit"`      // cover / pad
	MaxSize    int64         `mapstructure:"max_size"` // 最大文件大小（字节）
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type EmailConfig struct {
	Backend        string `mapstructure:"backend"` // smtp / sendgrid / log，为空时按 app.env 选择
	From           string `mapstructure:"from"`
	FromName       string `mapstructure:"from_name"`
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

var defaults = map[string]interface{}{
	"app.env":                 "development",
	"app.public_url":          "http://localhost:3000",
	"server.host":             "0.0.0.0",
	"server.port":             3000,
	"server.mode":             "debug",
	"database.driver":         "mysql",
	"database.host":           "127.0.0.1",
	"database.port":           3306,
	"database.username":       "root",
	"database.password":       "",
	"database.database":       "accounts",
	"database.sqlite_path":    "accounts.db",
	"database.max_idle_conns": 10,
	"database.max_open_conns": 100,
	"redis.host":              "",
	"redis.port":              6379,
	"redis.password":          "",
	"redis.db":                0,
	"redis.pool_size":         10,
	"jwt.secret":              "",
	"jwt.expire_hours":        2,
	"avatar.backend":          "local",
	"avatar.public_dir":       "public",
	"avatar.folder":           "avatars",
	"avatar.temp_dir":         "tmp",
	"avatar.temp_expire":      time.Hour,
	"avatar.size":             250,
	"avatar.fit":              "cover",
	"avatar.max_size":         5 * 1024 * 1024,
	"oss.endpoint":            "",
	"oss.access_key_id":       "",
	"oss.access_key_secret":   "",
	"oss.bucket_name":         "",
	"oss.cdn_domain":          "",
	"s3.region":               "us-east-1",
	"s3.endpoint":             "",
	"s3.access_key_id":        "",
	"s3.secret_access_key":    "",
	"s3.bucket":               "",
	"s3.public_base_url":      "",
	"s3.use_path_style":       false,
	"email.backend":           "",
	"email.from":              "no-reply@example.com",
	"email.from_name":         "Accounts",
	"email.smtp_host":         "",
	"email.smtp_port":         587,
	"email.username":          "",
	"email.password":          "",
	"email.sendgrid_api_key":  "",
	"cors.allowed_origins":    []string{"http://localhost:3000"},
	"cors.allowed_methods":    []string{"GET", "POST", "PATCH", "OPTIONS"},
	"cors.allowed_headers":    []string{"Authorization", "Content-Type"},
	"rate_limit.requests":     100,
	"rate_limit.window":       15 * time.Minute,
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	localConfigPath := filepath.Join(filepath.Dir(configPath), "config.local.yaml")
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	// 配置文件可选，只用环境变量也能启动
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
