package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string     `yaml:"listen_addr"`
	Port          string     `yaml:"port"`
	DatabasePath  string     `yaml:"database_path"`
	SessionSecret string     `yaml:"session_secret"`
	GinMode       string     `yaml:"gin_mode"`
	UploadDir     string     `yaml:"upload_dir"`
	UploadURLPath string     `yaml:"upload_url_path"`
	TemplateDir   string     `yaml:"template_dir"`
	AdminPassword string     `yaml:"admin_password"`
	LogLevel      string     `yaml:"log_level"`
	Mail          MailConfig `yaml:"mail"`
}

// MailConfig holds SMTP settings supplied through the environment or config file.
// When Username and Password are both set they take precedence over the
// settings stored in the database.
type MailConfig struct {
	Server        string `yaml:"server"`
	Port          int    `yaml:"port"`
	UseTLS        bool   `yaml:"use_tls"`
	UseSSL        bool   `yaml:"use_ssl"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	DefaultSender string `yaml:"default_sender"`
}

// Configured reports whether credentials are present.
func (m MailConfig) Configured() bool {
	return strings.TrimSpace(m.Username) != "" && strings.TrimSpace(m.Password) != ""
}

// ConfigFileEnv names the environment variable pointing at an optional YAML file.
const ConfigFileEnv = "SONGBIRD_CONFIG"

// Load 从可选的 YAML 文件与环境变量读取应用配置，并为缺失项提供默认值。
// 环境变量优先于文件内容。
func Load() (AppConfig, error) {
	cfg := baseConfig()

	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		cfg = fileCfg
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadFile parses a YAML config file without applying defaults.
func LoadFile(path string) (AppConfig, error) {
	cfg := baseConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s not found", path)
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// baseConfig seeds values whose zero value is not the default.
func baseConfig() AppConfig {
	return AppConfig{Mail: MailConfig{UseTLS: true}}
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.UploadURLPath, "UPLOAD_URL_PATH")
	setString(&cfg.TemplateDir, "TEMPLATE_DIR")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.Mail.Server, "MAIL_SERVER")
	setString(&cfg.Mail.Username, "MAIL_USERNAME")
	setString(&cfg.Mail.Password, "MAIL_PASSWORD")
	setString(&cfg.Mail.DefaultSender, "MAIL_DEFAULT_SENDER")
	if port, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAIL_PORT"))); err == nil && port > 0 {
		cfg.Mail.Port = port
	}
	setBool(&cfg.Mail.UseTLS, "MAIL_USE_TLS")
	setBool(&cfg.Mail.UseSSL, "MAIL_USE_SSL")
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "blog.db"
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "songbird-dev-secret"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "web/static/uploads"
	}
	if cfg.UploadURLPath == "" {
		cfg.UploadURLPath = "/static/uploads"
	}
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "web/template"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Mail.Server == "" {
		cfg.Mail.Server = "smtp.gmail.com"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
}

func setString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}

func setBool(dst *bool, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if parsed, err := strconv.ParseBool(raw); err == nil {
		*dst = parsed
	}
}
