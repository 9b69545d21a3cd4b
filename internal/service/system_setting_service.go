package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/songbird/internal/config"
	"github.com/songbird/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MailSettings 描述发送订阅邮件所需的 SMTP 配置。
type MailSettings struct {
	Server        string
	Port          int
	UseTLS        bool
	UseSSL        bool
	Username      string
	Password      string
	DefaultSender string
}

// Configured reports whether credentials are present.
func (m MailSettings) Configured() bool {
	return strings.TrimSpace(m.Username) != "" && strings.TrimSpace(m.Password) != ""
}

// Sender returns the From address, falling back to the username.
func (m MailSettings) Sender() string {
	if sender := strings.TrimSpace(m.DefaultSender); sender != "" {
		return sender
	}
	return strings.TrimSpace(m.Username)
}

// DefaultMailSettings mirrors the stock Gmail submission settings.
func DefaultMailSettings() MailSettings {
	return MailSettings{Server: "smtp.gmail.com", Port: 587, UseTLS: true}
}

// SystemSettingService 提供邮件配置的读取与更新能力。环境变量中的凭据优先于数据库。
type SystemSettingService struct {
	db  *gorm.DB
	env config.MailConfig
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, env config.MailConfig) *SystemSettingService {
	return &SystemSettingService{db: gdb, env: env}
}

var mailSettingKeys = []string{
	db.SettingKeyMailServer,
	db.SettingKeyMailPort,
	db.SettingKeyMailUseTLS,
	db.SettingKeyMailUseSSL,
	db.SettingKeyMailUsername,
	db.SettingKeyMailPassword,
	db.SettingKeyMailDefaultSender,
}

// GetMailSettings 读取数据库中保存的邮件配置，如未设置将返回默认值。
func (s *SystemSettingService) GetMailSettings() (MailSettings, error) {
	result := DefaultMailSettings()

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", mailSettingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load mail settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		switch record.Key {
		case db.SettingKeyMailServer:
			if value != "" {
				result.Server = value
			}
		case db.SettingKeyMailPort:
			if port, err := strconv.Atoi(value); err == nil && port > 0 {
				result.Port = port
			}
		case db.SettingKeyMailUseTLS:
			result.UseTLS = value == "1"
		case db.SettingKeyMailUseSSL:
			result.UseSSL = value == "1"
		case db.SettingKeyMailUsername:
			result.Username = value
		case db.SettingKeyMailPassword:
			result.Password = record.Value
		case db.SettingKeyMailDefaultSender:
			result.DefaultSender = value
		}
	}

	return result, nil
}

// EffectiveMailSettings returns the environment settings when they carry
// credentials, otherwise the stored ones.
func (s *SystemSettingService) EffectiveMailSettings() (MailSettings, error) {
	if s.env.Configured() {
		return MailSettings{
			Server:        s.env.Server,
			Port:          s.env.Port,
			UseTLS:        s.env.UseTLS,
			UseSSL:        s.env.UseSSL,
			Username:      s.env.Username,
			Password:      s.env.Password,
			DefaultSender: s.env.DefaultSender,
		}, nil
	}
	return s.GetMailSettings()
}

// UpdateMailSettings 保存邮件配置，服务器与端口为空时回退默认值。
func (s *SystemSettingService) UpdateMailSettings(input MailSettings) (MailSettings, error) {
	sanitized := MailSettings{
		Server:        strings.TrimSpace(input.Server),
		Port:          input.Port,
		UseTLS:        input.UseTLS,
		UseSSL:        input.UseSSL,
		Username:      strings.TrimSpace(input.Username),
		Password:      input.Password,
		DefaultSender: strings.TrimSpace(input.DefaultSender),
	}
	if sanitized.Server == "" {
		sanitized.Server = DefaultMailSettings().Server
	}
	if sanitized.Port <= 0 {
		sanitized.Port = DefaultMailSettings().Port
	}

	values := map[string]string{
		db.SettingKeyMailServer:        sanitized.Server,
		db.SettingKeyMailPort:          strconv.Itoa(sanitized.Port),
		db.SettingKeyMailUseTLS:        boolFlag(sanitized.UseTLS),
		db.SettingKeyMailUseSSL:        boolFlag(sanitized.UseSSL),
		db.SettingKeyMailUsername:      sanitized.Username,
		db.SettingKeyMailPassword:      sanitized.Password,
		db.SettingKeyMailDefaultSender: sanitized.DefaultSender,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range mailSettingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return MailSettings{}, fmt.Errorf("update mail settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
