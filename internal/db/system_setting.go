package db

import "gorm.io/gorm"

// SystemSetting 存储后台可配置的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

// 邮件发送相关的配置项
const (
	SettingKeyMailServer        = "mail_server"
	SettingKeyMailPort          = "mail_port"
	SettingKeyMailUseTLS        = "mail_use_tls"
	SettingKeyMailUseSSL        = "mail_use_ssl"
	SettingKeyMailUsername      = "mail_username"
	SettingKeyMailPassword      = "mail_password"
	SettingKeyMailDefaultSender = "mail_default_sender"
)
