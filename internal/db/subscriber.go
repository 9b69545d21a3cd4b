package db

import "time"

// Subscriber is an email list entry. Email is stored lowercased.
type Subscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      *string   `gorm:"size:255" json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定自定义表名。
func (Subscriber) TableName() string {
	return "subscribers"
}
