package db

import "time"

// Comment stores a reader comment. DisplayName and Content are persisted
// HTML-escaped and rendered without further escaping.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ArticleID   uint      `gorm:"index;not null" json:"article_id"`
	Article     Article   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	Approved    bool      `gorm:"default:true" json:"approved"`
}

// TableName 指定自定义表名。
func (Comment) TableName() string {
	return "comments"
}
