package db

import "time"

// PageView 记录一次页面访问。DurationSeconds 为空表示会话尚未结束。
type PageView struct {
	ID              uint   `gorm:"primaryKey"`
	ViewerToken     string `gorm:"size:64;not null;index"`
	Path            string `gorm:"not null;index"`
	Referrer        *string
	UserAgent       *string
	StartedAt       time.Time `gorm:"not null;index"`
	DurationSeconds *int
}

// TableName 指定自定义表名。
func (PageView) TableName() string {
	return "page_views"
}

// ArticleView 记录一次文章阅读，语义同 PageView。
type ArticleView struct {
	ID              uint      `gorm:"primaryKey"`
	ArticleID       uint      `gorm:"not null;index"`
	ViewerToken     string    `gorm:"size:64;not null;index"`
	StartedAt       time.Time `gorm:"not null;index"`
	DurationSeconds *int
}

// TableName 指定自定义表名。
func (ArticleView) TableName() string {
	return "article_views"
}
