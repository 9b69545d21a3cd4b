package db

import "time"

// Like 记录访客对文章的点赞，article_id + viewer_token 唯一。
type Like struct {
	ID          uint   `gorm:"primaryKey"`
	ArticleID   uint   `gorm:"not null;index;uniqueIndex:idx_like_pair"`
	ViewerToken string `gorm:"size:64;not null;index;uniqueIndex:idx_like_pair"`
	CreatedAt   time.Time
}

// TableName 指定自定义表名。
func (Like) TableName() string {
	return "likes"
}
