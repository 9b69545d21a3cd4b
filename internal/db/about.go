package db

import "time"

// AboutPage holds the single "About the Author" record.
type AboutPage struct {
	ID          uint   `gorm:"primaryKey"`
	AuthorName  string `gorm:"not null"`
	AuthorPhoto string `gorm:"not null"`
	AuthorBio   string `gorm:"type:text;not null"`
	UpdatedAt   time.Time
}

// TableName 指定自定义表名。
func (AboutPage) TableName() string {
	return "about_page"
}
