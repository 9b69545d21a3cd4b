package db

import (
	"time"
)

// 固定的三个栏目
const (
	CategorySongbirdMagazine = "Songbird Magazine"
	CategoryAngstyEntries    = "Angsty Entries"
	CategoryQuickReads       = "Quick Reads"
)

// Categories lists the enumerated article categories in display order.
var Categories = []string{CategorySongbirdMagazine, CategoryAngstyEntries, CategoryQuickReads}

// IsCategory reports whether name is one of the fixed categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

const (
	// DefaultShortSummary is stored when an article is saved without a summary.
	DefaultShortSummary = "Short summary of the article will go here eventually"
	// DefaultCoverImage is the bundled placeholder cover.
	DefaultCoverImage = "cover_image.png"
)

// Article 定义了文章模型
type Article struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	AuthorName    string    `gorm:"not null" json:"author_name"`
	Category      string    `gorm:"index;not null" json:"category"`
	PublishedDate time.Time `gorm:"index;not null" json:"published_date"`
	CoverImage    string    `gorm:"not null;default:cover_image.png" json:"cover_image"`
	ContentHTML   string    `gorm:"type:text;not null" json:"content_html"`
	ShortSummary  string    `gorm:"type:text" json:"short_summary"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定自定义表名。
func (Article) TableName() string {
	return "articles"
}
