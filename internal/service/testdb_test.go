package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := db.Open(dsn, true)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return gdb
}

func seedArticle(t *testing.T, gdb *gorm.DB, title string) *db.Article {
	t.Helper()
	article, err := NewArticleService(gdb).Create(ArticleInput{
		Title:       title,
		Category:    db.CategoryQuickReads,
		ContentHTML: "<p>" + title + "</p>",
	})
	if err != nil {
		t.Fatalf("seed article %q: %v", title, err)
	}
	return article
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
