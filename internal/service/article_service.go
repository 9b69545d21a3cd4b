package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound        = errors.New("article not found")
	ErrArticleTitleRequired   = errors.New("article title is required")
	ErrArticleCategoryInvalid = errors.New("article category is invalid")
	ErrArticleContentRequired = errors.New("article content is required")
)

// maxSlugAttempts bounds retries when a concurrent writer claims the same slug.
const maxSlugAttempts = 5

// ArticleService wraps article related database operations.
type ArticleService struct {
	db *gorm.DB
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title         string
	AuthorName    string
	Category      string
	PublishedDate time.Time
	CoverImage    string
	ContentHTML   string
	ShortSummary  string
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

// GenerateSlug lowercases the title, drops everything except letters, digits,
// spaces and hyphens, then joins the remaining words with hyphens.
func GenerateSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")
	if slug == "" {
		return "article"
	}
	return slug
}

// Get fetches an article by id.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetBySlug fetches an article by its slug.
func (s *ArticleService) GetBySlug(slug string) (*db.Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrArticleNotFound
	}

	var article db.Article
	if err := s.db.Where("slug = ?", slug).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Exists reports whether an article with the id is stored.
func (s *ArticleService) Exists(id uint) (bool, error) {
	var count int64
	if err := s.db.Model(&db.Article{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListRecent returns the newest articles by published date. limit <= 0 returns all.
func (s *ArticleService) ListRecent(limit int) ([]db.Article, error) {
	query := s.db.Order("published_date desc").Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var articles []db.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListByCategory returns articles in a category, newest first.
func (s *ArticleService) ListByCategory(category string) ([]db.Article, error) {
	if !db.IsCategory(category) {
		return nil, ErrArticleCategoryInvalid
	}

	var articles []db.Article
	if err := s.db.Where("category = ?", category).
		Order("published_date desc").
		Order("id desc").
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Count returns the number of stored articles.
func (s *ArticleService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&db.Article{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a new article with a unique slug derived from its title.
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	article, err := buildArticle(input)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.uniqueSlug(GenerateSlug(article.Title), 0)
		if err != nil {
			return nil, err
		}
		article.Slug = slug
		article.ID = 0

		err = s.db.Create(&article).Error
		if err == nil {
			return &article, nil
		}
		if !db.IsDuplicateKey(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("allocate slug for %q: %w", article.Title, gorm.ErrDuplicatedKey)
}

// Update applies input to an existing article. The slug is re-derived from the
// title, ignoring the article's own current slug.
func (s *ArticleService) Update(id uint, input ArticleInput) (*db.Article, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updated, err := buildArticle(input)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CoverImage) == "" {
		updated.CoverImage = existing.CoverImage
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := s.uniqueSlug(GenerateSlug(updated.Title), existing.ID)
		if err != nil {
			return nil, err
		}

		existing.Title = updated.Title
		existing.Slug = slug
		existing.AuthorName = updated.AuthorName
		existing.Category = updated.Category
		existing.PublishedDate = updated.PublishedDate
		existing.CoverImage = updated.CoverImage
		existing.ContentHTML = updated.ContentHTML
		existing.ShortSummary = updated.ShortSummary

		err = s.db.Save(existing).Error
		if err == nil {
			return existing, nil
		}
		if !db.IsDuplicateKey(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("allocate slug for %q: %w", updated.Title, gorm.ErrDuplicatedKey)
}

// uniqueSlug appends -1, -2, ... to base until no other article owns it.
func (s *ArticleService) uniqueSlug(base string, excludeID uint) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		query := s.db.Model(&db.Article{}).Where("slug = ?", slug)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// Preview builds an unsaved article for rendering.
func Preview(input ArticleInput) db.Article {
	article := db.Article{
		Slug:          "preview",
		Title:         strings.TrimSpace(input.Title),
		AuthorName:    strings.TrimSpace(input.AuthorName),
		Category:      strings.TrimSpace(input.Category),
		PublishedDate: input.PublishedDate,
		CoverImage:    strings.TrimSpace(input.CoverImage),
		ContentHTML:   input.ContentHTML,
		ShortSummary:  strings.TrimSpace(input.ShortSummary),
	}
	if article.Title == "" {
		article.Title = "Untitled Article"
	}
	if article.AuthorName == "" {
		article.AuthorName = "Author"
	}
	if article.Category == "" {
		article.Category = "Uncategorized"
	}
	if article.PublishedDate.IsZero() {
		article.PublishedDate = today()
	}
	if article.CoverImage == "" {
		article.CoverImage = db.DefaultCoverImage
	}
	if article.ShortSummary == "" {
		article.ShortSummary = db.DefaultShortSummary
	}
	return article
}

func buildArticle(input ArticleInput) (db.Article, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return db.Article{}, ErrArticleTitleRequired
	}

	category := strings.TrimSpace(input.Category)
	if !db.IsCategory(category) {
		return db.Article{}, ErrArticleCategoryInvalid
	}

	if strings.TrimSpace(input.ContentHTML) == "" {
		return db.Article{}, ErrArticleContentRequired
	}

	article := db.Article{
		Title:         title,
		AuthorName:    strings.TrimSpace(input.AuthorName),
		Category:      category,
		PublishedDate: input.PublishedDate,
		CoverImage:    strings.TrimSpace(input.CoverImage),
		ContentHTML:   input.ContentHTML,
		ShortSummary:  strings.TrimSpace(input.ShortSummary),
	}

	if article.AuthorName == "" {
		article.AuthorName = "Kylee"
	}
	if article.PublishedDate.IsZero() {
		article.PublishedDate = today()
	}
	if article.CoverImage == "" {
		article.CoverImage = db.DefaultCoverImage
	}
	if article.ShortSummary == "" {
		article.ShortSummary = db.DefaultShortSummary
	}

	return article, nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
