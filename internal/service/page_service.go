package service

import (
	"errors"
	"strings"
	"time"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

var ErrAboutAuthorRequired = errors.New("author name is required")

const (
	DefaultAuthorName = "Kylee"
	DefaultAuthorBio  = "Welcome to my blog! I'm a twenty-something journalist passionate about storytelling, writing, and sharing experiences through words.\n\n" +
		"This space is where I explore topics that matter to me, from in-depth features to quick thoughts and everything in between.\n\n" +
		"Thank you for joining me on this journey."
)

// AboutInput carries the editable fields of the about page. An empty photo
// keeps the current one.
type AboutInput struct {
	AuthorName  string
	AuthorPhoto string
	AuthorBio   string
}

// PageService provides access to the About the Author page.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// DefaultAboutPage is shown until the author saves their own page.
func DefaultAboutPage() db.AboutPage {
	return db.AboutPage{
		AuthorName:  DefaultAuthorName,
		AuthorPhoto: db.DefaultCoverImage,
		AuthorBio:   DefaultAuthorBio,
	}
}

// GetAbout returns the stored about page, or the defaults when none exists.
func (s *PageService) GetAbout() (db.AboutPage, error) {
	var page db.AboutPage
	if err := s.db.Order("id ASC").First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultAboutPage(), nil
		}
		return db.AboutPage{}, err
	}
	return page, nil
}

// SaveAbout creates or updates the single about page record.
func (s *PageService) SaveAbout(input AboutInput) (*db.AboutPage, error) {
	name := strings.TrimSpace(input.AuthorName)
	if name == "" {
		return nil, ErrAboutAuthorRequired
	}

	var page db.AboutPage
	err := s.db.Order("id ASC").First(&page).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		page = DefaultAboutPage()
	}

	page.AuthorName = name
	page.AuthorBio = strings.TrimSpace(input.AuthorBio)
	if photo := strings.TrimSpace(input.AuthorPhoto); photo != "" {
		page.AuthorPhoto = photo
	}
	if page.AuthorPhoto == "" {
		page.AuthorPhoto = db.DefaultCoverImage
	}
	page.UpdatedAt = time.Now().UTC()

	if err := s.db.Save(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}
