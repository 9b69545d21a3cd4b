package service

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

// MaxViewDurationSeconds caps any reported view duration.
const MaxViewDurationSeconds = 7200

var (
	ErrViewIDRequired    = errors.New("view id is required")
	ErrViewNotFound      = errors.New("view not found")
	ErrInvalidDuration   = errors.New("duration must be a non-negative number")
	ErrArticleIDRequired = errors.New("article id is required")
)

// ClampDuration truncates seconds toward zero and bounds it to [0, MaxViewDurationSeconds].
func ClampDuration(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	if seconds >= MaxViewDurationSeconds {
		return MaxViewDurationSeconds
	}
	return int(seconds)
}

// durationLedger is the open/close pattern shared by page and article views:
// a row is inserted with a null duration and later patched by id.
type durationLedger[T any] struct {
	db *gorm.DB
}

func (l durationLedger[T]) open(record *T) error {
	return l.db.Create(record).Error
}

// close writes the clamped duration. Repeated calls overwrite the previous
// value; an id that matches no row is ErrViewNotFound.
func (l durationLedger[T]) close(viewID uint, seconds float64) (int, error) {
	if viewID == 0 {
		return 0, ErrViewIDRequired
	}
	if math.IsNaN(seconds) || seconds < 0 {
		return 0, ErrInvalidDuration
	}

	duration := ClampDuration(seconds)
	result := l.db.Model(new(T)).Where("id = ?", viewID).Update("duration_seconds", duration)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrViewNotFound
	}
	return duration, nil
}

// PageViewInput describes the context of a page visit.
type PageViewInput struct {
	Path      string
	Referrer  string
	UserAgent string
}

// TrackingService records page and article visits with their durations.
type TrackingService struct {
	db       *gorm.DB
	pages    durationLedger[db.PageView]
	articles durationLedger[db.ArticleView]
	now      func() time.Time
}

// NewTrackingService creates a TrackingService instance.
func NewTrackingService(gdb *gorm.DB) *TrackingService {
	return &TrackingService{
		db:       gdb,
		pages:    durationLedger[db.PageView]{db: gdb},
		articles: durationLedger[db.ArticleView]{db: gdb},
		now:      time.Now,
	}
}

// WithClock replaces the clock used for started_at.
func (s *TrackingService) WithClock(now func() time.Time) *TrackingService {
	if now != nil {
		s.now = now
	}
	return s
}

// StartPageView opens a page view record and returns its id.
func (s *TrackingService) StartPageView(viewerToken string, input PageViewInput) (uint, error) {
	viewerToken = strings.TrimSpace(viewerToken)
	if viewerToken == "" {
		return 0, ErrViewerTokenRequired
	}

	path := strings.TrimSpace(input.Path)
	if path == "" {
		path = "/"
	}

	view := db.PageView{
		ViewerToken: viewerToken,
		Path:        path,
		Referrer:    optionalString(input.Referrer),
		UserAgent:   optionalString(input.UserAgent),
		StartedAt:   s.now().UTC(),
	}
	if err := s.pages.open(&view); err != nil {
		return 0, err
	}
	return view.ID, nil
}

// EndPageView closes a page view and returns the stored duration.
func (s *TrackingService) EndPageView(viewID uint, seconds float64) (int, error) {
	return s.pages.close(viewID, seconds)
}

// StartArticleView opens an article view record for an existing article.
func (s *TrackingService) StartArticleView(viewerToken string, articleID uint) (uint, error) {
	viewerToken = strings.TrimSpace(viewerToken)
	if viewerToken == "" {
		return 0, ErrViewerTokenRequired
	}
	if articleID == 0 {
		return 0, ErrArticleIDRequired
	}

	var count int64
	if err := s.db.Model(&db.Article{}).Where("id = ?", articleID).Count(&count).Error; err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrArticleNotFound
	}

	view := db.ArticleView{
		ArticleID:   articleID,
		ViewerToken: viewerToken,
		StartedAt:   s.now().UTC(),
	}
	if err := s.articles.open(&view); err != nil {
		return 0, err
	}
	return view.ID, nil
}

// EndArticleView closes an article view and returns the stored duration.
func (s *TrackingService) EndArticleView(viewID uint, seconds float64) (int, error) {
	return s.articles.close(viewID, seconds)
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
