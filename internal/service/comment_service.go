package service

import (
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

const (
	// MaxCommentRunes is the upper bound for trimmed comment content.
	MaxCommentRunes = 2000
	// MaxDisplayNameRunes is the upper bound for a trimmed display name.
	MaxDisplayNameRunes = 40
	// CommentCooldown is the minimum gap after the newest comment on any article.
	CommentCooldown = 15 * time.Second
	// AnonymousDisplayName replaces an empty display name.
	AnonymousDisplayName = "Anonymous"
)

var (
	ErrCommentHoneypot    = errors.New("comment honeypot field was filled")
	ErrCommentEmpty       = errors.New("comment content is required")
	ErrCommentTooLong     = errors.New("comment content is too long")
	ErrDisplayNameTooLong = errors.New("display name is too long")
	ErrCommentRateLimited = errors.New("comment submitted too soon after the previous one")
	ErrCommentNotFound    = errors.New("comment not found")
)

// CommentInput carries a raw comment form submission.
type CommentInput struct {
	ArticleID   uint
	DisplayName string
	Content     string
	Honeypot    string
}

// AdminComment is a comment joined with the article it belongs to.
type AdminComment struct {
	db.Comment
	Title string
	Slug  string
}

// CommentService validates, throttles and stores comments.
//
// The cooldown is global: the newest comment across all articles gates every
// submission, so one active commenter can hold off everyone else for up to
// CommentCooldown.
type CommentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCommentService creates a CommentService using the wall clock.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb, now: time.Now}
}

// WithClock replaces the clock, mainly for tests.
func (s *CommentService) WithClock(now func() time.Time) *CommentService {
	if now != nil {
		s.now = now
	}
	return s
}

// Post runs the submission checks in order (honeypot, content, name, cooldown)
// and stores an escaped, approved comment.
func (s *CommentService) Post(input CommentInput) (*db.Comment, error) {
	// whitespace counts as filled; real browsers leave the hidden field empty
	if input.Honeypot != "" {
		return nil, ErrCommentHoneypot
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if utf8.RuneCountInString(content) > MaxCommentRunes {
		return nil, ErrCommentTooLong
	}

	name := strings.TrimSpace(input.DisplayName)
	if utf8.RuneCountInString(name) > MaxDisplayNameRunes {
		return nil, ErrDisplayNameTooLong
	}
	if name == "" {
		name = AnonymousDisplayName
	}

	if input.ArticleID == 0 {
		return nil, ErrArticleNotFound
	}

	now := s.now().UTC()
	comment := db.Comment{
		ArticleID:   input.ArticleID,
		DisplayName: html.EscapeString(name),
		Content:     html.EscapeString(content),
		CreatedAt:   now,
		Approved:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var latest []db.Comment
		if err := tx.Select("created_at").Order("created_at desc").Limit(1).Find(&latest).Error; err != nil {
			return err
		}
		if len(latest) > 0 && now.Sub(latest[0].CreatedAt) < CommentCooldown {
			return ErrCommentRateLimited
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListApproved returns an article's approved comments, newest first.
func (s *CommentService) ListApproved(articleID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.Where("article_id = ? AND approved = ?", articleID, true).
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ListRecent returns the newest comments across all articles for moderation.
func (s *CommentService) ListRecent(limit int) ([]AdminComment, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []AdminComment
	if err := s.db.Table("comments c").
		Select("c.*, a.title, a.slug").
		Joins("JOIN articles a ON a.id = c.article_id").
		Order("c.created_at desc").
		Order("c.id desc").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a comment by id.
func (s *CommentService) Delete(id uint) error {
	result := s.db.Delete(&db.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
