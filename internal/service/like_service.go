package service

import (
	"errors"
	"strings"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrViewerTokenRequired = errors.New("viewer token is required")

// LikeService maintains the one-like-per-viewer ledger.
type LikeService struct {
	db *gorm.DB
}

// LikeResult is the state after a toggle.
type LikeResult struct {
	Liked bool
	Count int64
}

// NewLikeService creates a LikeService instance.
func NewLikeService(gdb *gorm.DB) *LikeService {
	return &LikeService{db: gdb}
}

// Toggle removes the viewer's like if present, otherwise adds it, and returns
// a freshly counted total. A concurrent insert of the same pair is reported as
// liked rather than failing.
func (s *LikeService) Toggle(articleID uint, viewerToken string) (LikeResult, error) {
	viewerToken = strings.TrimSpace(viewerToken)
	if viewerToken == "" {
		return LikeResult{}, ErrViewerTokenRequired
	}
	if articleID == 0 {
		return LikeResult{}, ErrArticleNotFound
	}

	var result LikeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		removed := tx.Where("article_id = ? AND viewer_token = ?", articleID, viewerToken).Delete(&db.Like{})
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected == 0 {
			like := db.Like{ArticleID: articleID, ViewerToken: viewerToken}
			// 唯一索引兜底：并发插入时不报错，视为已点赞
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "article_id"}, {Name: "viewer_token"}},
				DoNothing: true,
			}).Create(&like).Error; err != nil && !db.IsDuplicateKey(err) {
				return err
			}
			result.Liked = true
		}

		return tx.Model(&db.Like{}).Where("article_id = ?", articleID).Count(&result.Count).Error
	})
	if err != nil {
		return LikeResult{}, err
	}

	return result, nil
}

// Count returns the number of likes for an article.
func (s *LikeService) Count(articleID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&db.Like{}).Where("article_id = ?", articleID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiked reports whether the viewer currently likes the article.
func (s *LikeService) HasLiked(articleID uint, viewerToken string) (bool, error) {
	if strings.TrimSpace(viewerToken) == "" {
		return false, nil
	}
	var count int64
	if err := s.db.Model(&db.Like{}).
		Where("article_id = ? AND viewer_token = ?", articleID, viewerToken).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
