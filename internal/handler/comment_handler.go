package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/metrics"
	"github.com/songbird/internal/service"
)

// PostComment accepts the article comment form. Every outcome is a flash plus
// a 303 back to the article.
func (a *API) PostComment(c *gin.Context) {
	slug := c.Param("slug")
	article, err := a.articles.GetBySlug(slug)
	if err != nil {
		if !errors.Is(err, service.ErrArticleNotFound) {
			a.logError(c, "load article for comment", err)
		}
		redirectWithFlash(c, "/", flashError, "Article not found.")
		return
	}

	resolveViewerToken(c)
	back := articlePath(article.Slug)

	_, err = a.comments.Post(service.CommentInput{
		ArticleID:   article.ID,
		DisplayName: c.PostForm("display_name"),
		Content:     c.PostForm("content"),
		Honeypot:    c.PostForm("website"),
	})
	if err != nil {
		category, message, outcome := commentRejection(err)
		if outcome == "error" {
			a.logError(c, "post comment", err)
		}
		metrics.Comments.WithLabelValues(outcome).Inc()
		redirectWithFlash(c, back, category, message)
		return
	}

	metrics.Comments.WithLabelValues("accepted").Inc()
	redirectWithFlash(c, back, flashSuccess, "Comment posted successfully!")
}

func commentRejection(err error) (category, message, outcome string) {
	switch {
	case errors.Is(err, service.ErrCommentHoneypot):
		return flashError, "Invalid submission.", "honeypot"
	case errors.Is(err, service.ErrCommentEmpty):
		return flashError, "Comment content is required.", "empty"
	case errors.Is(err, service.ErrCommentTooLong):
		return flashError, "Comment is too long. Maximum 2000 characters.", "too_long"
	case errors.Is(err, service.ErrDisplayNameTooLong):
		return flashError, "Name is too long. Maximum 40 characters.", "name_too_long"
	case errors.Is(err, service.ErrCommentRateLimited):
		return flashError, "Please wait a moment before posting another comment.", "rate_limited"
	default:
		return flashError, "Could not post your comment. Please try again.", "error"
	}
}
