package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/service"
	"go.uber.org/zap"
)

const adminCommentLimit = 100

// ShowComments lists the latest comments across all articles.
func (a *API) ShowComments(c *gin.Context) {
	comments, err := a.comments.ListRecent(adminCommentLimit)
	if err != nil {
		a.logError(c, "list comments", err)
	}

	a.renderHTML(c, http.StatusOK, "admin_comments.html", gin.H{
		"title":    "Comments",
		"comments": comments,
	})
}

// DeleteComment removes a comment and returns to the moderation list.
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		redirectWithFlash(c, "/admin/comments", flashError, "Comment not found.")
		return
	}

	if err := a.comments.Delete(id); err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			redirectWithFlash(c, "/admin/comments", flashError, "Comment not found.")
			return
		}
		a.logError(c, "delete comment", err)
		redirectWithFlash(c, "/admin/comments", flashError, "Could not delete the comment.")
		return
	}

	a.logger.Info("comment deleted", zap.Uint("id", id))
	redirectWithFlash(c, "/admin/comments", flashSuccess, "Comment deleted successfully.")
}

// ShowSubscribers lists the email list, newest first.
func (a *API) ShowSubscribers(c *gin.Context) {
	subscribers, err := a.subscribers.List()
	if err != nil {
		a.logError(c, "list subscribers", err)
	}

	a.renderHTML(c, http.StatusOK, "admin_subscribers.html", gin.H{
		"title":       "Subscribers",
		"subscribers": subscribers,
	})
}
