package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/db"
	"github.com/songbird/internal/service"
	"go.uber.org/zap"
)

const publishedDateLayout = "2006-01-02"

// ShowNewArticle renders the empty article editor.
func (a *API) ShowNewArticle(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "admin_new.html", gin.H{
		"title":         "New Article",
		"categoryNames": db.Categories,
		"today":         time.Now().Format(publishedDateLayout),
	})
}

// CreateArticle saves a new article and optionally emails subscribers.
func (a *API) CreateArticle(c *gin.Context) {
	input, err := a.articleInputFromForm(c)
	if err != nil {
		a.rerenderArticleForm(c, "admin_new.html", nil, err)
		return
	}

	article, err := a.articles.Create(input)
	if err != nil {
		a.rerenderArticleForm(c, "admin_new.html", nil, err)
		return
	}

	a.logger.Info("article created", zap.Uint("id", article.ID), zap.String("slug", article.Slug))
	a.finishArticleSave(c, article, "created", "New Article: ")
}

// PreviewArticle renders the submitted form as an article without saving it.
func (a *API) PreviewArticle(c *gin.Context) {
	// an unparsable date falls back to today in the preview
	input, _ := a.articleInputFromForm(c)
	a.renderArticle(c, service.Preview(input), 0, false, nil, true)
}

// ShowEditArticle renders the editor for an existing article.
func (a *API) ShowEditArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		redirectWithFlash(c, "/admin", flashError, "Article not found.")
		return
	}

	article, err := a.articles.Get(id)
	if err != nil {
		if !errors.Is(err, service.ErrArticleNotFound) {
			a.logError(c, "load article for edit", err)
		}
		redirectWithFlash(c, "/admin", flashError, "Article not found.")
		return
	}

	a.renderHTML(c, http.StatusOK, "admin_edit.html", gin.H{
		"title":         "Edit Article",
		"article":       article,
		"categoryNames": db.Categories,
	})
}

// UpdateArticle applies the edit form and optionally emails subscribers.
func (a *API) UpdateArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		redirectWithFlash(c, "/admin", flashError, "Article not found.")
		return
	}

	existing, err := a.articles.Get(id)
	if err != nil {
		if !errors.Is(err, service.ErrArticleNotFound) {
			a.logError(c, "load article for update", err)
		}
		redirectWithFlash(c, "/admin", flashError, "Article not found.")
		return
	}

	input, err := a.articleInputFromForm(c)
	if err != nil {
		a.rerenderArticleForm(c, "admin_edit.html", existing, err)
		return
	}

	article, err := a.articles.Update(id, input)
	if err != nil {
		a.rerenderArticleForm(c, "admin_edit.html", existing, err)
		return
	}

	a.logger.Info("article updated", zap.Uint("id", article.ID), zap.String("slug", article.Slug))
	a.finishArticleSave(c, article, "updated", "Updated Article: ")
}

func (a *API) articleInputFromForm(c *gin.Context) (service.ArticleInput, error) {
	input := service.ArticleInput{
		Title:        c.PostForm("title"),
		AuthorName:   c.PostForm("author_name"),
		Category:     c.PostForm("category"),
		ContentHTML:  c.PostForm("content_html"),
		ShortSummary: c.PostForm("short_summary"),
	}

	if raw := strings.TrimSpace(c.PostForm("published_date")); raw != "" {
		published, err := time.Parse(publishedDateLayout, raw)
		if err != nil {
			return input, errInvalidPublishedDate
		}
		input.PublishedDate = published
	}

	if header, err := c.FormFile("cover_image"); err == nil && header.Filename != "" {
		stored, err := a.uploads.Save(header)
		if err != nil {
			// an unusable cover keeps the current or default image
			a.logger.Warn("cover upload rejected", zap.Error(err), zap.String("filename", header.Filename))
			return input, nil
		}
		input.CoverImage = stored.Filename
	}

	return input, nil
}

var errInvalidPublishedDate = errors.New("published date must be YYYY-MM-DD")

func (a *API) rerenderArticleForm(c *gin.Context, template string, article *db.Article, err error) {
	status := http.StatusBadRequest
	message := articleErrorMessage(err)
	if message == "" {
		status = http.StatusInternalServerError
		message = "Could not save the article. Please try again."
		a.logError(c, "save article", err)
	}
	addFlash(c, flashError, message)

	payload := gin.H{
		"title":         "Edit Article",
		"categoryNames": db.Categories,
		"form": gin.H{
			"title":          c.PostForm("title"),
			"author_name":    c.PostForm("author_name"),
			"category":       c.PostForm("category"),
			"published_date": c.PostForm("published_date"),
			"content_html":   c.PostForm("content_html"),
			"short_summary":  c.PostForm("short_summary"),
		},
	}
	if article != nil {
		payload["article"] = article
	} else {
		payload["title"] = "New Article"
		payload["today"] = time.Now().Format(publishedDateLayout)
	}
	a.renderHTML(c, status, template, payload)
}

func articleErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrArticleTitleRequired):
		return "Title is required."
	case errors.Is(err, service.ErrArticleCategoryInvalid):
		return "Please choose a category."
	case errors.Is(err, service.ErrArticleContentRequired):
		return "Article content is required."
	case errors.Is(err, errInvalidPublishedDate):
		return "Published date must be in YYYY-MM-DD format."
	default:
		return ""
	}
}

// finishArticleSave handles the optional subscriber email and redirects to the dashboard.
func (a *API) finishArticleSave(c *gin.Context, article *db.Article, verb, subjectPrefix string) {
	saved := fmt.Sprintf("Article %s successfully!", verb)

	if c.PostForm("send_email_to_subscribers") != "on" {
		redirectWithFlash(c, "/admin", flashSuccess, saved)
		return
	}

	subject := strings.TrimSpace(c.PostForm("email_subject"))
	if subject == "" {
		subject = subjectPrefix + article.Title
	}
	body := c.PostForm("email_body")

	result, err := a.mail.Broadcast(c.Request.Context(), subject, body)
	switch {
	case err == nil:
		a.logger.Info("newsletter sent", zap.Int("recipients", result.Recipients), zap.String("slug", article.Slug))
		redirectWithFlash(c, "/admin", flashSuccess, saved+" "+result.Message)
	case errors.Is(err, service.ErrMailBodyEmpty):
		redirectWithFlash(c, "/admin", flashInfo, saved+" Email body was empty, so no email was sent.")
	default:
		a.logger.Warn("newsletter failed", zap.Error(err), zap.String("slug", article.Slug))
		redirectWithFlash(c, "/admin", flashError,
			fmt.Sprintf("Article %s successfully, but email sending failed: %s", verb, mailErrorMessage(err)))
	}
}

func mailErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrMailNotConfigured):
		return "Email configuration not set. Please configure email settings in the admin panel (Admin Dashboard > Email Configuration)."
	case errors.Is(err, service.ErrNoSubscribers):
		return "No subscribers found"
	default:
		return "Error sending email: " + err.Error()
	}
}
