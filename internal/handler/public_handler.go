package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/songbird/internal/db"
	"github.com/songbird/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

const homeArticleLimit = 10

type categoryLink struct {
	Name string
	Path string
}

var categoryLinks = []categoryLink{
	{Name: db.CategorySongbirdMagazine, Path: "/songbird-magazine"},
	{Name: db.CategoryAngstyEntries, Path: "/angsty-entries"},
	{Name: db.CategoryQuickReads, Path: "/quick-reads"},
}

// ShowHome renders the landing page with the latest articles.
func (a *API) ShowHome(c *gin.Context) {
	articles, err := a.articles.ListRecent(homeArticleLimit)
	if err != nil {
		a.logError(c, "list recent articles", err)
		a.renderHTML(c, http.StatusInternalServerError, "home.html", gin.H{
			"title": "Home",
			"error": "Could not load articles.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":    "Home",
		"articles": articles,
	})
}

// ShowCategory returns a handler listing one category's articles.
func (a *API) ShowCategory(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := a.articles.ListByCategory(category)
		if err != nil {
			a.logError(c, "list category articles", err)
			a.renderHTML(c, http.StatusInternalServerError, "category.html", gin.H{
				"title":    category,
				"category": category,
				"error":    "Could not load articles.",
			})
			return
		}

		a.renderHTML(c, http.StatusOK, "category.html", gin.H{
			"title":    category,
			"category": category,
			"articles": articles,
		})
	}
}

// ShowArchive lists every article, newest first.
func (a *API) ShowArchive(c *gin.Context) {
	articles, err := a.articles.ListRecent(0)
	if err != nil {
		a.logError(c, "list archive", err)
		a.renderHTML(c, http.StatusInternalServerError, "archive.html", gin.H{
			"title": "Archive",
			"error": "Could not load articles.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "archive.html", gin.H{
		"title":    "Archive",
		"articles": articles,
	})
}

// ShowAbout renders the About the Author page.
func (a *API) ShowAbout(c *gin.Context) {
	page, err := a.pages.GetAbout()
	if err != nil {
		a.logError(c, "load about page", err)
		page = service.DefaultAboutPage()
	}

	bio, err := renderMarkdown(page.AuthorBio)
	if err != nil {
		bio = template.HTML("<p>" + template.HTMLEscapeString(page.AuthorBio) + "</p>")
	}

	a.renderHTML(c, http.StatusOK, "about.html", gin.H{
		"title": "About the Author",
		"about": page,
		"bio":   bio,
	})
}

// ShowArticle renders an article with its like state and approved comments.
func (a *API) ShowArticle(c *gin.Context) {
	article, err := a.articles.GetBySlug(c.Param("slug"))
	if err != nil {
		if !errors.Is(err, service.ErrArticleNotFound) {
			a.logError(c, "load article", err)
		}
		redirectWithFlash(c, "/", flashError, "Article not found.")
		return
	}

	token, _ := resolveViewerToken(c)

	likeCount, err := a.likes.Count(article.ID)
	if err != nil {
		a.logError(c, "count likes", err)
	}
	hasLiked, err := a.likes.HasLiked(article.ID, token)
	if err != nil {
		a.logError(c, "check like", err)
	}
	comments, err := a.comments.ListApproved(article.ID)
	if err != nil {
		a.logError(c, "list comments", err)
	}

	a.renderArticle(c, *article, likeCount, hasLiked, comments, false)
}

func (a *API) renderArticle(c *gin.Context, article db.Article, likeCount int64, hasLiked bool, comments []db.Comment, preview bool) {
	a.renderHTML(c, http.StatusOK, "article.html", gin.H{
		"title":     article.Title,
		"article":   article,
		"content":   renderArticleHTML(article.ContentHTML),
		"likeCount": likeCount,
		"hasLiked":  hasLiked,
		"comments":  comments,
		"preview":   preview,
	})
}

// renderArticleHTML sanitises editor HTML before it is embedded unescaped.
func renderArticleHTML(content string) template.HTML {
	return template.HTML(sanitizer.Sanitize(content))
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
