package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/metrics"
	"github.com/songbird/internal/service"
)

// ToggleLike flips the viewer's like on an article and returns the new state.
func (a *API) ToggleLike(c *gin.Context) {
	article, err := a.articles.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "Article not found")
			return
		}
		a.logError(c, "load article for like", err)
		respondError(c, http.StatusInternalServerError, "Could not update like")
		return
	}

	token, _ := resolveViewerToken(c)

	result, err := a.likes.Toggle(article.ID, token)
	if err != nil {
		a.logError(c, "toggle like", err)
		respondError(c, http.StatusInternalServerError, "Could not update like")
		return
	}

	if result.Liked {
		metrics.LikeToggles.WithLabelValues("liked").Inc()
	} else {
		metrics.LikeToggles.WithLabelValues("unliked").Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"has_liked":  result.Liked,
		"like_count": result.Count,
	})
}
