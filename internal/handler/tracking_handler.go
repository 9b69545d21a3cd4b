package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/metrics"
	"github.com/songbird/internal/service"
)

const maxBeaconBytes = 4 << 10

type pageViewStartRequest struct {
	Path      *string `json:"path"`
	Referrer  *string `json:"referrer"`
	UserAgent *string `json:"user_agent"`
}

type articleViewStartRequest struct {
	ArticleID json.RawMessage `json:"article_id"`
}

type viewEndRequest struct {
	ViewID          json.RawMessage `json:"view_id"`
	DurationSeconds json.RawMessage `json:"duration_seconds"`
}

// StartPageView opens a page view for the current visitor.
func (a *API) StartPageView(c *gin.Context) {
	var payload pageViewStartRequest
	body, err := readBody(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return
	}
	// an empty body falls back to the request itself
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
	}

	input := service.PageViewInput{
		Path:      fieldOr(payload.Path, c.Request.URL.Path),
		Referrer:  fieldOr(payload.Referrer, c.Request.Referer()),
		UserAgent: fieldOr(payload.UserAgent, c.Request.UserAgent()),
	}

	token, _ := resolveViewerToken(c)
	viewID, err := a.tracking.StartPageView(token, input)
	if err != nil {
		a.logError(c, "start page view", err)
		respondError(c, http.StatusInternalServerError, "Could not record view")
		return
	}

	metrics.ViewsStarted.WithLabelValues("page").Inc()
	c.JSON(http.StatusOK, gin.H{"view_id": viewID})
}

// EndPageView records how long a page stayed open.
func (a *API) EndPageView(c *gin.Context) {
	a.endView(c, "page", a.tracking.EndPageView)
}

// StartArticleView opens an article view for the current visitor.
func (a *API) StartArticleView(c *gin.Context) {
	var payload articleViewStartRequest
	body, err := readBody(c)
	if err != nil || json.Unmarshal(body, &payload) != nil {
		respondError(c, http.StatusBadRequest, "article_id required")
		return
	}

	articleID, ok := parseID(payload.ArticleID)
	if !ok {
		respondError(c, http.StatusBadRequest, "article_id required")
		return
	}

	token, _ := resolveViewerToken(c)
	viewID, err := a.tracking.StartArticleView(token, articleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "Article not found")
		case errors.Is(err, service.ErrArticleIDRequired):
			respondError(c, http.StatusBadRequest, "article_id required")
		default:
			a.logError(c, "start article view", err)
			respondError(c, http.StatusInternalServerError, "Could not record view")
		}
		return
	}

	metrics.ViewsStarted.WithLabelValues("article").Inc()
	c.JSON(http.StatusOK, gin.H{"view_id": viewID})
}

// EndArticleView records how long an article stayed open.
func (a *API) EndArticleView(c *gin.Context) {
	a.endView(c, "article", a.tracking.EndArticleView)
}

// endView decodes the body itself so sendBeacon's text/plain payloads work.
func (a *API) endView(c *gin.Context, kind string, end func(uint, float64) (int, error)) {
	var payload viewEndRequest
	body, err := readBody(c)
	if err != nil || json.Unmarshal(body, &payload) != nil {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	viewID, ok := parseID(payload.ViewID)
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	duration := 0.0
	if len(payload.DurationSeconds) > 0 && string(payload.DurationSeconds) != "null" {
		if duration, ok = parseNumber(payload.DurationSeconds); !ok {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
	}

	stored, err := end(viewID, duration)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrViewIDRequired),
			errors.Is(err, service.ErrInvalidDuration),
			errors.Is(err, service.ErrViewNotFound):
			respondError(c, http.StatusBadRequest, "Invalid request")
		default:
			a.logError(c, "end view", err)
			respondError(c, http.StatusInternalServerError, "Could not record duration")
		}
		return
	}

	metrics.ViewsEnded.WithLabelValues(kind).Inc()
	metrics.ViewDuration.WithLabelValues(kind).Observe(float64(stored))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, maxBeaconBytes))
}

func fieldOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

// parseNumber accepts a JSON number or a numeric string.
func parseNumber(raw json.RawMessage) (float64, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return number, true
}

// parseID accepts a positive integral JSON number or numeric string.
func parseID(raw json.RawMessage) (uint, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	number, ok := parseNumber(raw)
	if !ok || number < 1 || number != float64(uint32(number)) {
		return 0, false
	}
	return uint(number), true
}
