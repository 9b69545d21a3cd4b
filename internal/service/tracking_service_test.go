package service

import (
	"math"
	"testing"
	"time"

	"github.com/songbird/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{-3, 0},
		{12.9, 12},
		{7199.99, 7199},
		{7200, 7200},
		{99999, 7200},
		{math.Inf(1), 7200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampDuration(tt.in), "input %v", tt.in)
	}
}

func TestTrackingServicePageViewLifecycle(t *testing.T) {
	gdb := setupServiceTestDB(t, "track-page")
	started := time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)
	svc := NewTrackingService(gdb).WithClock(func() time.Time { return started })

	id, err := svc.StartPageView("viewer-1", PageViewInput{Path: "", Referrer: "https://example.com", UserAgent: ""})
	require.NoError(t, err)
	require.NotZero(t, id)

	var view db.PageView
	require.NoError(t, gdb.First(&view, id).Error)
	assert.Equal(t, "/", view.Path)
	require.NotNil(t, view.Referrer)
	assert.Equal(t, "https://example.com", *view.Referrer)
	assert.Nil(t, view.UserAgent)
	assert.Nil(t, view.DurationSeconds)
	assert.True(t, view.StartedAt.Equal(started))

	stored, err := svc.EndPageView(id, 9000)
	require.NoError(t, err)
	assert.Equal(t, MaxViewDurationSeconds, stored)

	stored, err = svc.EndPageView(id, 42.7)
	require.NoError(t, err)
	assert.Equal(t, 42, stored, "a second end overwrites the first")

	require.NoError(t, gdb.First(&view, id).Error)
	require.NotNil(t, view.DurationSeconds)
	assert.Equal(t, 42, *view.DurationSeconds)
}

func TestTrackingServiceEndValidation(t *testing.T) {
	gdb := setupServiceTestDB(t, "track-end")
	svc := NewTrackingService(gdb)

	_, err := svc.EndPageView(0, 10)
	assert.ErrorIs(t, err, ErrViewIDRequired)

	_, err = svc.EndPageView(12345, 10)
	assert.ErrorIs(t, err, ErrViewNotFound)

	id, err := svc.StartPageView("viewer", PageViewInput{Path: "/about"})
	require.NoError(t, err)

	_, err = svc.EndPageView(id, -1)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = svc.EndPageView(id, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = svc.EndArticleView(id, 10)
	assert.ErrorIs(t, err, ErrViewNotFound, "page view ids are not article view ids")
}

func TestTrackingServiceArticleView(t *testing.T) {
	gdb := setupServiceTestDB(t, "track-article")
	article := seedArticle(t, gdb, "Measured")
	svc := NewTrackingService(gdb)

	_, err := svc.StartArticleView("viewer", 0)
	assert.ErrorIs(t, err, ErrArticleIDRequired)

	_, err = svc.StartArticleView("viewer", article.ID+100)
	assert.ErrorIs(t, err, ErrArticleNotFound)

	id, err := svc.StartArticleView("viewer", article.ID)
	require.NoError(t, err)

	stored, err := svc.EndArticleView(id, 0)
	require.NoError(t, err)
	assert.Zero(t, stored)

	var view db.ArticleView
	require.NoError(t, gdb.First(&view, id).Error)
	require.NotNil(t, view.DurationSeconds)
	assert.Zero(t, *view.DurationSeconds)
}
