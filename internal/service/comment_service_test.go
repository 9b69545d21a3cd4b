package service

import (
	"strings"
	"testing"
	"time"

	"github.com/songbird/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommentService(t *testing.T, name string) (*CommentService, *fixedClock, *db.Article, *db.Article) {
	t.Helper()
	gdb := setupServiceTestDB(t, name)
	first := seedArticle(t, gdb, "First Light")
	second := seedArticle(t, gdb, "Second Wind")
	clock := &fixedClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewCommentService(gdb).WithClock(clock.Now), clock, first, second
}

func TestCommentServicePostEscapesAndDefaultsName(t *testing.T) {
	svc, _, article, _ := newTestCommentService(t, "comment-escape")

	comment, err := svc.Post(CommentInput{
		ArticleID:   article.ID,
		DisplayName: "   ",
		Content:     "  <script>alert(1)</script> & more  ",
	})
	require.NoError(t, err)

	assert.Equal(t, AnonymousDisplayName, comment.DisplayName)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; more", comment.Content)
	assert.True(t, comment.Approved)

	listed, err := svc.ListApproved(article.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, comment.Content, listed[0].Content)
}

func TestCommentServiceLengthBoundaries(t *testing.T) {
	svc, clock, article, _ := newTestCommentService(t, "comment-length")

	_, err := svc.Post(CommentInput{ArticleID: article.ID, Content: strings.Repeat("é", MaxCommentRunes+1)})
	assert.ErrorIs(t, err, ErrCommentTooLong)

	_, err = svc.Post(CommentInput{ArticleID: article.ID, Content: strings.Repeat("é", MaxCommentRunes)})
	require.NoError(t, err)

	clock.Advance(CommentCooldown)
	_, err = svc.Post(CommentInput{ArticleID: article.ID, DisplayName: strings.Repeat("n", MaxDisplayNameRunes+1), Content: "hi"})
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)

	_, err = svc.Post(CommentInput{ArticleID: article.ID, DisplayName: strings.Repeat("n", MaxDisplayNameRunes), Content: "hi"})
	assert.NoError(t, err)
}

func TestCommentServiceCheckOrder(t *testing.T) {
	svc, _, article, _ := newTestCommentService(t, "comment-order")

	_, err := svc.Post(CommentInput{ArticleID: article.ID, Content: "", Honeypot: "http://spam"})
	assert.ErrorIs(t, err, ErrCommentHoneypot, "honeypot is checked before content")

	_, err = svc.Post(CommentInput{ArticleID: article.ID, Content: "hello", Honeypot: " "})
	assert.ErrorIs(t, err, ErrCommentHoneypot, "whitespace in the hidden field still counts as filled")

	_, err = svc.Post(CommentInput{ArticleID: article.ID, Content: " \n\t "})
	assert.ErrorIs(t, err, ErrCommentEmpty)

	_, err = svc.Post(CommentInput{ArticleID: article.ID, DisplayName: strings.Repeat("x", 41), Content: ""})
	assert.ErrorIs(t, err, ErrCommentEmpty, "content is checked before the name")

	var count int64
	require.NoError(t, svc.db.Model(&db.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentServiceCooldownIsGlobal(t *testing.T) {
	svc, clock, first, second := newTestCommentService(t, "comment-cooldown")

	_, err := svc.Post(CommentInput{ArticleID: first.ID, Content: "one"})
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	_, err = svc.Post(CommentInput{ArticleID: second.ID, Content: "two"})
	assert.ErrorIs(t, err, ErrCommentRateLimited, "a comment on another article still counts")

	clock.Advance(10 * time.Second)
	_, err = svc.Post(CommentInput{ArticleID: second.ID, Content: "two"})
	assert.NoError(t, err)
}

func TestCommentServiceListRecentAndDelete(t *testing.T) {
	svc, clock, first, second := newTestCommentService(t, "comment-admin")

	older, err := svc.Post(CommentInput{ArticleID: first.ID, Content: "older"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	newer, err := svc.Post(CommentInput{ArticleID: second.ID, Content: "newer"})
	require.NoError(t, err)

	recent, err := svc.ListRecent(0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, newer.ID, recent[0].ID)
	assert.Equal(t, second.Title, recent[0].Title)
	assert.Equal(t, first.Slug, recent[1].Slug)

	require.NoError(t, svc.Delete(older.ID))
	assert.ErrorIs(t, svc.Delete(older.ID), ErrCommentNotFound)
}
