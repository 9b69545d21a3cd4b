package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/config"
	"github.com/songbird/internal/db"
	"github.com/songbird/internal/router"
	"github.com/songbird/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"gorm.io/gorm"
)

const (
	baseURL   = "http://songbird.test"
	adminPass = "e2e-password"
)

type e2eSuite struct {
	handler http.Handler
	db      *gorm.DB
	sender  *recordingSender
	admin   *localClient
	article db.Article
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

// Do serves the request in-process and keeps cookies like a browser would.
// Redirects are not followed.
func (c *localClient) Do(req *http.Request) *http.Response {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp
}

func (c *localClient) get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	require.NoError(t, err)
	return c.Do(req)
}

func (c *localClient) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

func (c *localClient) post(t *testing.T, path, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

type sentMail struct {
	from    string
	to      []string
	message string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordingSender) Send(_ context.Context, _ service.MailSettings, msg *mail.Msg) error {
	to, err := msg.GetRecipients()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	var from string
	if addrs := msg.GetFrom(); len(addrs) > 0 {
		from = addrs[0].Address
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{from: from, to: to, message: buf.String()})
	return nil
}

func TestE2E_ReaderAndAdminFlows(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("public pages", suite.testPublicPages)
	t.Run("likes", suite.testLikes)
	t.Run("comments", suite.testComments)
	t.Run("tracking", suite.testTracking)
	t.Run("subscribe", suite.testSubscribe)
	t.Run("admin pages", suite.testAdminPages)
	t.Run("admin publish with newsletter", suite.testPublishWithNewsletter)
	t.Run("analytics", suite.testAnalytics)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano()), true)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = service.Seed(gdb)
	require.NoError(t, err)

	sender := &recordingSender{}
	engine, err := router.SetupRouter(gdb, router.Options{
		SessionSecret: "e2e-secret",
		StaticDir:     "../../web/static",
		UploadDir:     t.TempDir(),
		UploadURL:     "/static/uploads",
		TemplateDir:   "../../web/template",
		AdminPassword: adminPass,
		Mail: config.MailConfig{
			Server:   "smtp.example.com",
			Port:     587,
			UseTLS:   true,
			Username: "kylee@example.com",
			Password: "app-password",
		},
		Sender: sender,
	})
	require.NoError(t, err)

	var article db.Article
	require.NoError(t, gdb.Where("category = ?", db.CategorySongbirdMagazine).First(&article).Error)

	suite := &e2eSuite{
		handler: engine,
		db:      gdb,
		sender:  sender,
		admin:   newLocalClient(engine),
		article: article,
	}
	suite.login(t)
	return suite
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	resp := s.admin.postForm(t, "/admin/login", url.Values{"password": {adminPass}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

func (s *e2eSuite) testPublicPages(t *testing.T) {
	reader := newLocalClient(s.handler)

	for _, path := range []string{"/", "/songbird-magazine", "/angsty-entries", "/quick-reads", "/archive", "/about", "/subscribe"} {
		resp := reader.get(t, path)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "Songbird", path)
	}

	body := readBody(t, reader.get(t, "/"))
	assert.Contains(t, body, "Finding My Voice: A Journey Through Journalism")
	assert.Contains(t, body, "/static/graphics/cover_image.png")

	body = readBody(t, reader.get(t, "/about"))
	assert.Contains(t, body, "Welcome to my blog!")

	resp := reader.get(t, "/article/"+s.article.Slug)
	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `data-article-id="`+idStr(s.article.ID)+`"`)
	assert.Contains(t, body, "Starting Out")
	assert.NotEmpty(t, viewerToken(resp), "first visit mints a viewer token")

	resp = reader.get(t, "/article/"+s.article.Slug)
	readBody(t, resp)
	assert.Empty(t, viewerToken(resp), "returning visitors keep their cookie")

	resp = reader.get(t, "/article/no-such-article")
	readBody(t, resp)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Contains(t, readBody(t, reader.get(t, "/")), "Article not found.")

	resp = reader.get(t, "/static/js/tracker.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "/track/view/start")
}

func (s *e2eSuite) testLikes(t *testing.T) {
	alice := newLocalClient(s.handler)
	bob := newLocalClient(s.handler)
	likePath := "/article/" + s.article.Slug + "/like"

	var state struct {
		HasLiked  bool  `json:"has_liked"`
		LikeCount int64 `json:"like_count"`
	}

	decodeJSON(t, alice.post(t, likePath, "application/json", ""), &state)
	assert.True(t, state.HasLiked)
	assert.EqualValues(t, 1, state.LikeCount)

	decodeJSON(t, bob.post(t, likePath, "application/json", ""), &state)
	assert.True(t, state.HasLiked)
	assert.EqualValues(t, 2, state.LikeCount)

	decodeJSON(t, alice.post(t, likePath, "application/json", ""), &state)
	assert.False(t, state.HasLiked)
	assert.EqualValues(t, 1, state.LikeCount)

	body := readBody(t, bob.get(t, "/article/"+s.article.Slug))
	assert.Contains(t, body, `class="like-btn liked"`)
	assert.Contains(t, body, `<span id="likeCount">1</span>`)

	resp := alice.post(t, "/article/missing/like", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var failure struct {
		Error string `json:"error"`
	}
	decodeJSON(t, resp, &failure)
	assert.Equal(t, "Article not found", failure.Error)
}

func (s *e2eSuite) testComments(t *testing.T) {
	reader := newLocalClient(s.handler)
	commentPath := "/article/" + s.article.Slug + "/comment"
	articlePath := "/article/" + s.article.Slug

	resp := reader.postForm(t, commentPath, url.Values{"display_name": {"<i>Ann</i>"}, "content": {"<b>lovely</b>"}})
	readBody(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, articlePath, resp.Header.Get("Location"))

	body := readBody(t, reader.get(t, articlePath))
	assert.Contains(t, body, "Comment posted successfully!")
	assert.Contains(t, body, "&lt;b&gt;lovely&lt;/b&gt;")
	assert.Contains(t, body, "&lt;i&gt;Ann&lt;/i&gt;")
	assert.NotContains(t, body, "<b>lovely</b>")

	other := newLocalClient(s.handler)
	resp = other.postForm(t, commentPath, url.Values{"content": {"me too"}})
	readBody(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, readBody(t, other.get(t, articlePath)), "Please wait a moment before posting another comment.")

	resp = other.postForm(t, commentPath, url.Values{"content": {"spam"}, "website": {"http://spam.example"}})
	readBody(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var count int64
	require.NoError(t, s.db.Model(&db.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func (s *e2eSuite) testTracking(t *testing.T) {
	reader := newLocalClient(s.handler)

	var started struct {
		ViewID uint `json:"view_id"`
	}
	resp := reader.post(t, "/track/view/start", "application/json", `{"path":"/about","referrer":"https://example.org/"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &started)
	require.NotZero(t, started.ViewID)

	resp = reader.post(t, "/track/view/end", "text/plain;charset=UTF-8",
		fmt.Sprintf(`{"view_id":%d,"duration_seconds":42.9}`, started.ViewID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)

	var view db.PageView
	require.NoError(t, s.db.First(&view, started.ViewID).Error)
	require.NotNil(t, view.DurationSeconds)
	assert.Equal(t, 42, *view.DurationSeconds)
	assert.Equal(t, "/about", view.Path)

	resp = reader.post(t, "/track/article/start", "application/json", fmt.Sprintf(`{"article_id":%d}`, s.article.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &started)

	resp = reader.post(t, "/track/article/end", "application/json",
		fmt.Sprintf(`{"view_id":"%d","duration_seconds":99999}`, started.ViewID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readBody(t, resp)

	var articleView db.ArticleView
	require.NoError(t, s.db.First(&articleView, started.ViewID).Error)
	require.NotNil(t, articleView.DurationSeconds)
	assert.Equal(t, 7200, *articleView.DurationSeconds)

	resp = reader.post(t, "/track/view/end", "application/json", `{"view_id":1,"duration_seconds":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	readBody(t, resp)

	resp = reader.post(t, "/track/article/start", "application/json", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	readBody(t, resp)
}

func (s *e2eSuite) testSubscribe(t *testing.T) {
	reader := newLocalClient(s.handler)

	body := readBody(t, reader.postForm(t, "/subscribe", url.Values{"email": {"Fan@Example.com"}}))
	assert.Contains(t, body, "Thanks for subscribing!")

	body = readBody(t, reader.postForm(t, "/subscribe", url.Values{"email": {"fan@example.com"}}))
	assert.Contains(t, body, "You&#39;re already subscribed!")
}

func (s *e2eSuite) testAdminPages(t *testing.T) {
	anonymous := newLocalClient(s.handler)
	resp := anonymous.get(t, "/admin")
	readBody(t, resp)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	pages := []string{
		"/admin",
		"/admin/new",
		"/admin/edit/" + idStr(s.article.ID),
		"/admin/edit-about",
		"/admin/comments",
		"/admin/subscribers",
		"/admin/email-config",
		"/admin/analytics",
	}
	for _, path := range pages {
		resp := s.admin.get(t, path)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, `href="/admin/analytics"`, path)
	}

	body := readBody(t, s.admin.get(t, "/admin/email-config"))
	assert.Contains(t, body, "take precedence")

	body = readBody(t, s.admin.get(t, "/admin/subscribers"))
	assert.Contains(t, body, "fan@example.com")

	resp = s.admin.postForm(t, "/admin/preview", url.Values{"title": {"Draft Only"}, "content_html": {"<p>draft body</p><script>alert(1)</script>"}})
	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Draft Only")
	assert.Contains(t, body, "draft body")
	assert.NotContains(t, body, "alert(1)")
}

func (s *e2eSuite) testPublishWithNewsletter(t *testing.T) {
	resp := s.admin.postForm(t, "/admin/new", url.Values{
		"title":                     {"Quick Tips for Aspiring Journalists"},
		"category":                  {db.CategoryQuickReads},
		"published_date":            {"2025-05-01"},
		"content_html":              {"<p>more tips</p>"},
		"send_email_to_subscribers": {"on"},
		"email_body":                {"A new article is up.\nCome read it."},
	})
	readBody(t, resp)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	body := readBody(t, s.admin.get(t, "/admin"))
	assert.Contains(t, body, "Article created successfully! Email sent to 1 subscribers")

	var created db.Article
	require.NoError(t, s.db.Where("slug = ?", "quick-tips-for-aspiring-journalists-1").First(&created).Error)

	s.sender.mu.Lock()
	defer s.sender.mu.Unlock()
	require.Len(t, s.sender.sent, 1)
	assert.Equal(t, "kylee@example.com", s.sender.sent[0].from)
	assert.Equal(t, []string{"fan@example.com"}, s.sender.sent[0].to)
	assert.Contains(t, s.sender.sent[0].message, "A new article is up.<br>Come read it.")
}

func (s *e2eSuite) testAnalytics(t *testing.T) {
	body := readBody(t, s.admin.get(t, "/admin/analytics?days=30"))
	assert.Contains(t, body, `href="/admin/analytics?days=30" class="active"`)
	assert.Contains(t, body, "Finding My Voice: A Journey Through Journalism")
	assert.Contains(t, body, "timed page views")

	body = readBody(t, s.admin.get(t, "/admin/analytics?days=7"))
	assert.Contains(t, body, `href="/admin/analytics?days=60" class="active"`)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func viewerToken(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "viewer_token" {
			return cookie.Value
		}
	}
	return ""
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
