package handler

import (
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/auth"
	"github.com/songbird/internal/config"
	"github.com/songbird/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the dependencies NewAPI cannot derive from the database.
type Options struct {
	UploadDir string
	UploadURL string
	Mail      config.MailConfig
	Auth      auth.Authenticator
	Sender    service.MailSender
	Logger    *zap.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	articles    *service.ArticleService
	likes       *service.LikeService
	comments    *service.CommentService
	tracking    *service.TrackingService
	analytics   analyticsProvider
	subscribers *service.SubscriberService
	pages       *service.PageService
	system      *service.SystemSettingService
	mail        *service.MailService
	uploads     *service.UploadService
	auth        auth.Authenticator
	logger      *zap.Logger
	uploadURL   string
}

const siteName = "Songbird"

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authenticator := opts.Auth
	if authenticator == nil {
		authenticator = &auth.PasswordAuthenticator{}
	}

	systemService := service.NewSystemSettingService(db, opts.Mail)
	subscriberService := service.NewSubscriberService(db)

	return &API{
		db:          db,
		articles:    service.NewArticleService(db),
		likes:       service.NewLikeService(db),
		comments:    service.NewCommentService(db),
		tracking:    service.NewTrackingService(db),
		analytics:   service.NewAnalyticsService(db),
		subscribers: subscriberService,
		pages:       service.NewPageService(db),
		system:      systemService,
		mail:        service.NewMailService(systemService, subscriberService, opts.Sender),
		uploads:     service.NewUploadService(opts.UploadDir, opts.UploadURL),
		auth:        authenticator,
		logger:      logger,
		uploadURL:   opts.UploadURL,
	}
}

// renderHTML 在渲染模板时附加站点名称、栏目导航与一次性提示消息。
func (a *API) renderHTML(c *gin.Context, status int, name string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = siteName
	}
	if _, exists := payload["categories"]; !exists {
		payload["categories"] = categoryLinks
	}
	payload["flashes"] = popFlashes(c)
	payload["adminLoggedIn"] = isAdmin(c)
	payload["uploadURL"] = a.uploadURL
	payload["year"] = time.Now().Year()

	c.HTML(status, name, payload)
}

// logError attaches an unexpected failure to the context; the request logger
// middleware writes it out.
func (a *API) logError(c *gin.Context, msg string, err error) {
	c.Error(fmt.Errorf("%s: %w", msg, err))
}

// TemplateFuncs returns the helpers the HTML templates rely on.
func TemplateFuncs(uploadURL string) template.FuncMap {
	return template.FuncMap{
		"coverImageURL": func(name string) string { return imageURL(uploadURL, name) },
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"formatDuration": formatDuration,
		"trusted":        func(s string) template.HTML { return template.HTML(s) },
		"derefString": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}
