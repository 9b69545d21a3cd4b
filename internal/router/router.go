package router

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/songbird/internal/auth"
	"github.com/songbird/internal/config"
	"github.com/songbird/internal/db"
	"github.com/songbird/internal/handler"
	"github.com/songbird/internal/logging"
	"github.com/songbird/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionName = "songbird_session"

// Options configures the engine built by SetupRouter.
type Options struct {
	SessionSecret string
	StaticDir     string
	UploadDir     string
	UploadURL     string
	TemplateDir   string
	AdminPassword string
	Mail          config.MailConfig
	Sender        service.MailSender
	Logger        *zap.Logger
}

// OptionsFromConfig maps the application config onto router options.
func OptionsFromConfig(cfg config.AppConfig, logger *zap.Logger) Options {
	return Options{
		SessionSecret: cfg.SessionSecret,
		StaticDir:     "web/static",
		UploadDir:     cfg.UploadDir,
		UploadURL:     cfg.UploadURLPath,
		TemplateDir:   cfg.TemplateDir,
		AdminPassword: cfg.AdminPassword,
		Mail:          cfg.Mail,
		Logger:        logger,
	}
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, opts Options) (*gin.Engine, error) {
	if gdb == nil {
		gdb = db.DB
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	authenticator, err := auth.NewPasswordAuthenticator(opts.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare admin password: %w", err)
	}
	if opts.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is empty; admin login is disabled")
	}

	api := handler.NewAPI(gdb, handler.Options{
		UploadDir: opts.UploadDir,
		UploadURL: opts.UploadURL,
		Mail:      opts.Mail,
		Auth:      authenticator,
		Sender:    opts.Sender,
		Logger:    logger,
	})

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetFuncMap(handler.TemplateFuncs(opts.UploadURL))
	if opts.TemplateDir != "" {
		pattern := filepath.Join(opts.TemplateDir, "*.html")
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
			r.LoadHTMLGlob(pattern)
		} else {
			logger.Warn("no templates found", zap.String("pattern", pattern))
		}
	}

	registerStatic(r, opts)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", api.ShowHome)
	r.GET("/songbird-magazine", api.ShowCategory(db.CategorySongbirdMagazine))
	r.GET("/angsty-entries", api.ShowCategory(db.CategoryAngstyEntries))
	r.GET("/quick-reads", api.ShowCategory(db.CategoryQuickReads))
	r.GET("/archive", api.ShowArchive)
	r.GET("/about", api.ShowAbout)
	r.GET("/subscribe", api.ShowSubscribe)
	r.POST("/subscribe", api.Subscribe)

	article := r.Group("/article/:slug")
	{
		article.GET("", api.ShowArticle)
		article.POST("/like", api.ToggleLike)
		article.POST("/comment", api.PostComment)
	}

	track := r.Group("/track")
	{
		track.POST("/view/start", api.StartPageView)
		track.POST("/view/end", api.EndPageView)
		track.POST("/article/start", api.StartArticleView)
		track.POST("/article/end", api.EndArticleView)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		authed := admin.Group("")
		authed.Use(handler.AuthRequired())
		{
			authed.GET("", api.ShowDashboard)
			authed.GET("/new", api.ShowNewArticle)
			authed.POST("/new", api.CreateArticle)
			authed.POST("/preview", api.PreviewArticle)
			authed.GET("/edit/:id", api.ShowEditArticle)
			authed.POST("/edit/:id", api.UpdateArticle)
			authed.POST("/upload_image", api.UploadImage)
			authed.GET("/edit-about", api.ShowAboutEditor)
			authed.POST("/edit-about", api.UpdateAboutPage)
			authed.GET("/comments", api.ShowComments)
			authed.POST("/comments/delete/:id", api.DeleteComment)
			authed.GET("/subscribers", api.ShowSubscribers)
			authed.GET("/email-config", api.ShowEmailConfig)
			authed.POST("/email-config", api.UpdateEmailConfig)
			authed.GET("/analytics", api.ShowAnalytics)
		}
	}

	return r, nil
}

// registerStatic serves bundled assets under /static and uploads under the
// upload URL. When the upload URL sits inside /static the upload directory wins
// for that prefix.
func registerStatic(r *gin.Engine, opts Options) {
	uploadURL := "/" + strings.Trim(opts.UploadURL, "/")
	uploads := gin.Dir(opts.UploadDir, false)

	if !strings.HasPrefix(uploadURL+"/", "/static/") {
		r.StaticFS(uploadURL, uploads)
		if opts.StaticDir != "" {
			r.Static("/static", opts.StaticDir)
		}
		return
	}

	uploadPrefix := uploadURL + "/"
	var assets http.FileSystem
	if opts.StaticDir != "" {
		assets = gin.Dir(opts.StaticDir, false)
	}

	r.GET("/static/*filepath", func(c *gin.Context) {
		requested := c.Request.URL.Path
		if strings.HasPrefix(requested, uploadPrefix) {
			c.FileFromFS(strings.TrimPrefix(requested, uploadPrefix), uploads)
			return
		}
		if assets == nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.FileFromFS(c.Param("filepath"), assets)
	})
}
