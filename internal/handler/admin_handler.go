package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/auth"
	"go.uber.org/zap"
)

const adminSessionKey = "admin_logged_in"

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "admin_login.html", gin.H{"title": "Admin Login"})
}

// Login checks the admin password and marks the session.
func (a *API) Login(c *gin.Context) {
	if err := a.auth.Authenticate(c.PostForm("password")); err != nil {
		if errors.Is(err, auth.ErrLoginDisabled) {
			a.logger.Warn("admin login attempted but no password is configured")
		}
		addFlash(c, flashError, "Incorrect password.")
		a.renderHTML(c, http.StatusUnauthorized, "admin_login.html", gin.H{"title": "Admin Login"})
		return
	}

	session := sessions.Default(c)
	session.Set(adminSessionKey, true)
	session.AddFlash(FlashMessage{Category: flashSuccess, Message: "Successfully logged in!"})
	if err := session.Save(); err != nil {
		a.logError(c, "save admin session", err)
		a.renderHTML(c, http.StatusInternalServerError, "admin_login.html", gin.H{"title": "Admin Login"})
		return
	}

	a.logger.Info("admin logged in", zap.String("ip", c.ClientIP()))
	c.Redirect(http.StatusFound, "/admin")
}

// Logout 处理登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(adminSessionKey)
	session.AddFlash(FlashMessage{Category: flashSuccess, Message: "Successfully logged out."})
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}

// ShowDashboard lists all articles for management.
func (a *API) ShowDashboard(c *gin.Context) {
	articles, err := a.articles.ListRecent(0)
	if err != nil {
		a.logError(c, "list dashboard articles", err)
		a.renderHTML(c, http.StatusInternalServerError, "admin_dashboard.html", gin.H{
			"title": "Dashboard",
			"error": "Could not load articles.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":    "Dashboard",
		"articles": articles,
	})
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(c) {
			addFlash(c, flashError, "Please log in to access this page.")
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAdmin(c *gin.Context) bool {
	loggedIn, _ := sessions.Default(c).Get(adminSessionKey).(bool)
	return loggedIn
}
