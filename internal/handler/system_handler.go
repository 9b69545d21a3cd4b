package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/service"
)

// HealthCheck reports whether the database answers a ping.
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

// ShowEmailConfig renders the SMTP settings form.
func (a *API) ShowEmailConfig(c *gin.Context) {
	settings, err := a.system.GetMailSettings()
	if err != nil {
		a.logError(c, "load mail settings", err)
	}

	effective, err := a.system.EffectiveMailSettings()
	if err != nil {
		a.logError(c, "load effective mail settings", err)
	}

	a.renderHTML(c, http.StatusOK, "admin_email_config.html", gin.H{
		"title":       "Email Configuration",
		"config":      settings,
		"envOverride": effective.Configured() && effective.Username != settings.Username,
	})
}

// UpdateEmailConfig stores the SMTP settings submitted by the form.
func (a *API) UpdateEmailConfig(c *gin.Context) {
	port, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("mail_port", "587")))
	if err != nil {
		port = 0
	}

	_, err = a.system.UpdateMailSettings(service.MailSettings{
		Server:        c.PostForm("mail_server"),
		Port:          port,
		UseTLS:        c.PostForm("mail_use_tls") == "on",
		UseSSL:        c.PostForm("mail_use_ssl") == "on",
		Username:      c.PostForm("mail_username"),
		Password:      c.PostForm("mail_password"),
		DefaultSender: c.PostForm("mail_default_sender"),
	})
	if err != nil {
		a.logError(c, "save mail settings", err)
		redirectWithFlash(c, "/admin/email-config", flashError, "Could not save email configuration.")
		return
	}

	redirectWithFlash(c, "/admin/email-config", flashSuccess, "Email configuration saved successfully!")
}
