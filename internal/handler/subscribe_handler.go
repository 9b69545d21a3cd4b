package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/metrics"
	"github.com/songbird/internal/service"
)

// ShowSubscribe renders the newsletter signup form.
func (a *API) ShowSubscribe(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "subscribe.html", gin.H{"title": "Subscribe"})
}

// Subscribe adds an email to the list. Re-subscribing is reported, not rejected.
func (a *API) Subscribe(c *gin.Context) {
	email := c.PostForm("email")

	_, existing, err := a.subscribers.Subscribe(email, c.PostForm("name"))
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			addFlash(c, flashError, "Email address is required.")
			metrics.Subscriptions.WithLabelValues("invalid").Inc()
		case errors.Is(err, service.ErrEmailInvalid):
			addFlash(c, flashError, "Please enter a valid email address.")
			metrics.Subscriptions.WithLabelValues("invalid").Inc()
		default:
			status = http.StatusInternalServerError
			a.logError(c, "subscribe", err)
			addFlash(c, flashError, "Could not subscribe right now. Please try again.")
			metrics.Subscriptions.WithLabelValues("error").Inc()
		}
		a.renderHTML(c, status, "subscribe.html", gin.H{"title": "Subscribe", "email": email})
		return
	}

	if existing {
		metrics.Subscriptions.WithLabelValues("existing").Inc()
		addFlash(c, flashInfo, "You're already subscribed!")
	} else {
		metrics.Subscriptions.WithLabelValues("subscribed").Inc()
		addFlash(c, flashSuccess, "Thanks for subscribing!")
	}

	a.renderHTML(c, http.StatusOK, "subscribe.html", gin.H{
		"title":      "Subscribe",
		"subscribed": true,
		"existing":   existing,
	})
}
