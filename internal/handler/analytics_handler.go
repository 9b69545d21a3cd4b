package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/songbird/internal/service"
)

// ShowAnalytics renders the traffic dashboard for ?days=30|60|90.
func (a *API) ShowAnalytics(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(service.DefaultAnalyticsDays)))
	if err != nil {
		days = service.DefaultAnalyticsDays
	}
	days = service.NormalizeWindow(days)

	dashboard, err := a.analytics.Dashboard(days, time.Now())
	if err != nil {
		a.logError(c, "build analytics dashboard", err)
		a.renderHTML(c, http.StatusInternalServerError, "admin_analytics.html", gin.H{
			"title": "Analytics",
			"days":  days,
			"error": "Could not load analytics.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "admin_analytics.html", gin.H{
		"title":            "Analytics",
		"days":             dashboard.Days,
		"viewsChartData":   dashboard.ViewsChart(),
		"articleViewsData": dashboard.ArticleViewsChart(),
		"articleStats":     dashboard.ArticleStats,
		"timeStats":        dashboard.TimeStats,
		"articleTimeStats": dashboard.ArticleTimeStats,
	})
}
