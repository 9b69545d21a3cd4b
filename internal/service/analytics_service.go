package service

import (
	"time"
	"unicode/utf8"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

const (
	// DefaultAnalyticsDays is used when the requested window is not allowed.
	DefaultAnalyticsDays = 60
	// trailingWindowDays is the fixed "recent" window of the per-article totals.
	trailingWindowDays = 30
	chartLabelRunes    = 30
)

var allowedAnalyticsDays = []int{30, 60, 90}

// NormalizeWindow snaps days to one of 30, 60 or 90; anything else becomes 60.
func NormalizeWindow(days int) int {
	for _, allowed := range allowedAnalyticsDays {
		if days == allowed {
			return days
		}
	}
	return DefaultAnalyticsDays
}

// AnalyticsService 负责从原始浏览记录中聚合后台统计数据，不做缓存。
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// DailyViewCount is the number of page views started on one UTC day.
type DailyViewCount struct {
	Date  string
	Count int64
}

// ArticleViewStat 描述文章的累计与近 30 天浏览量。
type ArticleViewStat struct {
	ID         uint
	Title      string
	Slug       string
	TotalViews int64
	Views30d   int64 `gorm:"column:views30d"`
}

// DurationStats summarises closed page views.
type DurationStats struct {
	AvgDuration float64
	TotalViews  int64
	TotalTime   int64
}

// ArticleDurationStat 描述文章的平均阅读时长。
type ArticleDurationStat struct {
	ID          uint
	Title       string
	Slug        string
	TotalViews  int64
	AvgDuration float64
}

// ChartSeries is a labels/data pair ready for a chart widget.
type ChartSeries struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// Dashboard bundles everything the analytics page shows.
type Dashboard struct {
	Days             int
	ViewsOverTime    []DailyViewCount
	ArticleStats     []ArticleViewStat
	TimeStats        DurationStats
	ArticleTimeStats []ArticleDurationStat
}

// ViewsChart formats the time series for charting.
func (d Dashboard) ViewsChart() ChartSeries {
	series := ChartSeries{Labels: make([]string, 0, len(d.ViewsOverTime)), Data: make([]int64, 0, len(d.ViewsOverTime))}
	for _, point := range d.ViewsOverTime {
		series.Labels = append(series.Labels, point.Date)
		series.Data = append(series.Data, point.Count)
	}
	return series
}

// ArticleViewsChart formats all-time article views with shortened titles.
func (d Dashboard) ArticleViewsChart() ChartSeries {
	series := ChartSeries{Labels: make([]string, 0, len(d.ArticleStats)), Data: make([]int64, 0, len(d.ArticleStats))}
	for _, stat := range d.ArticleStats {
		series.Labels = append(series.Labels, truncateLabel(stat.Title))
		series.Data = append(series.Data, stat.TotalViews)
	}
	return series
}

// Dashboard 汇总指定窗口内的全部统计。
func (s *AnalyticsService) Dashboard(days int, now time.Time) (Dashboard, error) {
	days = NormalizeWindow(days)
	dashboard := Dashboard{Days: days}

	var err error
	if dashboard.ViewsOverTime, err = s.ViewsOverTime(days, now); err != nil {
		return dashboard, err
	}
	if dashboard.ArticleStats, err = s.ArticleViewStats(now); err != nil {
		return dashboard, err
	}
	if dashboard.TimeStats, err = s.SiteDurationStats(days, now); err != nil {
		return dashboard, err
	}
	if dashboard.ArticleTimeStats, err = s.ArticleDurationStats(); err != nil {
		return dashboard, err
	}
	return dashboard, nil
}

// ViewsOverTime counts page view starts per day inside the window, ascending.
// Days without views are absent.
func (s *AnalyticsService) ViewsOverTime(days int, now time.Time) ([]DailyViewCount, error) {
	since := windowStart(now, NormalizeWindow(days))

	var points []DailyViewCount
	if err := s.db.Model(&db.PageView{}).
		Select("DATE(started_at) AS date, COUNT(*) AS count").
		Where("started_at >= ?", since).
		Group("DATE(started_at)").
		Order("date ASC").
		Scan(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// ArticleViewStats returns all-time and trailing 30-day article views,
// including articles that were never viewed.
func (s *AnalyticsService) ArticleViewStats(now time.Time) ([]ArticleViewStat, error) {
	since := windowStart(now, trailingWindowDays)

	var stats []ArticleViewStat
	if err := s.db.Table("articles a").
		Select("a.id, a.title, a.slug, COUNT(av.id) AS total_views, "+
			"COUNT(CASE WHEN av.started_at >= ? THEN 1 END) AS views30d", since).
		Joins("LEFT JOIN article_views av ON av.article_id = a.id").
		Group("a.id, a.title, a.slug").
		Order("total_views DESC").
		Order("a.id ASC").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// SiteDurationStats aggregates closed page views that started inside the window.
func (s *AnalyticsService) SiteDurationStats(days int, now time.Time) (DurationStats, error) {
	since := windowStart(now, NormalizeWindow(days))

	var stats DurationStats
	if err := s.db.Model(&db.PageView{}).
		Select("COALESCE(AVG(duration_seconds), 0) AS avg_duration, "+
			"COUNT(*) AS total_views, COALESCE(SUM(duration_seconds), 0) AS total_time").
		Where("duration_seconds IS NOT NULL").
		Where("started_at >= ?", since).
		Scan(&stats).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// ArticleDurationStats averages closed article views per article. Articles
// without a closed view are omitted.
func (s *AnalyticsService) ArticleDurationStats() ([]ArticleDurationStat, error) {
	var stats []ArticleDurationStat
	if err := s.db.Table("articles a").
		Select("a.id, a.title, a.slug, COUNT(av.id) AS total_views, COALESCE(AVG(av.duration_seconds), 0) AS avg_duration").
		Joins("JOIN article_views av ON av.article_id = a.id AND av.duration_seconds IS NOT NULL").
		Group("a.id, a.title, a.slug").
		Having("COUNT(av.id) > 0").
		Order("total_views DESC").
		Order("a.id ASC").
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func windowStart(now time.Time, days int) time.Time {
	return now.UTC().AddDate(0, 0, -days)
}

func truncateLabel(title string) string {
	if utf8.RuneCountInString(title) <= chartLabelRunes {
		return title
	}
	return string([]rune(title)[:chartLabelRunes]) + "..."
}
