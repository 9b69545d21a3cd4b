// Package metrics declares the Prometheus collectors for the tracking subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikeToggles counts like toggles by resulting state ("liked" / "unliked").
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songbird",
		Name:      "like_toggles_total",
		Help:      "Like toggles by resulting state.",
	}, []string{"result"})

	// Comments counts comment submissions by outcome.
	Comments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songbird",
		Name:      "comment_submissions_total",
		Help:      "Comment submissions by outcome.",
	}, []string{"outcome"})

	// ViewsStarted counts opened view records by kind ("page" / "article").
	ViewsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songbird",
		Name:      "views_started_total",
		Help:      "View records opened.",
	}, []string{"kind"})

	// ViewsEnded counts accepted end calls by kind.
	ViewsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songbird",
		Name:      "views_ended_total",
		Help:      "View records closed.",
	}, []string{"kind"})

	// ViewDuration observes the clamped durations written by end calls.
	ViewDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "songbird",
		Name:      "view_duration_seconds",
		Help:      "Clamped view durations reported on end.",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600, 7200},
	}, []string{"kind"})

	// Subscriptions counts subscribe attempts by outcome.
	Subscriptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "songbird",
		Name:      "subscriptions_total",
		Help:      "Subscribe attempts by outcome.",
	}, []string{"outcome"})
)
