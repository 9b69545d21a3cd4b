package handler

import (
	"time"

	"github.com/songbird/internal/service"
)

type analyticsProvider interface {
	Dashboard(days int, now time.Time) (service.Dashboard, error)
}
