package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/songbird/internal/config"
	"github.com/songbird/internal/db"
	"github.com/songbird/internal/service"
	"gorm.io/gorm"
)

// 测试数据生成器: 为分析面板填充模拟访问数据
func main() {
	days := flag.Int("days", 90, "how many days of history to generate")
	visitors := flag.Int("visitors", 40, "number of simulated visitors")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("init database: ", err)
	}

	if _, err := service.Seed(db.DB); err != nil {
		log.Fatal("seed database: ", err)
	}

	gen := newTrafficGenerator(db.DB, rand.New(rand.NewSource(*seed)), time.Now().UTC())
	summary, err := gen.Generate(*days, *visitors)
	if err != nil {
		log.Fatal("generate traffic: ", err)
	}

	fmt.Printf("generated %d page views, %d article views and %d likes across %d days\n",
		summary.PageViews, summary.ArticleViews, summary.Likes, *days)
}

var (
	paths      = []string{"/", "/about", "/archive", "/songbird-magazine", "/angsty-entries", "/quick-reads", "/subscribe"}
	referrers  = []string{"", "https://www.google.com/", "https://twitter.com/", "https://news.ycombinator.com/"}
	userAgents = []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/126.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148",
	}
)

type trafficSummary struct {
	PageViews    int
	ArticleViews int
	Likes        int
}

type trafficGenerator struct {
	db  *gorm.DB
	rng *rand.Rand
	now time.Time
}

func newTrafficGenerator(gdb *gorm.DB, rng *rand.Rand, now time.Time) *trafficGenerator {
	return &trafficGenerator{db: gdb, rng: rng, now: now}
}

// Generate writes simulated visits for the trailing window. Roughly one in
// five views is left open, as if the closing beacon never arrived.
func (g *trafficGenerator) Generate(days, visitors int) (trafficSummary, error) {
	var summary trafficSummary
	if days <= 0 || visitors <= 0 {
		return summary, nil
	}

	var articles []db.Article
	if err := g.db.Find(&articles).Error; err != nil {
		return summary, err
	}

	var pageViews []db.PageView
	var articleViews []db.ArticleView
	var likes []db.Like

	for i := 0; i < visitors; i++ {
		token := uuid.NewString()
		agent := userAgents[g.rng.Intn(len(userAgents))]
		visits := 1 + g.rng.Intn(6)

		for v := 0; v < visits; v++ {
			started := g.now.Add(-time.Duration(g.rng.Int63n(int64(days) * int64(24*time.Hour))))
			view := db.PageView{
				ViewerToken: token,
				Path:        paths[g.rng.Intn(len(paths))],
				UserAgent:   &agent,
				StartedAt:   started,
			}
			if ref := referrers[g.rng.Intn(len(referrers))]; ref != "" {
				view.Referrer = &ref
			}
			view.DurationSeconds = g.duration(600)
			pageViews = append(pageViews, view)

			if len(articles) == 0 {
				continue
			}
			article := articles[g.rng.Intn(len(articles))]
			pageViews = append(pageViews, db.PageView{
				ViewerToken:     token,
				Path:            "/article/" + article.Slug,
				UserAgent:       &agent,
				StartedAt:       started.Add(time.Minute),
				DurationSeconds: g.duration(1800),
			})
			articleViews = append(articleViews, db.ArticleView{
				ArticleID:       article.ID,
				ViewerToken:     token,
				StartedAt:       started.Add(time.Minute),
				DurationSeconds: g.duration(1800),
			})
		}

		for _, article := range articles {
			if g.rng.Intn(4) == 0 {
				likes = append(likes, db.Like{ArticleID: article.ID, ViewerToken: token})
			}
		}
	}

	err := g.db.Transaction(func(tx *gorm.DB) error {
		if len(pageViews) > 0 {
			if err := tx.CreateInBatches(pageViews, 200).Error; err != nil {
				return err
			}
		}
		if len(articleViews) > 0 {
			if err := tx.CreateInBatches(articleViews, 200).Error; err != nil {
				return err
			}
		}
		if len(likes) > 0 {
			if err := tx.CreateInBatches(likes, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return trafficSummary{}, err
	}

	summary.PageViews = len(pageViews)
	summary.ArticleViews = len(articleViews)
	summary.Likes = len(likes)
	return summary, nil
}

func (g *trafficGenerator) duration(max int) *int {
	if g.rng.Intn(5) == 0 {
		return nil
	}
	d := g.rng.Intn(max + 1)
	return &d
}
