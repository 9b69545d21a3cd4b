package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/songbird/internal/db"
	"gorm.io/gorm"
)

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Articles int
	About    bool
}

func placeholderArticles() []ArticleInput {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []ArticleInput{
		{
			Title:         "Finding My Voice: A Journey Through Journalism",
			AuthorName:    DefaultAuthorName,
			Category:      db.CategorySongbirdMagazine,
			PublishedDate: date(2024, time.January, 15),
			ContentHTML: `<h2>Starting Out</h2>
<p>When I first began my journey as a <strong>journalist</strong>, I had no idea where it would lead me. The world of storytelling opened up in ways I never imagined.</p>
<p>Here are some key lessons I've learned:</p>
<ul>
<li>Always verify your sources</li>
<li>Write with empathy and understanding</li>
<li>Never stop learning</li>
</ul>
<p><em>Journalism is not just about reporting facts. It's about connecting with people and sharing their stories.</em></p>
<p>This journey has been transformative, and I'm excited to share more stories with you.</p>`,
		},
		{
			Title:         "The Weight of Words: Reflections on Writing",
			AuthorName:    DefaultAuthorName,
			Category:      db.CategoryAngstyEntries,
			PublishedDate: date(2024, time.February, 20),
			ContentHTML: `<h2>Late Night Thoughts</h2>
<p>Sometimes, the words don't come easily. There's a <u>weight</u> to what we write, especially when it comes from a place of vulnerability.</p>
<p>I've been thinking a lot about:</p>
<ol>
<li>How our words impact others</li>
<li>The responsibility that comes with storytelling</li>
<li>Finding balance between honesty and kindness</li>
</ol>
<p><strong>Writing is both a gift and a burden.</strong></p>
<p>But it's a burden I'm grateful to carry.</p>`,
		},
		{
			Title:         "Quick Tips for Aspiring Journalists",
			AuthorName:    DefaultAuthorName,
			Category:      db.CategoryQuickReads,
			PublishedDate: date(2024, time.March, 10),
			ContentHTML: `<h2>Five Essential Tips</h2>
<p>Here are some <strong>quick tips</strong> for anyone starting their journalism journey:</p>
<ol>
<li><strong>Read widely:</strong> Expand your horizons beyond your beat</li>
<li><strong>Practice daily:</strong> Write something every day, even if it's just a paragraph</li>
<li><strong>Build relationships:</strong> Networking is crucial in this field</li>
<li><strong>Stay curious:</strong> Ask questions, always</li>
<li><strong>Be ethical:</strong> Your integrity is your most valuable asset</li>
</ol>
<p><em>Remember: Every great journalist started somewhere. Your voice matters.</em></p>`,
		},
	}
}

// Seed fills an empty database with placeholder articles and the default
// about page. Tables that already hold rows are left alone.
func Seed(gdb *gorm.DB) (SeedResult, error) {
	var result SeedResult

	articles := NewArticleService(gdb)
	count, err := articles.Count()
	if err != nil {
		return result, fmt.Errorf("count articles: %w", err)
	}
	if count == 0 {
		for _, input := range placeholderArticles() {
			if _, err := articles.Create(input); err != nil {
				return result, fmt.Errorf("seed article %q: %w", input.Title, err)
			}
			result.Articles++
		}
	}

	var about db.AboutPage
	err = gdb.Order("id ASC").First(&about).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		page := DefaultAboutPage()
		page.UpdatedAt = time.Now().UTC()
		if err := gdb.Create(&page).Error; err != nil {
			return result, fmt.Errorf("seed about page: %w", err)
		}
		result.About = true
	case err != nil:
		return result, fmt.Errorf("load about page: %w", err)
	}

	return result, nil
}
