package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/polysign/mirsinn/internal/domain"
)

// fetchRecentArticles scans the prior recentDays calendar dates and collects
// every article referenced by their persisted day and question documents.
// Missing days are skipped silently; duplicates across dates are retained
// (the exclusion set deduplicates later).
func (j *DailyJob) fetchRecentArticles(ctx context.Context, now time.Time) []domain.RecentArticle {
	var recent []domain.RecentArticle

	for d := 1; d <= j.cfg.RecentDays; d++ {
		key := domain.DateKey(now.AddDate(0, 0, -d), j.cfg.Location)

		raw, ok, err := j.store.Get(ctx, dayPath(key))
		if err != nil {
			j.logger.Warn("read recent day failed", "dateKey", key, "error", err)
			continue
		}
		if ok {
			var day domain.DayDocument
			if err := json.Unmarshal(raw, &day); err == nil {
				if art := recentFromArticle(key, day.Article); art != nil {
					recent = append(recent, *art)
				}
			}
		}

		docs, err := j.store.List(ctx, questionsPath(key))
		if err != nil {
			j.logger.Warn("list recent questions failed", "dateKey", key, "error", err)
			continue
		}
		for _, doc := range docs {
			var question domain.QuestionDocument
			if err := json.Unmarshal(doc, &question); err != nil {
				continue
			}
			if art := recentFromArticle(key, question.Article); art != nil {
				recent = append(recent, *art)
			}
		}
	}

	return recent
}

func recentFromArticle(dateKey string, article domain.ArticleRef) *domain.RecentArticle {
	title := article.Title.Normalize()
	if title == "" && article.URL == "" {
		return nil
	}
	return &domain.RecentArticle{DateKey: dateKey, Title: title, URL: article.URL}
}
