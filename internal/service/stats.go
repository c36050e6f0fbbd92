package service

import (
	"context"
	"fmt"
	"time"

	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/store"
)

// WeeklyStat is one day in the last-7-days activity series.
type WeeklyStat struct {
	Day      string `json:"day"`
	Comments int64  `json:"comments"`
	Replies  int64  `json:"replies"`
}

type StatsService interface {
	Stats(ctx context.Context, account *model.Account) (model.CommentStats, error)
	WeeklyStats(ctx context.Context, account *model.Account) ([]WeeklyStat, error)
}

type statsService struct {
	comments store.CommentStore
}

func NewStatsService(comments store.CommentStore) StatsService {
	return &statsService{comments: comments}
}

func (s *statsService) Stats(ctx context.Context, account *model.Account) (model.CommentStats, error) {
	if account.ChannelID == nil {
		return model.CommentStats{}, ErrNotConnected
	}

	stats, err := s.comments.Stats(ctx, account.ID, *account.ChannelID)
	if err != nil {
		return model.CommentStats{}, fmt.Errorf("counting comments: %w", err)
	}
	return stats, nil
}

// WeeklyStats returns the last 7 days oldest first, with zero rows for days
// that saw no comments.
func (s *statsService) WeeklyStats(ctx context.Context, account *model.Account) ([]WeeklyStat, error) {
	if account.ChannelID == nil {
		return nil, ErrNotConnected
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -6)

	counts, err := s.comments.DailyCounts(ctx, account.ID, *account.ChannelID, since)
	if err != nil {
		return nil, fmt.Errorf("aggregating daily counts: %w", err)
	}

	byDay := make(map[string]model.DailyCount, len(counts))
	for _, c := range counts {
		byDay[c.Day.UTC().Format("2006-01-02")] = c
	}

	result := make([]WeeklyStat, 0, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, i-6)
		c := byDay[day.Format("2006-01-02")]
		result = append(result, WeeklyStat{
			Day:      day.Weekday().String()[:3],
			Comments: c.Comments,
			Replies:  c.Replies,
		})
	}
	return result, nil
}
