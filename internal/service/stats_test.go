package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/service"
)

var _ = Describe("StatsService", func() {
	var (
		ctx      context.Context
		comments *mockCommentStore
		svc      service.StatsService
	)

	BeforeEach(func() {
		ctx = context.Background()
		comments = &mockCommentStore{}
		svc = service.NewStatsService(comments)
	})

	Describe("Stats", func() {
		It("returns the store totals", func() {
			comments.statsFn = func(_ context.Context, accountID int64, channelID string) (model.CommentStats, error) {
				Expect(accountID).To(Equal(int64(7)))
				Expect(channelID).To(Equal("UC-test"))
				return model.CommentStats{Total: 10, Replied: 6, Pending: 3, Failed: 1}, nil
			}

			stats, err := svc.Stats(ctx, connectedAccount())
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(int64(10)))
			Expect(stats.SuccessRate()).To(Equal(60.0))
		})

		It("requires a connected channel", func() {
			account := connectedAccount()
			account.ChannelID = nil

			_, err := svc.Stats(ctx, account)
			Expect(err).To(MatchError(service.ErrNotConnected))
		})
	})

	Describe("WeeklyStats", func() {
		It("returns seven days oldest first with zero-filled gaps", func() {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			comments.dailyCountsFn = func(_ context.Context, _ int64, _ string, since time.Time) ([]model.DailyCount, error) {
				Expect(since).To(Equal(today.AddDate(0, 0, -6)))
				return []model.DailyCount{
					{Day: today, Comments: 4, Replies: 2},
					{Day: today.AddDate(0, 0, -3), Comments: 1, Replies: 1},
				}, nil
			}

			stats, err := svc.WeeklyStats(ctx, connectedAccount())
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(7))

			Expect(stats[6].Day).To(Equal(today.Weekday().String()[:3]))
			Expect(stats[6].Comments).To(Equal(int64(4)))
			Expect(stats[6].Replies).To(Equal(int64(2)))

			Expect(stats[3].Comments).To(Equal(int64(1)))
			Expect(stats[3].Replies).To(Equal(int64(1)))

			for _, i := range []int{0, 1, 2, 4, 5} {
				Expect(stats[i].Comments).To(BeZero())
				Expect(stats[i].Replies).To(BeZero())
			}
		})

		It("uses three-letter day names", func() {
			comments.dailyCountsFn = func(_ context.Context, _ int64, _ string, _ time.Time) ([]model.DailyCount, error) {
				return nil, nil
			}

			stats, err := svc.WeeklyStats(ctx, connectedAccount())
			Expect(err).NotTo(HaveOccurred())
			for _, day := range stats {
				Expect(day.Day).To(HaveLen(3))
				Expect([]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}).To(ContainElement(day.Day))
			}
		})
	})
})
