package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"commentflow.app/engine/internal/http/handler"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/service"
)

var _ = Describe("YouTubeHandler", func() {
	var (
		router   *gin.Engine
		channels *mockChannelService
		comments *mockCommentService
		stats    *mockStatsService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		channels = &mockChannelService{}
		comments = &mockCommentService{}
		stats = &mockStatsService{}

		h := handler.NewYouTubeHandler(channels, comments, stats)
		router = gin.New()
		group := router.Group("/youtube", fakeAuth(testAccount()))
		group.GET("/videos", h.Videos)
		group.GET("/comments/:video_id", h.Comments)
		group.GET("/video-stats/:video_id", h.VideoStats)
		group.POST("/comments/reply", h.Reply)
		group.POST("/comments/rate", h.Rate)
		group.POST("/comments/retry", h.Retry)
		group.GET("/stats", h.Stats)
		group.GET("/weekly-stats", h.WeeklyStats)
	})

	postJSON := func(path string, payload any) *httptest.ResponseRecorder {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("GET /youtube/videos", func() {
		It("returns the uploads list", func() {
			channels.videosFn = func(_ context.Context, _ *model.Account, _ int64) ([]platform.Video, error) {
				return []platform.Video{{ID: "vid-1", Title: "First"}}, nil
			}

			w := get("/youtube/videos")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string][]platform.Video
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["videos"]).To(HaveLen(1))
			Expect(resp["videos"][0].ID).To(Equal("vid-1"))
		})

		It("maps a disconnected account to 400", func() {
			channels.videosFn = func(_ context.Context, _ *model.Account, _ int64) ([]platform.Video, error) {
				return nil, service.ErrNotConnected
			}

			Expect(get("/youtube/videos").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /youtube/comments/:video_id", func() {
		It("returns the reconciled view with the disabled flag", func() {
			comments.listForVideoFn = func(_ context.Context, _ *model.Account, videoID string) (*service.VideoComments, error) {
				Expect(videoID).To(Equal("vid-1"))
				return &service.VideoComments{CommentsDisabled: true}, nil
			}

			w := get("/youtube/comments/vid-1")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["comments_disabled"]).To(BeTrue())
		})
	})

	Describe("GET /youtube/video-stats/:video_id", func() {
		It("returns the combined counters", func() {
			comments.videoStatsFn = func(_ context.Context, _ *model.Account, videoID string) (*service.VideoStats, error) {
				Expect(videoID).To(Equal("vid-1"))
				return &service.VideoStats{
					Views:           1200,
					TotalComments:   5,
					RepliedComments: 2,
					SuccessRate:     50,
				}, nil
			}

			w := get("/youtube/video-stats/vid-1")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["views"]).To(BeEquivalentTo(1200))
			Expect(resp["totalComments"]).To(BeEquivalentTo(5))
			Expect(resp["repliedComments"]).To(BeEquivalentTo(2))
			Expect(resp["successRate"]).To(BeEquivalentTo(50))
		})

		It("maps unknown videos to 404", func() {
			comments.videoStatsFn = func(_ context.Context, _ *model.Account, _ string) (*service.VideoStats, error) {
				return nil, service.ErrVideoNotFound
			}

			Expect(get("/youtube/video-stats/ghost").Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /youtube/comments/reply", func() {
		It("requires comment_id and reply_text", func() {
			Expect(postJSON("/youtube/comments/reply", map[string]string{"comment_id": "c1"}).Code).
				To(Equal(http.StatusBadRequest))
		})

		It("posts the reply", func() {
			var got string
			comments.replyFn = func(_ context.Context, _ *model.Account, commentID, text string) error {
				got = commentID + ":" + text
				return nil
			}

			w := postJSON("/youtube/comments/reply", map[string]string{
				"comment_id": "c1",
				"reply_text": "thanks!",
			})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(Equal("c1:thanks!"))
		})

		It("maps unknown comments to 404", func() {
			comments.replyFn = func(_ context.Context, _ *model.Account, _, _ string) error {
				return service.ErrCommentNotFound
			}

			w := postJSON("/youtube/comments/reply", map[string]string{
				"comment_id": "ghost",
				"reply_text": "hello",
			})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("POST /youtube/comments/rate", func() {
		It("maps invalid ratings to 400", func() {
			comments.rateFn = func(_ context.Context, _ *model.Account, _ string, _ platform.Rating) error {
				return service.ErrInvalidRating
			}

			w := postJSON("/youtube/comments/rate", map[string]string{
				"comment_id": "c1",
				"rating":     "love",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /youtube/comments/retry", func() {
		It("maps a non-failed comment to 409", func() {
			comments.retryFn = func(_ context.Context, _ *model.Account, _ string) (*model.Comment, error) {
				return nil, service.ErrNotFailed
			}

			w := postJSON("/youtube/comments/retry", map[string]string{"comment_id": "c1"})
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("returns the re-driven record", func() {
			comments.retryFn = func(_ context.Context, _ *model.Account, commentID string) (*model.Comment, error) {
				return &model.Comment{CommentID: commentID, Status: model.CommentStatusReplied}, nil
			}

			w := postJSON("/youtube/comments/retry", map[string]string{"comment_id": "c1"})
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp model.Comment
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(model.CommentStatusReplied))
		})
	})

	Describe("GET /youtube/stats", func() {
		It("returns totals and the success rate", func() {
			stats.statsFn = func(_ context.Context, _ *model.Account) (model.CommentStats, error) {
				return model.CommentStats{Total: 4, Replied: 3, Pending: 1}, nil
			}

			w := get("/youtube/stats")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["totalComments"]).To(BeEquivalentTo(4))
			Expect(resp["successRate"]).To(BeEquivalentTo(75))
		})

		It("maps internal failures to 500", func() {
			stats.statsFn = func(_ context.Context, _ *model.Account) (model.CommentStats, error) {
				return model.CommentStats{}, errors.New("boom")
			}

			Expect(get("/youtube/stats").Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GET /youtube/weekly-stats", func() {
		It("returns the seven day series", func() {
			stats.weeklyStatsFn = func(_ context.Context, _ *model.Account) ([]service.WeeklyStat, error) {
				return []service.WeeklyStat{
					{Day: "Mon", Comments: 2, Replies: 1},
				}, nil
			}

			w := get("/youtube/weekly-stats")
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp []service.WeeklyStat
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveLen(1))
			Expect(resp[0].Day).To(Equal("Mon"))
		})
	})
})
