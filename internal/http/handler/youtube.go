package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"commentflow.app/engine/internal/http/dto"
	"commentflow.app/engine/internal/http/middleware"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/service"
)

const defaultVideoPageSize = 25

type YouTubeHandler struct {
	channelService service.ChannelService
	commentService service.CommentService
	statsService   service.StatsService
}

func NewYouTubeHandler(
	channelService service.ChannelService,
	commentService service.CommentService,
	statsService service.StatsService,
) *YouTubeHandler {
	return &YouTubeHandler{
		channelService: channelService,
		commentService: commentService,
		statsService:   statsService,
	}
}

func (h *YouTubeHandler) Videos(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	videos, err := h.channelService.Videos(ctx, account, defaultVideoPageSize)
	if err != nil {
		h.respondError(c, err, "failed to list videos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *YouTubeHandler) Comments(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)
	videoID := c.Param("video_id")

	result, err := h.commentService.ListForVideo(ctx, account, videoID)
	if err != nil {
		h.respondError(c, err, "failed to list comments")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *YouTubeHandler) VideoStats(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)
	videoID := c.Param("video_id")

	stats, err := h.commentService.VideoStats(ctx, account, videoID)
	if err != nil {
		h.respondError(c, err, "failed to load video stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *YouTubeHandler) Reply(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	var req dto.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_id and reply_text are required"})
		return
	}

	if err := h.commentService.Reply(ctx, account, req.CommentID, req.Text); err != nil {
		h.respondError(c, err, "failed to post reply")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reply posted"})
}

func (h *YouTubeHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	var req dto.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_id is required"})
		return
	}

	if err := h.commentService.Delete(ctx, account, req.CommentID); err != nil {
		h.respondError(c, err, "failed to delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

func (h *YouTubeHandler) Rate(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	var req dto.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_id and rating are required"})
		return
	}

	if err := h.commentService.Rate(ctx, account, req.CommentID, platform.Rating(req.Rating)); err != nil {
		h.respondError(c, err, "failed to rate comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rating applied"})
}

func (h *YouTubeHandler) Retry(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	var req dto.RetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_id is required"})
		return
	}

	comment, err := h.commentService.Retry(ctx, account, req.CommentID)
	if err != nil {
		h.respondError(c, err, "failed to retry reply")
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *YouTubeHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	stats, err := h.statsService.Stats(ctx, account)
	if err != nil {
		h.respondError(c, err, "failed to load stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalComments":   stats.Total,
		"repliedComments": stats.Replied,
		"pendingComments": stats.Pending,
		"failedReplies":   stats.Failed,
		"successRate":     stats.SuccessRate(),
	})
}

func (h *YouTubeHandler) WeeklyStats(c *gin.Context) {
	ctx := c.Request.Context()
	account := middleware.Account(c)

	stats, err := h.statsService.WeeklyStats(ctx, account)
	if err != nil {
		h.respondError(c, err, "failed to load weekly stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *YouTubeHandler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotConnected):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no connected channel for this account"})
	case errors.Is(err, service.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
	case errors.Is(err, service.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
	case errors.Is(err, service.ErrNotFailed):
		c.JSON(http.StatusConflict, gin.H{"error": "comment is not in a failed state"})
	case errors.Is(err, service.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be like, none, or dislike"})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
