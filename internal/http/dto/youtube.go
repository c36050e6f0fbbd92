package dto

// ReplyRequest posts a manual reply to a tracked comment.
type ReplyRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
	Text      string `json:"reply_text" binding:"required"`
}

// DeleteRequest removes a comment on the platform and from tracking.
type DeleteRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
}

// RateRequest applies a like/none/dislike rating to a comment.
type RateRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
	Rating    string `json:"rating" binding:"required"`
}

// RetryRequest re-drives the auto-reply flow for a failed comment.
type RetryRequest struct {
	CommentID string `json:"comment_id" binding:"required"`
}
