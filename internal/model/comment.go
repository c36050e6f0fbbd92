package model

import "time"

type CommentStatus string

const (
	CommentStatusPending CommentStatus = "pending"
	CommentStatusReplied CommentStatus = "replied"
	CommentStatusFailed  CommentStatus = "failed"
)

// Comment is one reconciled record per (account, channel, platform comment).
// Snapshot fields (Text, LikeCount, ...) are refreshed to the latest observed
// value on every merge; the workflow fields (Status, AIReply, RepliedAt) only
// move under the transition policy in the sync engine.
type Comment struct {
	CommentID string `json:"comment_id"`
	AccountID int64  `json:"account_id"`
	ChannelID string `json:"channel_id"`

	VideoID      string    `json:"video_id"`
	VideoTitle   *string   `json:"video_title,omitempty"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar *string   `json:"author_avatar,omitempty"`
	Text         string    `json:"text"`
	PublishedAt  time.Time `json:"published_at"`
	LikeCount    int       `json:"like_count"`

	Status    CommentStatus `json:"status"`
	AIReply   *string       `json:"ai_reply,omitempty"`
	RepliedAt *time.Time    `json:"replied_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentKey identifies a comment record uniquely.
type CommentKey struct {
	AccountID int64
	ChannelID string
	CommentID string
}

func (c *Comment) Key() CommentKey {
	return CommentKey{AccountID: c.AccountID, ChannelID: c.ChannelID, CommentID: c.CommentID}
}

// CommentStats aggregates record counts by workflow state for one channel.
type CommentStats struct {
	Total   int64 `json:"totalComments"`
	Replied int64 `json:"repliedComments"`
	Pending int64 `json:"pendingComments"`
	Failed  int64 `json:"failedReplies"`
}

// SuccessRate is the share of records that reached the replied state,
// in percent, rounded to two decimals.
func (s CommentStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	rate := float64(s.Replied) / float64(s.Total) * 100
	return float64(int(rate*100+0.5)) / 100
}

// DailyCount is one day's slice of the weekly activity aggregate.
type DailyCount struct {
	Day      time.Time `json:"-"`
	Comments int64     `json:"comments"`
	Replies  int64     `json:"replies"`
}
