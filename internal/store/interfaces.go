package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"commentflow.app/engine/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// CommentUpsert carries the fields of one merge pass over a comment record.
// Status and RepliedAt are the outputs of the engine's transition resolution;
// everything else is the refreshed content snapshot.
type CommentUpsert struct {
	Key model.CommentKey

	VideoID      string
	VideoTitle   *string
	AuthorName   string
	AuthorAvatar *string
	Text         string
	PublishedAt  time.Time
	LikeCount    int

	Status    model.CommentStatus
	RepliedAt *time.Time // only set when the resolution newly established it
}

// CommentStore defines the contract for comment record access.
// Upsert must be a single atomic statement keyed on (account, channel, comment)
// so concurrent merges cannot lose updates.
type CommentStore interface {
	Get(ctx context.Context, key model.CommentKey) (*model.Comment, error)
	// Upsert merges one observation. Reports whether the record was freshly
	// inserted, which is the engine's auto-reply trigger.
	Upsert(ctx context.Context, params CommentUpsert) (inserted bool, err error)
	SetReplied(ctx context.Context, key model.CommentKey, aiReply *string, repliedAt time.Time) error
	SetFailed(ctx context.Context, key model.CommentKey) error
	Delete(ctx context.Context, key model.CommentKey) error
	ListByVideo(ctx context.Context, accountID int64, videoID string) ([]model.Comment, error)
	ListByChannel(ctx context.Context, accountID int64, channelID string, status *model.CommentStatus, limit int32) ([]model.Comment, error)
	Stats(ctx context.Context, accountID int64, channelID string) (model.CommentStats, error)
	// DailyCounts aggregates per-day totals and replied counts for records
	// published at or after since.
	DailyCounts(ctx context.Context, accountID int64, channelID string, since time.Time) ([]model.DailyCount, error)
}

// AccountStore defines the contract for connected account access
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	UpdateCredentials(ctx context.Context, id int64, credentials json.RawMessage) error
	UpdateChannelID(ctx context.Context, id int64, channelID string) error
	List(ctx context.Context) ([]model.Account, error)
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context) error
}
