package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"commentflow.app/engine/internal/model"
)

type commentStore struct {
	q Querier
}

const commentColumns = `account_id, channel_id, comment_id, video_id, video_title,
	author_name, author_avatar, text, published_at, like_count,
	status, ai_reply, replied_at, created_at, updated_at`

func (s *commentStore) Get(ctx context.Context, key model.CommentKey) (*model.Comment, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE account_id = $1 AND channel_id = $2 AND comment_id = $3`,
		key.AccountID, key.ChannelID, key.CommentID)

	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

// Upsert merges one observation in a single statement. The (xmax = 0) check
// distinguishes a fresh insert from a conflict update, which is what the sync
// engine keys its auto-reply trigger on. replied_at is only ever moved
// forward from NULL; an established timestamp is never overwritten by a merge.
func (s *commentStore) Upsert(ctx context.Context, params CommentUpsert) (bool, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO comments (
			account_id, channel_id, comment_id, video_id, video_title,
			author_name, author_avatar, text, published_at, like_count,
			status, replied_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (account_id, channel_id, comment_id) DO UPDATE SET
			video_id = EXCLUDED.video_id,
			video_title = EXCLUDED.video_title,
			author_name = EXCLUDED.author_name,
			author_avatar = EXCLUDED.author_avatar,
			text = EXCLUDED.text,
			published_at = EXCLUDED.published_at,
			like_count = EXCLUDED.like_count,
			status = EXCLUDED.status,
			replied_at = COALESCE(comments.replied_at, EXCLUDED.replied_at),
			updated_at = now()
		RETURNING (xmax = 0) AS inserted`,
		params.Key.AccountID, params.Key.ChannelID, params.Key.CommentID,
		params.VideoID, params.VideoTitle, params.AuthorName, params.AuthorAvatar,
		params.Text, params.PublishedAt, params.LikeCount,
		string(params.Status), params.RepliedAt)

	var inserted bool
	if err := row.Scan(&inserted); err != nil {
		return false, fmt.Errorf("upserting comment: %w", err)
	}
	return inserted, nil
}

func (s *commentStore) SetReplied(ctx context.Context, key model.CommentKey, aiReply *string, repliedAt time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE comments
		SET status = $4, ai_reply = COALESCE($5, ai_reply), replied_at = $6, updated_at = now()
		WHERE account_id = $1 AND channel_id = $2 AND comment_id = $3`,
		key.AccountID, key.ChannelID, key.CommentID,
		string(model.CommentStatusReplied), aiReply, repliedAt)
	if err != nil {
		return fmt.Errorf("marking comment replied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *commentStore) SetFailed(ctx context.Context, key model.CommentKey) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE comments
		SET status = $4, updated_at = now()
		WHERE account_id = $1 AND channel_id = $2 AND comment_id = $3`,
		key.AccountID, key.ChannelID, key.CommentID,
		string(model.CommentStatusFailed))
	if err != nil {
		return fmt.Errorf("marking comment failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *commentStore) Delete(ctx context.Context, key model.CommentKey) error {
	tag, err := s.q.Exec(ctx, `
		DELETE FROM comments
		WHERE account_id = $1 AND channel_id = $2 AND comment_id = $3`,
		key.AccountID, key.ChannelID, key.CommentID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *commentStore) ListByVideo(ctx context.Context, accountID int64, videoID string) ([]model.Comment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE account_id = $1 AND video_id = $2
		ORDER BY published_at DESC`,
		accountID, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows)
}

func (s *commentStore) ListByChannel(ctx context.Context, accountID int64, channelID string, status *model.CommentStatus, limit int32) ([]model.Comment, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows pgx.Rows
	var err error
	if status != nil {
		rows, err = s.q.Query(ctx, `
			SELECT `+commentColumns+`
			FROM comments
			WHERE account_id = $1 AND channel_id = $2 AND status = $3
			ORDER BY published_at DESC
			LIMIT $4`,
			accountID, channelID, string(*status), limit)
	} else {
		rows, err = s.q.Query(ctx, `
			SELECT `+commentColumns+`
			FROM comments
			WHERE account_id = $1 AND channel_id = $2
			ORDER BY published_at DESC
			LIMIT $3`,
			accountID, channelID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows)
}

func (s *commentStore) Stats(ctx context.Context, accountID int64, channelID string) (model.CommentStats, error) {
	row := s.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'replied'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'failed')
		FROM comments
		WHERE account_id = $1 AND channel_id = $2`,
		accountID, channelID)

	var stats model.CommentStats
	if err := row.Scan(&stats.Total, &stats.Replied, &stats.Pending, &stats.Failed); err != nil {
		return model.CommentStats{}, fmt.Errorf("aggregating comment stats: %w", err)
	}
	return stats, nil
}

func (s *commentStore) DailyCounts(ctx context.Context, accountID int64, channelID string, since time.Time) ([]model.DailyCount, error) {
	rows, err := s.q.Query(ctx, `
		SELECT
			date_trunc('day', published_at) AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'replied')
		FROM comments
		WHERE account_id = $1 AND channel_id = $2 AND published_at >= $3
		GROUP BY day
		ORDER BY day`,
		accountID, channelID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []model.DailyCount
	for rows.Next() {
		var c model.DailyCount
		if err := rows.Scan(&c.Day, &c.Comments, &c.Replies); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func scanComment(row pgx.Row) (*model.Comment, error) {
	var c model.Comment
	var status string
	err := row.Scan(
		&c.AccountID, &c.ChannelID, &c.CommentID, &c.VideoID, &c.VideoTitle,
		&c.AuthorName, &c.AuthorAvatar, &c.Text, &c.PublishedAt, &c.LikeCount,
		&status, &c.AIReply, &c.RepliedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = model.CommentStatus(status)
	return &c, nil
}

func scanComments(rows pgx.Rows) ([]model.Comment, error) {
	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
