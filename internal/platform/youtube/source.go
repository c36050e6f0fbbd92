package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"commentflow.app/engine/core/config"
	"commentflow.app/engine/internal/platform"
)

// Source implements platform.Source against the YouTube Data API v3.
// An API service is built per call from the account's stored token JSON;
// the oauth2 token source transparently refreshes expired access tokens.
type Source struct {
	oauth *oauth2.Config
}

var _ platform.Source = (*Source)(nil)

func NewSource(cfg config.GoogleConfig) *Source {
	return &Source{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
	}
}

func (s *Source) Channel(ctx context.Context, credentials json.RawMessage) (*platform.Channel, error) {
	svc, err := s.service(ctx, credentials)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Channels.List([]string{"snippet", "contentDetails"}).
		Mine(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, platform.ErrNoChannel
	}

	item := resp.Items[0]
	channel := &platform.Channel{
		ID:    item.Id,
		Title: item.Snippet.Title,
	}
	if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
		channel.Thumbnail = item.Snippet.Thumbnails.Default.Url
	}
	if item.ContentDetails != nil && item.ContentDetails.RelatedPlaylists != nil {
		channel.UploadsID = item.ContentDetails.RelatedPlaylists.Uploads
	}
	return channel, nil
}

func (s *Source) ListVideos(ctx context.Context, credentials json.RawMessage, uploadsID, pageToken string, pageSize int64) ([]platform.Video, string, error) {
	svc, err := s.service(ctx, credentials)
	if err != nil {
		return nil, "", err
	}

	call := svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(uploadsID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("listing playlist items: %w", err)
	}

	videos := make([]platform.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil || item.Snippet == nil {
			continue
		}
		video := platform.Video{
			ID:          item.ContentDetails.VideoId,
			Title:       item.Snippet.Title,
			PublishedAt: parseTimestamp(item.ContentDetails.VideoPublishedAt),
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
			video.Thumbnail = item.Snippet.Thumbnails.Default.Url
		}
		videos = append(videos, video)
	}
	return videos, resp.NextPageToken, nil
}

func (s *Source) ListThreads(ctx context.Context, credentials json.RawMessage, videoID string, pageSize int64) ([]platform.Thread, error) {
	svc, err := s.service(ctx, credentials)
	if err != nil {
		return nil, err
	}

	resp, err := svc.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(pageSize).
		Context(ctx).
		Do()
	if err != nil {
		if hasReason(err, "commentsDisabled") {
			return nil, fmt.Errorf("video %s: %w", videoID, platform.ErrCommentsDisabled)
		}
		return nil, fmt.Errorf("listing comment threads: %w", err)
	}

	threads := make([]platform.Thread, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		top := item.Snippet.TopLevelComment
		sn := top.Snippet

		thread := platform.Thread{
			CommentID:    top.Id,
			VideoID:      videoID,
			Text:         sn.TextDisplay,
			AuthorName:   sn.AuthorDisplayName,
			AuthorAvatar: sn.AuthorProfileImageUrl,
			PublishedAt:  parseTimestamp(sn.PublishedAt),
			LikeCount:    int(sn.LikeCount),
			ReplyCount:   int(item.Snippet.TotalReplyCount),
		}
		if sn.AuthorChannelId != nil {
			thread.AuthorChannelID = sn.AuthorChannelId.Value
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func (s *Source) VideoStats(ctx context.Context, credentials json.RawMessage, videoID string) (platform.VideoStats, error) {
	svc, err := s.service(ctx, credentials)
	if err != nil {
		return platform.VideoStats{}, err
	}

	resp, err := svc.Videos.List([]string{"statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return platform.VideoStats{}, fmt.Errorf("listing video statistics: %w", err)
	}
	if len(resp.Items) == 0 {
		return platform.VideoStats{}, fmt.Errorf("video %s: %w", videoID, platform.ErrVideoNotFound)
	}

	stats := resp.Items[0].Statistics
	if stats == nil {
		return platform.VideoStats{}, nil
	}
	return platform.VideoStats{
		Views:    int64(stats.ViewCount),
		Likes:    int64(stats.LikeCount),
		Comments: int64(stats.CommentCount),
	}, nil
}

func (s *Source) PostReply(ctx context.Context, credentials json.RawMessage, commentID, text string) error {
	svc, err := s.service(ctx, credentials)
	if err != nil {
		return err
	}

	_, err = svc.Comments.Insert([]string{"snippet"}, &youtube.Comment{
		Snippet: &youtube.CommentSnippet{
			ParentId:     commentID,
			TextOriginal: text,
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("posting reply: %w", err)
	}
	return nil
}

func (s *Source) DeleteComment(ctx context.Context, credentials json.RawMessage, commentID string) error {
	svc, err := s.service(ctx, credentials)
	if err != nil {
		return err
	}

	if err := svc.Comments.Delete(commentID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

// RateComment hits the comments/rate endpoint directly; the generated client
// does not expose it.
func (s *Source) RateComment(ctx context.Context, credentials json.RawMessage, commentID string, rating platform.Rating) error {
	client, err := s.httpClient(ctx, credentials)
	if err != nil {
		return err
	}

	endpoint := "https://youtube.googleapis.com/youtube/v3/comments/rate?" + url.Values{
		"id":     {commentID},
		"rating": {string(rating)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building rate request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("rating comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("rating comment: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (s *Source) service(ctx context.Context, credentials json.RawMessage) (*youtube.Service, error) {
	client, err := s.httpClient(ctx, credentials)
	if err != nil {
		return nil, err
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return svc, nil
}

func (s *Source) httpClient(ctx context.Context, credentials json.RawMessage) (*http.Client, error) {
	if len(credentials) == 0 {
		return nil, platform.ErrNoCredentials
	}

	var token oauth2.Token
	if err := json.Unmarshal(credentials, &token); err != nil {
		return nil, fmt.Errorf("parsing stored credentials: %w", err)
	}

	return oauth2.NewClient(ctx, s.oauth.TokenSource(ctx, &token)), nil
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func hasReason(err error, reason string) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == reason {
			return true
		}
	}
	return false
}
