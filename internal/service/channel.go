package service

import (
	"context"
	"errors"
	"fmt"

	"commentflow.app/engine/internal/cache"
	"commentflow.app/engine/internal/model"
	"commentflow.app/engine/internal/platform"
)

// ChannelService exposes the account's live platform view: channel identity
// and the latest uploads.
type ChannelService interface {
	Channel(ctx context.Context, account *model.Account) (*platform.Channel, error)
	Videos(ctx context.Context, account *model.Account, maxResults int64) ([]platform.Video, error)
}

type channelService struct {
	source   platform.Source
	channels *cache.ChannelCache
}

func NewChannelService(source platform.Source, channels *cache.ChannelCache) ChannelService {
	return &channelService{source: source, channels: channels}
}

func (s *channelService) Channel(ctx context.Context, account *model.Account) (*platform.Channel, error) {
	if !account.Connected() {
		return nil, ErrNotConnected
	}

	if channel, ok := s.channels.Get(ctx, account.ID); ok {
		return channel, nil
	}

	channel, err := s.source.Channel(ctx, account.Credentials)
	if err != nil {
		if errors.Is(err, platform.ErrNoChannel) || errors.Is(err, platform.ErrNoCredentials) {
			return nil, ErrNotConnected
		}
		return nil, fmt.Errorf("resolving channel: %w", err)
	}

	s.channels.Set(ctx, account.ID, channel)
	return channel, nil
}

// Videos returns the first page of the account's uploads, newest first as the
// platform orders them.
func (s *channelService) Videos(ctx context.Context, account *model.Account, maxResults int64) ([]platform.Video, error) {
	channel, err := s.Channel(ctx, account)
	if err != nil {
		return nil, err
	}

	videos, _, err := s.source.ListVideos(ctx, account.Credentials, channel.UploadsID, "", maxResults)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	return videos, nil
}
