package service

import (
	"time"

	"commentflow.app/engine/core/config"
	"commentflow.app/engine/internal/cache"
	"commentflow.app/engine/internal/drafting"
	"commentflow.app/engine/internal/platform"
	"commentflow.app/engine/internal/store"
)

type Services struct {
	stores     *store.Stores
	txRunner   TxRunner
	source     platform.Source
	drafter    drafting.Drafter
	channels   *cache.ChannelCache
	googleCfg  config.GoogleConfig
	sessionTTL time.Duration
}

func NewServices(
	stores *store.Stores,
	txRunner TxRunner,
	source platform.Source,
	drafter drafting.Drafter,
	channels *cache.ChannelCache,
	googleCfg config.GoogleConfig,
	sessionTTL time.Duration,
) *Services {
	return &Services{
		stores:     stores,
		txRunner:   txRunner,
		source:     source,
		drafter:    drafter,
		channels:   channels,
		googleCfg:  googleCfg,
		sessionTTL: sessionTTL,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Accounts(), s.stores.Sessions(), s.txRunner, s.googleCfg, s.sessionTTL)
}

func (s *Services) Channels() ChannelService {
	return NewChannelService(s.source, s.channels)
}

func (s *Services) Comments() CommentService {
	return NewCommentService(s.stores.Comments(), s.source, s.drafter)
}

func (s *Services) Stats() StatsService {
	return NewStatsService(s.stores.Comments())
}
