package social

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/apperr"
	"github.com/clipstream/clipstream/internal/notification"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ChannelProfile is a channel's public profile enriched with graph stats.
type ChannelProfile struct {
	account.Public
	ChannelStats
}

// Service coordinates subscriptions and watch history on top of the graph
// store. Channel lookups go through the account service so missing channels
// map to the same not-found behavior everywhere.
type Service struct {
	graph    Graph
	accounts *account.Service
	notifier notification.Notifier
}

// NewService creates a social service.
func NewService(graph Graph, accounts *account.Service, notifier notification.Notifier) *Service {
	return &Service{graph: graph, accounts: accounts, notifier: notifier}
}

// Subscribe adds the viewer as a subscriber of the named channel. Repeat
// calls are no-ops.
func (s *Service) Subscribe(ctx context.Context, channelUsername, subscriberID string) error {
	channel, err := s.accounts.GetByUsername(ctx, channelUsername)
	if err != nil {
		return err
	}
	if channel.ID == subscriberID {
		return apperr.Validation("cannot subscribe to your own channel")
	}
	if err := s.graph.Subscribe(ctx, channel.ID, subscriberID); err != nil {
		return apperr.Internal(err)
	}
	if s.notifier != nil {
		// Delivery failures must not break the subscription.
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindNewSubscriber,
			Destination: channel.ID,
			Body:        fmt.Sprintf("%s gained a new subscriber", channel.Username),
		})
	}
	return nil
}

// Unsubscribe removes the viewer's subscription to the named channel.
func (s *Service) Unsubscribe(ctx context.Context, channelUsername, subscriberID string) error {
	channel, err := s.accounts.GetByUsername(ctx, channelUsername)
	if err != nil {
		return err
	}
	if err := s.graph.Unsubscribe(ctx, channel.ID, subscriberID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ChannelProfile returns the channel's public profile with subscription
// stats. viewerID may be empty for anonymous requests.
func (s *Service) ChannelProfile(ctx context.Context, channelUsername, viewerID string) (ChannelProfile, error) {
	channel, err := s.accounts.GetByUsername(ctx, channelUsername)
	if err != nil {
		return ChannelProfile{}, err
	}
	stats, err := s.graph.Stats(ctx, channel.ID, viewerID)
	if err != nil {
		return ChannelProfile{}, apperr.Internal(err)
	}
	return ChannelProfile{Public: channel.Public(), ChannelStats: stats}, nil
}

// RecordWatch appends a video reference to the user's watch history.
func (s *Service) RecordWatch(ctx context.Context, userID, videoRef string) error {
	videoRef = strings.TrimSpace(videoRef)
	if videoRef == "" {
		return apperr.Validation("video reference is required")
	}
	if err := s.graph.AddWatch(ctx, userID, videoRef); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// History returns the user's most recent watch events, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]WatchEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	events, err := s.graph.History(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return events, nil
}
