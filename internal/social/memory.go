package social

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryGraph struct {
	mu      sync.Mutex
	edges   map[string]map[string]struct{} // channel -> subscribers
	history map[string][]WatchEvent
}

// NewMemoryGraph builds an in-memory graph store for development and tests.
func NewMemoryGraph() Graph {
	return &memoryGraph{
		edges:   make(map[string]map[string]struct{}),
		history: make(map[string][]WatchEvent),
	}
}

func (g *memoryGraph) Subscribe(_ context.Context, channelID, subscriberID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	subs, ok := g.edges[channelID]
	if !ok {
		subs = make(map[string]struct{})
		g.edges[channelID] = subs
	}
	subs[subscriberID] = struct{}{}
	return nil
}

func (g *memoryGraph) Unsubscribe(_ context.Context, channelID, subscriberID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.edges[channelID], subscriberID)
	return nil
}

func (g *memoryGraph) Stats(_ context.Context, channelID, viewerID string) (ChannelStats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var stats ChannelStats
	stats.Subscribers = int64(len(g.edges[channelID]))
	for _, subs := range g.edges {
		if _, ok := subs[channelID]; ok {
			stats.SubscribedTo++
		}
	}
	if viewerID != "" {
		_, stats.ViewerSubscribed = g.edges[channelID][viewerID]
	}
	return stats, nil
}

func (g *memoryGraph) AddWatch(_ context.Context, userID, videoRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	event := WatchEvent{ID: uuid.New().String(), VideoRef: videoRef, WatchedAt: time.Now().UTC()}
	g.history[userID] = append([]WatchEvent{event}, g.history[userID]...)
	return nil
}

func (g *memoryGraph) History(_ context.Context, userID string, limit int) ([]WatchEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	events := g.history[userID]
	if len(events) > limit {
		events = events[:limit]
	}
	out := make([]WatchEvent, len(events))
	copy(out, events)
	return out, nil
}
