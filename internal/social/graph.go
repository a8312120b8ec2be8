package social

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChannelStats aggregates the social graph around one channel, optionally
// from the point of view of a logged-in viewer.
type ChannelStats struct {
	Subscribers      int64 `json:"subscriberCount"`
	SubscribedTo     int64 `json:"subscribedToCount"`
	ViewerSubscribed bool  `json:"isSubscribed"`
}

// WatchEvent is one entry in a user's watch history.
type WatchEvent struct {
	ID        string    `json:"id"`
	VideoRef  string    `json:"videoRef"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Graph persists subscription edges and watch history. Subscribe and
// Unsubscribe are idempotent.
type Graph interface {
	Subscribe(ctx context.Context, channelID, subscriberID string) error
	Unsubscribe(ctx context.Context, channelID, subscriberID string) error
	Stats(ctx context.Context, channelID, viewerID string) (ChannelStats, error)
	AddWatch(ctx context.Context, userID, videoRef string) error
	History(ctx context.Context, userID string, limit int) ([]WatchEvent, error)
}

// PostgresGraph stores the social graph in PostgreSQL.
type PostgresGraph struct {
	db *pgxpool.Pool
}

// NewPostgresGraph constructs a Postgres-backed graph store.
func NewPostgresGraph(db *pgxpool.Pool) *PostgresGraph {
	return &PostgresGraph{db: db}
}

// Subscribe records the edge, ignoring duplicates.
func (g *PostgresGraph) Subscribe(ctx context.Context, channelID, subscriberID string) error {
	channel, err := uuid.Parse(channelID)
	if err != nil {
		return err
	}
	subscriber, err := uuid.Parse(subscriberID)
	if err != nil {
		return err
	}
	_, err = g.db.Exec(ctx, `INSERT INTO subscriptions (channel_id, subscriber_id, created_at)
        VALUES ($1, $2, now()) ON CONFLICT (channel_id, subscriber_id) DO NOTHING`, channel, subscriber)
	return err
}

// Unsubscribe removes the edge if present.
func (g *PostgresGraph) Unsubscribe(ctx context.Context, channelID, subscriberID string) error {
	channel, err := uuid.Parse(channelID)
	if err != nil {
		return err
	}
	subscriber, err := uuid.Parse(subscriberID)
	if err != nil {
		return err
	}
	_, err = g.db.Exec(ctx, `DELETE FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2`, channel, subscriber)
	return err
}

// Stats aggregates subscriber counts for a channel in one round trip.
func (g *PostgresGraph) Stats(ctx context.Context, channelID, viewerID string) (ChannelStats, error) {
	channel, err := uuid.Parse(channelID)
	if err != nil {
		return ChannelStats{}, err
	}
	var viewer uuid.UUID
	if viewerID != "" {
		if viewer, err = uuid.Parse(viewerID); err != nil {
			return ChannelStats{}, err
		}
	}
	const query = `
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1),
            EXISTS (SELECT 1 FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2)`
	var stats ChannelStats
	if err := g.db.QueryRow(ctx, query, channel, viewer).Scan(&stats.Subscribers, &stats.SubscribedTo, &stats.ViewerSubscribed); err != nil {
		return ChannelStats{}, err
	}
	if viewerID == "" {
		stats.ViewerSubscribed = false
	}
	return stats, nil
}

// AddWatch appends a watch event.
func (g *PostgresGraph) AddWatch(ctx context.Context, userID, videoRef string) error {
	user, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = g.db.Exec(ctx, `INSERT INTO watch_history (id, user_id, video_ref, watched_at)
        VALUES ($1, $2, $3, now())`, uuid.New(), user, videoRef)
	return err
}

// History returns the most recent watch events, newest first.
func (g *PostgresGraph) History(ctx context.Context, userID string, limit int) ([]WatchEvent, error) {
	user, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := g.db.Query(ctx, `SELECT id, video_ref, watched_at FROM watch_history
        WHERE user_id = $1 ORDER BY watched_at DESC, id DESC LIMIT $2`, user, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []WatchEvent
	for rows.Next() {
		var (
			id        uuid.UUID
			watchedAt time.Time
			event     WatchEvent
		)
		if err := rows.Scan(&id, &event.VideoRef, &watchedAt); err != nil {
			return nil, err
		}
		event.ID = id.String()
		event.WatchedAt = watchedAt.UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}
