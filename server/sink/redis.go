package sink

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisStream appends each hand to a capped stream for live consumers.
type RedisStream struct {
	client streamAdder
	stream string
	maxLen int64
}

func NewRedisStream(ctx context.Context, url, stream string, maxLen int64) (*RedisStream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}, nil
}

func (r *RedisStream) WriteHand(ctx context.Context, h Hand) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"match_id":   h.MatchID,
			"hand_id":    h.ID,
			"hand_index": h.Index,
			"payload":    string(payload),
		},
	}).Err()
}

func (r *RedisStream) Close() error { return r.client.Close() }
