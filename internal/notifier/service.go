package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/brocantic/marketplace/internal/events"
	kafkax "github.com/brocantic/marketplace/internal/kafka"
	"github.com/brocantic/marketplace/internal/redisx"
)

// Service fans domain events out into the Redis keys the API serves as fast
// paths: unread message counters and fulfillment status cache entries.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleMessageCreated bumps the receiver's unread counter.
func (s *Service) HandleMessageCreated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventMessageCreated {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.MessageCreatedPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.Redis.Incr(ctx, fmt.Sprintf(redisx.KeyUnread, p.ReceiverID)).Err(); err != nil {
		return err
	}
	slog.Debug("unread counter bumped", "receiver", p.ReceiverID, "message", p.MessageID)
	return nil
}

// HandleItemUpdated refreshes the cached fulfillment status for the item.
func (s *Service) HandleItemUpdated(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderItemUpdated {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.OrderItemUpdatedPayload](env.Payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyItemStatus, p.ItemID)
	body, _ := json.Marshal(map[string]string{"status": p.NewStatus})
	return s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

// seen dedups on event id; redelivery after a consumer rebalance must not
// double-increment counters.
func (s *Service) seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	ok, err := s.Redis.SetNX(ctx, key, "1", redisx.TTLDedup).Result()
	if err != nil {
		return false
	}
	return !ok
}
