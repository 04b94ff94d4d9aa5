package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/pdf-api/pkg/circuitbreaker"
	"github.com/jwalitptl/pdf-api/pkg/messaging"
)

// Broker publishes JSON messages over Redis pub/sub. The client stays owned
// by the caller.
type Broker struct {
	client redis.UniversalClient
	cb     *circuitbreaker.CircuitBreaker
}

func NewBroker(client redis.UniversalClient) *Broker {
	return &Broker{
		client: client,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:                "redis-broker",
			MaxRequests:         1,
			Interval:            10 * time.Second,
			Timeout:             5 * time.Second,
			ConsecutiveFailures: 5,
		}),
	}
}

var _ messaging.Publisher = (*Broker)(nil)

func (b *Broker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.cb.Execute(func() error {
		return b.client.Publish(ctx, channel, payload).Err()
	})
}
