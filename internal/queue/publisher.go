package queue

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/MassterJoe/alertMe9Ja/internal/models"
)

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: event.values(),
	}).Result()
	return err
}

func (p *Publisher) PublishArchive(ctx context.Context, userID string, slot models.MediaSlot) error {
	return p.Publish(ctx, Event{Type: EventArchive, UserID: userID, Slot: slot})
}

func (p *Publisher) PublishPrune(ctx context.Context) error {
	return p.Publish(ctx, Event{Type: EventPrune})
}
