package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/cinebook/internal/domain"
)

const EventBookingCreated = "booking_created"

// BookingEvent is published once per ticket created.
type BookingEvent struct {
	Type   string        `json:"type"`
	Ticket domain.Ticket `json:"ticket"`
	TsUnix int64         `json:"ts_unix"`
}

type BookingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingsPubSub(rdb *redis.Client) *BookingsPubSub {
	return &BookingsPubSub{
		rdb:     rdb,
		channel: ChannelBookings(),
	}
}

func (p *BookingsPubSub) PublishBookingCreated(ctx context.Context, t domain.Ticket) error {
	const op = "redis.BookingsPubSub.PublishBookingCreated"

	b, err := json.Marshal(BookingEvent{
		Type:   EventBookingCreated,
		Ticket: t,
		TsUnix: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Subscribe calls handler for every booking event until ctx is done.
func (p *BookingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev BookingEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if ev, ok := decodeBookingEvent(m.Payload); ok {
				handler(ctx, ev)
			}
		}
	}
}

func decodeBookingEvent(payload string) (BookingEvent, bool) {
	var ev BookingEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return BookingEvent{}, false
	}
	if ev.Type != EventBookingCreated || ev.Ticket.ID == "" {
		return BookingEvent{}, false
	}
	return ev, true
}

// SubscribeTickets is Subscribe reduced to the tickets carried by events.
func (p *BookingsPubSub) SubscribeTickets(ctx context.Context, fn func(ctx context.Context, t domain.Ticket)) error {
	return p.Subscribe(ctx, func(ctx context.Context, ev BookingEvent) {
		fn(ctx, ev.Ticket)
	})
}
