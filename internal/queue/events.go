package queue

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MassterJoe/alertMe9Ja/internal/models"
)

type EventType string

const (
	// EventArchive asks the worker to copy a user's current media slot to
	// object storage.
	EventArchive EventType = "archive"
	// EventPrune asks the worker to drop archived media past retention.
	EventPrune EventType = "prune"
)

var ErrMalformedEvent = errors.New("malformed event")

type Event struct {
	Type   EventType
	UserID string
	Slot   models.MediaSlot
}

func (e Event) values() map[string]any {
	values := map[string]any{"type": string(e.Type)}
	if e.UserID != "" {
		values["userId"] = e.UserID
	}
	if e.Slot != "" {
		values["slot"] = string(e.Slot)
	}
	return values
}

// ParseEvent decodes a stream entry written by Publisher.
func ParseEvent(msg redis.XMessage) (Event, error) {
	field := func(name string) string {
		s, _ := msg.Values[name].(string)
		return s
	}

	event := Event{
		Type:   EventType(field("type")),
		UserID: field("userId"),
		Slot:   models.MediaSlot(field("slot")),
	}

	switch event.Type {
	case EventArchive:
		if event.UserID == "" || !event.Slot.Valid() {
			return Event{}, fmt.Errorf("%w: archive %s needs userId and slot", ErrMalformedEvent, msg.ID)
		}
	case EventPrune:
	default:
		return Event{}, fmt.Errorf("%w: unknown type %q in %s", ErrMalformedEvent, event.Type, msg.ID)
	}
	return event, nil
}
