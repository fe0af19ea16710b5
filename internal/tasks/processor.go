package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/ids"
	"github.com/MassterJoe/alertMe9Ja/internal/media/sniffer"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/queue"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
	"github.com/MassterJoe/alertMe9Ja/internal/storage"
)

const archivePrefix = "users/"

type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

type ArchiveStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	ListOlderThan(ctx context.Context, prefix string, cutoff time.Time) ([]string, error)
	Remove(ctx context.Context, key string) error
}

// Processor handles media stream events: copying a user's current avatar or
// cover into the archive, and pruning archived copies past retention.
type Processor struct {
	users     UserSource
	archive   ArchiveStore
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewProcessor(users UserSource, archive ArchiveStore, retention time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		users:     users,
		archive:   archive,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Processor) Handle(ctx context.Context, event queue.Event) error {
	switch event.Type {
	case queue.EventArchive:
		return p.handleArchive(ctx, event)
	case queue.EventPrune:
		return p.handlePrune(ctx)
	default:
		p.logger.Warn().Str("type", string(event.Type)).Msg("unknown event type")
		return nil
	}
}

func (p *Processor) handleArchive(ctx context.Context, event queue.Event) error {
	user, err := p.users.GetByID(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			p.logger.Warn().Str("user_id", event.UserID).Msg("archive skipped, user gone")
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	media := user.Media(event.Slot)
	if media == nil {
		p.logger.Debug().Str("user_id", user.ID).Str("slot", string(event.Slot)).Msg("archive skipped, slot empty")
		return nil
	}

	ext := sniffer.Resolve(media.ContentType, media.Data).Extension
	key := storage.ArchiveKey(user.ID, event.Slot, ids.New(), ext)
	if err := p.archive.Put(ctx, key, media.ContentType, media.Data); err != nil {
		return err
	}

	p.logger.Info().
		Str("user_id", user.ID).
		Str("slot", string(event.Slot)).
		Str("key", key).
		Int("bytes", len(media.Data)).
		Msg("media archived")
	return nil
}

func (p *Processor) handlePrune(ctx context.Context) error {
	if p.retention <= 0 {
		return nil
	}
	cutoff := p.now().Add(-p.retention)

	keys, err := p.archive.ListOlderThan(ctx, archivePrefix, cutoff)
	if err != nil {
		return err
	}

	var failed int
	for _, key := range keys {
		if err := p.archive.Remove(ctx, key); err != nil {
			failed++
			p.logger.Error().Err(err).Str("key", key).Msg("prune object failed")
		}
	}

	p.logger.Info().Int("removed", len(keys)-failed).Int("failed", failed).Time("cutoff", cutoff).Msg("archive pruned")
	if failed > 0 {
		return fmt.Errorf("prune: %d of %d removals failed", failed, len(keys))
	}
	return nil
}
