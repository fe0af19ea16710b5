package service

import (
	"context"
	"errors"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/media/sniffer"
	"github.com/MassterJoe/alertMe9Ja/internal/media/svg"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
)

type UploadInput struct {
	Credential  Credential
	Slot        models.MediaSlot
	Data        []byte
	ContentType string
}

// UploadMedia replaces the avatar or cover of the credential's owner and
// returns the stored payload as a data URI.
func (s *ProfileService) UploadMedia(ctx context.Context, input UploadInput) (string, error) {
	if !input.Slot.Valid() {
		return "", apperror.BadRequest("Unknown media slot.")
	}

	user, err := s.sessions.ResolveSession(ctx, input.Credential)
	if err != nil {
		return "", err
	}

	media, err := prepareMedia(input.Data, input.ContentType)
	if err != nil {
		return "", err
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()
	if err := s.users.SetMedia(storeCtx, user.ID, input.Slot, media); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrNoSession
		}
		return "", apperror.Internal(err)
	}

	if s.publisher != nil {
		publishCtx, cancelPublish := s.timeout.wrap(ctx)
		defer cancelPublish()
		if err := s.publisher.PublishArchive(publishCtx, user.ID, input.Slot); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Str("slot", string(input.Slot)).Msg("enqueue archive failed")
		}
	}

	return media.DataURI(), nil
}

// prepareMedia resolves the content type of an uploaded payload, rejects
// anything that is not an image and sanitizes SVG documents.
func prepareMedia(data []byte, declared string) (models.Media, error) {
	if len(data) == 0 {
		return models.Media{}, apperror.BadRequest("No file uploaded")
	}

	result := sniffer.Resolve(declared, data)
	if result.Kind != sniffer.KindImage {
		return models.Media{}, apperror.BadRequest(msgNotAnImage)
	}
	if result.SVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return models.Media{}, apperror.New(apperror.KindBadRequest, "Invalid SVG document.", err)
		}
		data = clean
	}

	return models.Media{ContentType: result.MIME, Data: data}, nil
}
