package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
)

const dobLayout = "02/01/2006"

type ProfileService struct {
	users     UserStore
	sessions  SessionResolver
	publisher ArchivePublisher
	cfg       *config.AppConfig
	log       zerolog.Logger
	timeout   deadline
}

// NewProfileService wires the profile operations. publisher may be nil, in
// which case uploads are not announced for archiving.
func NewProfileService(users UserStore, sessions SessionResolver, publisher ArchivePublisher, cfg *config.AppConfig, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		timeout:   deadline(cfg.Store.Timeout),
	}
}

// Profile is the user's public view. Images are data URIs, nil when unset.
type Profile struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Gender       string  `json:"gender"`
	DOB          string  `json:"dob"`
	City         string  `json:"city"`
	Country      string  `json:"country"`
	Bio          string  `json:"aboutMe"`
	ProfileImage *string `json:"profileImage"`
	CoverPhoto   *string `json:"coverPhoto"`
}

func (s *ProfileService) GetProfile(user models.User) Profile {
	return Profile{
		ID:           user.ID,
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.Email,
		Gender:       user.Gender,
		DOB:          user.DOB,
		City:         user.City,
		Country:      user.Country,
		Bio:          user.Bio,
		ProfileImage: DataURI(user.ProfileImage),
		CoverPhoto:   DataURI(user.CoverPhoto),
	}
}

// DataURI renders m for the wire, nil when there is nothing to show.
func DataURI(m *models.Media) *string {
	uri := m.DataURI()
	if uri == "" {
		return nil
	}
	return &uri
}

// ValidDOB reports whether s is a real calendar date in DD/MM/YYYY form.
func ValidDOB(s string) bool {
	_, err := time.Parse(dobLayout, s)
	return err == nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, cred Credential, update models.ProfileUpdate) error {
	user, err := s.sessions.ResolveSession(ctx, cred)
	if err != nil {
		return err
	}

	if update.DOB != nil && !ValidDOB(*update.DOB) {
		return apperror.Validation(msgInvalidDOB)
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()
	if err := s.users.UpdateProfile(storeCtx, user.ID, update); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrNoSession
		}
		return apperror.Internal(err)
	}
	return nil
}
