package service

import (
	"context"
	"time"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
)

// UserStore persists user aggregates. Every method is atomic for the user it
// touches.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByAccessToken(ctx context.Context, token string) (models.User, error)
	SetAccessToken(ctx context.Context, id string, token string) error
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) error
	SetMedia(ctx context.Context, id string, slot models.MediaSlot, media models.Media) error
}

type PostStore interface {
	Create(ctx context.Context, post models.Post) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Post, error)
	ToggleLike(ctx context.Context, ownerID, postID, likerID string, onLike *models.Notification) (models.LikeState, error)
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
}

// ArchivePublisher announces that a user's media slot changed.
type ArchivePublisher interface {
	PublishArchive(ctx context.Context, userID string, slot models.MediaSlot) error
}

// SessionResolver turns a credential into the user it belongs to.
type SessionResolver interface {
	ResolveSession(ctx context.Context, cred Credential) (models.User, error)
}

type CredentialSource int

const (
	SourceCookie CredentialSource = iota
	SourceBody
	SourceBearer
	SourceStoredBearer
)

func (s CredentialSource) String() string {
	switch s {
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	case SourceBearer:
		return "bearer"
	case SourceStoredBearer:
		return "stored-bearer"
	}
	return "unknown"
}

type Credential struct {
	Token  string
	Source CredentialSource
}

const (
	msgLoggedOut  = "User not found or logged out. Please log in again."
	msgInvalidDOB = "Invalid date format. Use DD/MM/YYYY."
	msgNotAnImage = "Only image files can be uploaded."
)

// ErrNoSession is returned for every credential that does not resolve to a
// user.
var ErrNoSession = apperror.Unauthenticated(msgLoggedOut)

// deadline bounds a single store call.
type deadline time.Duration

func (d deadline) wrap(ctx context.Context) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(d))
}
