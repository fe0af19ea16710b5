package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/ids"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
)

type PostService struct {
	posts    PostStore
	sessions SessionResolver
	cfg      *config.AppConfig
	log      zerolog.Logger
	timeout  deadline
	now      func() time.Time
}

func NewPostService(posts PostStore, sessions SessionResolver, cfg *config.AppConfig, log zerolog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		timeout:  deadline(cfg.Store.Timeout),
		now:      time.Now,
	}
}

type Attachment struct {
	Data        []byte
	ContentType string
}

type CreatePostInput struct {
	Credential Credential
	Caption    string
	Type       string
	Image      *Attachment
	Video      *Attachment
}

func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (models.Post, error) {
	user, err := s.sessions.ResolveSession(ctx, input.Credential)
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		ID:        ids.New(),
		UserID:    user.ID,
		Caption:   input.Caption,
		Type:      input.Type,
		CreatedAt: s.now().UnixMilli(),
		Image:     attachmentMedia(input.Image),
		Video:     attachmentMedia(input.Video),
		Likers:    []string{},
		Comments:  []string{},
		Shares:    []string{},
		Author: models.PostAuthor{
			ID:           user.ID,
			Name:         user.Name,
			ProfileImage: user.ProfileImage.Clone(),
		},
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()
	if err := s.posts.Create(storeCtx, post); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Post{}, ErrNoSession
		}
		return models.Post{}, apperror.Internal(err)
	}
	return post, nil
}

func attachmentMedia(a *Attachment) *models.Media {
	if a == nil || len(a.Data) == 0 {
		return nil
	}
	return &models.Media{ContentType: a.ContentType, Data: a.Data}
}

// GetFeed returns the caller's own most recent posts, newest first.
func (s *PostService) GetFeed(ctx context.Context, cred Credential) ([]models.Post, error) {
	user, err := s.sessions.ResolveSession(ctx, cred)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()
	posts, err := s.posts.ListByUser(storeCtx, user.ID, s.cfg.Feed.Limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// ToggleLike flips the caller's like on one of their own posts. Adding a
// like also records a notification on the caller's aggregate unless
// self-like notifications are switched off.
func (s *PostService) ToggleLike(ctx context.Context, cred Credential, postID string) (models.LikeState, error) {
	user, err := s.sessions.ResolveSession(ctx, cred)
	if err != nil {
		return "", err
	}
	if !ids.Valid(postID) {
		return "", apperror.NotFound("Post not found.")
	}

	var onLike *models.Notification
	if s.cfg.Features.NotifySelfLike {
		onLike = &models.Notification{
			ID:           ids.New(),
			Type:         models.NotificationPhotoLiked,
			Content:      user.Name + " has liked your post.",
			ProfileImage: user.ProfileImage.Clone(),
			CreatedAt:    s.now().UTC(),
		}
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()
	state, err := s.posts.ToggleLike(storeCtx, user.ID, postID, user.ID, onLike)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return "", apperror.NotFound("Post not found.")
		}
		return "", apperror.Internal(err)
	}
	return state, nil
}

func (s *PostService) ListNotifications(ctx context.Context, cred Credential) ([]models.Notification, error) {
	user, err := s.sessions.ResolveSession(ctx, cred)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()
	notifications, err := s.posts.ListNotifications(storeCtx, user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}
