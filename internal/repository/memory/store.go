// Package memory keeps user aggregates in process memory. It mirrors the
// Postgres repositories and is used for local runs and tests.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
)

// aggregate is one user with everything that hangs off it. mu serialises
// every read-modify-write on the aggregate.
type aggregate struct {
	mu            sync.Mutex
	user          models.User
	posts         []models.Post
	notifications []models.Notification
}

type Store struct {
	mu         sync.RWMutex
	aggregates map[string]*aggregate
	byEmail    map[string]string
	byUsername map[string]string
	byToken    map[string]string
	now        func() time.Time
}

func New() *Store {
	return &Store{
		aggregates: make(map[string]*aggregate),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
		byToken:    make(map[string]string),
		now:        time.Now,
	}
}

// Users exposes the user half of the store.
func (s *Store) Users() *Users { return &Users{s: s} }

// Posts exposes posts, likes and notifications.
func (s *Store) Posts() *Posts { return &Posts{s: s} }

// Ping always succeeds; it lets the store stand in for a database in health checks.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// lookup returns the aggregate for id. Callers lock agg.mu themselves.
func (s *Store) lookup(id string) (*aggregate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.aggregates[id]
	return agg, ok
}

func (s *Store) lookupBy(index map[string]string, key string) (*aggregate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := index[key]
	if !ok {
		return nil, false
	}
	agg, ok := s.aggregates[id]
	return agg, ok
}

type Users struct {
	s *Store
}

func (u *Users) Create(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.byEmail[user.Email]; ok {
		return repository.ErrDuplicateUser
	}
	if _, ok := u.s.byUsername[user.Username]; ok {
		return repository.ErrDuplicateUser
	}
	if _, ok := u.s.aggregates[user.ID]; ok {
		return repository.ErrDuplicateUser
	}

	now := u.s.now()
	user = cloneUser(user)
	user.AccessToken = ""
	user.CreatedAt, user.UpdatedAt = now, now

	u.s.aggregates[user.ID] = &aggregate{user: user}
	u.s.byEmail[user.Email] = user.ID
	u.s.byUsername[user.Username] = user.ID
	return nil
}

func (u *Users) FindByEmail(ctx context.Context, email string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	agg, ok := u.s.lookupBy(u.s.byEmail, email)
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return snapshot(agg), nil
}

func (u *Users) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	if user, err := u.FindByEmail(ctx, email); !errors.Is(err, repository.ErrUserNotFound) {
		return user, err
	}
	agg, ok := u.s.lookupBy(u.s.byUsername, username)
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return snapshot(agg), nil
}

func (u *Users) GetByID(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	agg, ok := u.s.lookup(id)
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return snapshot(agg), nil
}

func (u *Users) FindByAccessToken(ctx context.Context, token string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	if token == "" {
		return models.User{}, repository.ErrUserNotFound
	}
	agg, ok := u.s.lookupBy(u.s.byToken, token)
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return snapshot(agg), nil
}

// SetAccessToken replaces the user's single active token. The previous
// token stops resolving.
func (u *Users) SetAccessToken(ctx context.Context, id string, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	agg, ok := u.s.aggregates[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	agg.mu.Lock()
	defer agg.mu.Unlock()

	if agg.user.AccessToken != "" {
		delete(u.s.byToken, agg.user.AccessToken)
	}
	agg.user.AccessToken = token
	agg.user.UpdatedAt = u.s.now()
	if token != "" {
		u.s.byToken[token] = id
	}
	return nil
}

func (u *Users) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) error {
	return u.mutate(ctx, id, func(user *models.User) error {
		update.Apply(user)
		return nil
	})
}

func (u *Users) SetMedia(ctx context.Context, id string, slot models.MediaSlot, media models.Media) error {
	return u.mutate(ctx, id, func(user *models.User) error {
		switch slot {
		case models.MediaSlotAvatar:
			user.ProfileImage = media.Clone()
		case models.MediaSlotCover:
			user.CoverPhoto = media.Clone()
		default:
			return fmt.Errorf("unknown media slot %q", slot)
		}
		return nil
	})
}

func (u *Users) mutate(ctx context.Context, id string, fn func(*models.User) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agg, ok := u.s.lookup(id)
	if !ok {
		return repository.ErrUserNotFound
	}

	agg.mu.Lock()
	defer agg.mu.Unlock()

	if err := fn(&agg.user); err != nil {
		return err
	}
	agg.user.UpdatedAt = u.s.now()
	return nil
}

type Posts struct {
	s *Store
}

func (p *Posts) Create(ctx context.Context, post models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agg, ok := p.s.lookup(post.UserID)
	if !ok {
		return repository.ErrUserNotFound
	}

	agg.mu.Lock()
	defer agg.mu.Unlock()

	agg.posts = append(agg.posts, clonePost(post))
	return nil
}

// ListByUser returns up to limit posts, newest first. Posts with equal
// timestamps keep insertion order.
func (p *Posts) ListByUser(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agg, ok := p.s.lookup(userID)
	if !ok {
		return nil, nil
	}

	agg.mu.Lock()
	posts := make([]models.Post, len(agg.posts))
	for i := range agg.posts {
		posts[i] = clonePost(agg.posts[i])
	}
	agg.mu.Unlock()

	slices.SortStableFunc(posts, func(a, b models.Post) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// ToggleLike flips likerID's membership in the post's likers while holding
// the owner's aggregate lock.
func (p *Posts) ToggleLike(ctx context.Context, ownerID, postID, likerID string, onLike *models.Notification) (models.LikeState, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	agg, ok := p.s.lookup(ownerID)
	if !ok {
		return "", repository.ErrPostNotFound
	}

	agg.mu.Lock()
	defer agg.mu.Unlock()

	idx := slices.IndexFunc(agg.posts, func(post models.Post) bool { return post.ID == postID })
	if idx < 0 {
		return "", repository.ErrPostNotFound
	}
	post := &agg.posts[idx]

	if i := slices.Index(post.Likers, likerID); i >= 0 {
		post.Likers = slices.Delete(post.Likers, i, i+1)
		return models.LikeStateUnliked, nil
	}

	post.Likers = append(post.Likers, likerID)
	if onLike != nil {
		n := *onLike
		n.ProfileImage = onLike.ProfileImage.Clone()
		agg.notifications = append(agg.notifications, n)
	}
	return models.LikeStateLiked, nil
}

func (p *Posts) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	agg, ok := p.s.lookup(userID)
	if !ok {
		return nil, nil
	}

	agg.mu.Lock()
	defer agg.mu.Unlock()

	out := make([]models.Notification, len(agg.notifications))
	for i, n := range agg.notifications {
		n.ProfileImage = n.ProfileImage.Clone()
		out[i] = n
	}
	return out, nil
}

func snapshot(agg *aggregate) models.User {
	agg.mu.Lock()
	defer agg.mu.Unlock()
	return cloneUser(agg.user)
}

func cloneUser(u models.User) models.User {
	u.PasswordHash = slices.Clone(u.PasswordHash)
	u.ProfileImage = u.ProfileImage.Clone()
	u.CoverPhoto = u.CoverPhoto.Clone()
	u.Friends = slices.Clone(u.Friends)
	u.Pages = slices.Clone(u.Pages)
	u.Groups = slices.Clone(u.Groups)
	return u
}

func clonePost(p models.Post) models.Post {
	p.Image = p.Image.Clone()
	p.Video = p.Video.Clone()
	p.Likers = slices.Clone(p.Likers)
	p.Comments = slices.Clone(p.Comments)
	p.Shares = slices.Clone(p.Shares)
	p.Author.ProfileImage = p.Author.ProfileImage.Clone()
	return p
}
