package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
	"github.com/MassterJoe/alertMe9Ja/internal/repository/memory"
	"github.com/MassterJoe/alertMe9Ja/internal/security"
)

type fakePublisher struct {
	publishFn func(ctx context.Context, userID string, slot models.MediaSlot) error
}

func (f *fakePublisher) PublishArchive(ctx context.Context, userID string, slot models.MediaSlot) error {
	if f.publishFn != nil {
		return f.publishFn(ctx, userID, slot)
	}
	return nil
}

// stubUsers overrides selected UserStore methods; the rest fall through to
// the embedded store.
type stubUsers struct {
	UserStore
	findByEmailOrUsernameFn func(ctx context.Context, email, username string) (models.User, error)
	createFn                func(ctx context.Context, user models.User) error
	findByAccessTokenFn     func(ctx context.Context, token string) (models.User, error)
}

func (s stubUsers) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	if s.findByEmailOrUsernameFn != nil {
		return s.findByEmailOrUsernameFn(ctx, email, username)
	}
	return s.UserStore.FindByEmailOrUsername(ctx, email, username)
}

func (s stubUsers) Create(ctx context.Context, user models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return s.UserStore.Create(ctx, user)
}

func (s stubUsers) FindByAccessToken(ctx context.Context, token string) (models.User, error) {
	if s.findByAccessTokenFn != nil {
		return s.findByAccessTokenFn(ctx, token)
	}
	return s.UserStore.FindByAccessToken(ctx, token)
}

type fixture struct {
	store     *memory.Store
	auth      *AuthService
	profiles  *ProfileService
	posts     *PostService
	publisher *fakePublisher
	cfg       *config.AppConfig
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:  "test-secret",
			BcryptCost: bcrypt.MinCost,
		},
		Store:    config.StoreConfig{Timeout: time.Second},
		Feed:     config.FeedConfig{Limit: 5},
		Features: config.FeaturesConfig{NotifySelfLike: true},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	store := memory.New()
	log := zerolog.Nop()
	publisher := &fakePublisher{}

	auth := NewAuthService(store.Users(), cfg, log)
	return &fixture{
		store:     store,
		auth:      auth,
		profiles:  NewProfileService(store.Users(), auth, publisher, cfg, log),
		posts:     NewPostService(store.Posts(), auth, cfg, log),
		publisher: publisher,
		cfg:       cfg,
	}
}

func (f *fixture) register(t *testing.T, name, email, username, password string) {
	t.Helper()
	err := f.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

func (f *fixture) login(t *testing.T, email, password string) LoginResult {
	t.Helper()
	result, err := f.auth.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return result
}

func (f *fixture) session(t *testing.T) (models.User, Credential) {
	t.Helper()
	f.register(t, "Ada", "ada@example.com", "ada", "pw-123456")
	result := f.login(t, "ada@example.com", "pw-123456")
	return result.User, Credential{Token: result.AccessToken, Source: SourceCookie}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "ada", "pw")

	ctx := context.Background()
	err := f.auth.Register(ctx, RegisterInput{Email: "ada@example.com", Username: "other", Password: "pw"})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict on email, got %v", err)
	}
	err = f.auth.Register(ctx, RegisterInput{Email: "new@example.com", Username: "ada", Password: "pw"})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict on username, got %v", err)
	}
	if apperror.Message(err) != "Email or username already exists." {
		t.Fatalf("unexpected message %q", apperror.Message(err))
	}
}

func TestRegisterRaceMapsDuplicateToConflict(t *testing.T) {
	cfg := testConfig()
	users := stubUsers{
		UserStore: memory.New().Users(),
		findByEmailOrUsernameFn: func(context.Context, string, string) (models.User, error) {
			return models.User{}, repository.ErrUserNotFound
		},
		createFn: func(context.Context, models.User) error {
			return repository.ErrDuplicateUser
		},
	}
	auth := NewAuthService(users, cfg, zerolog.Nop())

	err := auth.Register(context.Background(), RegisterInput{Email: "a@example.com", Username: "a", Password: "pw"})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "ada", "pw-123456")

	user, err := f.store.Users().FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if string(user.PasswordHash) == "pw-123456" {
		t.Fatalf("password stored in clear")
	}
	if ok, _ := security.VerifyPassword("pw-123456", user.PasswordHash); !ok {
		t.Fatalf("stored hash does not verify")
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "ada", "pw-123456")
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "nobody@example.com", "pw-123456")
	if !apperror.Is(err, apperror.KindNotFound) || apperror.Message(err) != "Email does not exist" {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = f.auth.Login(ctx, "ada@example.com", "wrong")
	if !apperror.Is(err, apperror.KindUnauthorized) || apperror.Message(err) != "Incorrect password" {
		t.Fatalf("expected incorrect password, got %v", err)
	}
}

func TestLoginTokenResolvesFromEverySource(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "ada", "pw-123456")
	result := f.login(t, "ada@example.com", "pw-123456")

	for _, source := range []CredentialSource{SourceCookie, SourceBody, SourceBearer, SourceStoredBearer} {
		user, err := f.auth.ResolveSession(context.Background(), Credential{Token: result.AccessToken, Source: source})
		if err != nil {
			t.Fatalf("%s: resolve: %v", source, err)
		}
		if user.ID != result.User.ID {
			t.Fatalf("%s: expected %s, got %s", source, result.User.ID, user.ID)
		}
	}
}

func TestLoginReplacesPreviousToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ada", "ada@example.com", "ada", "pw-123456")

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.auth.now = func() time.Time { return fixed }

	first := f.login(t, "ada@example.com", "pw-123456")
	second := f.login(t, "ada@example.com", "pw-123456")
	if first.AccessToken == second.AccessToken {
		t.Fatalf("expected a fresh token within the same second")
	}

	for _, source := range []CredentialSource{SourceCookie, SourceBody, SourceStoredBearer} {
		_, err := f.auth.ResolveSession(context.Background(), Credential{Token: first.AccessToken, Source: source})
		if !apperror.Is(err, apperror.KindUnauthenticated) {
			t.Fatalf("%s: old token should no longer resolve, got %v", source, err)
		}
		if _, err := f.auth.ResolveSession(context.Background(), Credential{Token: second.AccessToken, Source: source}); err != nil {
			t.Fatalf("%s: current token: %v", source, err)
		}
	}
}

func TestResolveSessionRejectsBadBearer(t *testing.T) {
	f := newFixture(t)
	user, _ := f.session(t)
	ctx := context.Background()

	forged, err := security.GenerateSessionToken("other-secret", user.Email, user.ID, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	for _, token := range []string{"", "garbage", "a.b.c", forged} {
		_, err := f.auth.ResolveSession(ctx, Credential{Token: token, Source: SourceBearer})
		if !apperror.Is(err, apperror.KindUnauthenticated) {
			t.Fatalf("token %q: expected unauthenticated, got %v", token, err)
		}
	}
}

func TestResolveSessionStoreFaultIsInternal(t *testing.T) {
	cfg := testConfig()
	var sawDeadline bool
	users := stubUsers{
		UserStore: memory.New().Users(),
		findByAccessTokenFn: func(ctx context.Context, token string) (models.User, error) {
			_, sawDeadline = ctx.Deadline()
			return models.User{}, errors.New("connection reset")
		},
	}
	auth := NewAuthService(users, cfg, zerolog.Nop())

	_, err := auth.ResolveSession(context.Background(), Credential{Token: "tok", Source: SourceCookie})
	if !apperror.Is(err, apperror.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !sawDeadline {
		t.Fatalf("store call ran without a deadline")
	}
}

func TestUpdateProfileValidatesDOB(t *testing.T) {
	f := newFixture(t)
	user, cred := f.session(t)
	ctx := context.Background()

	bad := "31/02/2020"
	err := f.profiles.UpdateProfile(ctx, cred, models.ProfileUpdate{DOB: &bad})
	if !apperror.Is(err, apperror.KindValidation) || apperror.Message(err) != "Invalid date format. Use DD/MM/YYYY." {
		t.Fatalf("expected validation error, got %v", err)
	}

	good := "01/01/2000"
	city := "Lagos"
	if err := f.profiles.UpdateProfile(ctx, cred, models.ProfileUpdate{DOB: &good, City: &city}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := f.store.Users().GetByID(ctx, user.ID)
	if stored.DOB != "01/01/2000" || stored.City != "Lagos" || stored.Name != "Ada" {
		t.Fatalf("unexpected profile after update: %+v", stored)
	}
}

func TestValidDOB(t *testing.T) {
	cases := map[string]bool{
		"01/01/2000": true,
		"29/02/2024": true,
		"29/02/2023": false,
		"1/1/2000":   false,
		"2000-01-01": false,
		"01/13/2000": false,
		"":           false,
	}
	for in, want := range cases {
		if got := ValidDOB(in); got != want {
			t.Fatalf("ValidDOB(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	f := newFixture(t)
	name := "x"
	err := f.profiles.UpdateProfile(context.Background(), Credential{Source: SourceCookie}, models.ProfileUpdate{Name: &name})
	if !apperror.Is(err, apperror.KindUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUploadMediaRoundTrip(t *testing.T) {
	f := newFixture(t)
	user, cred := f.session(t)
	ctx := context.Background()

	var published []models.MediaSlot
	f.publisher.publishFn = func(_ context.Context, userID string, slot models.MediaSlot) error {
		if userID != user.ID {
			t.Errorf("published for %s, want %s", userID, user.ID)
		}
		published = append(published, slot)
		return nil
	}

	payload := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 1, 2, 3}
	uri, err := f.profiles.UploadMedia(ctx, UploadInput{
		Credential:  cred,
		Slot:        models.MediaSlotAvatar,
		Data:        payload,
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	media, err := models.ParseDataURI(uri)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if media.ContentType != "image/png" || string(media.Data) != string(payload) {
		t.Fatalf("payload did not round trip: %+v", media)
	}

	profile := f.profiles.GetProfile(mustGet(t, f, user.ID))
	if profile.ProfileImage == nil || *profile.ProfileImage != uri {
		t.Fatalf("profile image not updated")
	}
	if profile.CoverPhoto != nil {
		t.Fatalf("cover photo should be null")
	}
	if len(published) != 1 || published[0] != models.MediaSlotAvatar {
		t.Fatalf("expected one avatar archive event, got %v", published)
	}
}

func TestUploadMediaRejectsEmptyPayload(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)

	_, err := f.profiles.UploadMedia(context.Background(), UploadInput{Credential: cred, Slot: models.MediaSlotCover})
	if !apperror.Is(err, apperror.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUploadMediaSanitizesSVG(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)

	uri, err := f.profiles.UploadMedia(context.Background(), UploadInput{
		Credential: cred,
		Slot:       models.MediaSlotCover,
		Data:       []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	media, _ := models.ParseDataURI(uri)
	if strings.Contains(string(media.Data), "script") {
		t.Fatalf("script survived: %s", media.Data)
	}
}

func TestUploadMediaPublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)
	f.publisher.publishFn = func(context.Context, string, models.MediaSlot) error {
		return errors.New("redis down")
	}

	_, err := f.profiles.UploadMedia(context.Background(), UploadInput{
		Credential:  cred,
		Slot:        models.MediaSlotAvatar,
		Data:        []byte("GIF89a"),
		ContentType: "image/gif",
	})
	if err != nil {
		t.Fatalf("upload should succeed when publishing fails: %v", err)
	}
}

func TestUploadMediaRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)

	for _, tc := range []struct {
		data        []byte
		contentType string
	}{
		{[]byte("%PDF-1.4\n"), ""},
		{[]byte("plain words"), "text/plain"},
	} {
		_, err := f.profiles.UploadMedia(context.Background(), UploadInput{
			Credential:  cred,
			Slot:        models.MediaSlotAvatar,
			Data:        tc.data,
			ContentType: tc.contentType,
		})
		if !apperror.Is(err, apperror.KindBadRequest) || apperror.Message(err) != msgNotAnImage {
			t.Fatalf("%q: expected non-image rejection, got %v", tc.contentType, err)
		}
	}
}

func TestUploadMediaPublishRunsUnderDeadline(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)

	var sawDeadline bool
	f.publisher.publishFn = func(ctx context.Context, _ string, _ models.MediaSlot) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	}

	_, err := f.profiles.UploadMedia(context.Background(), UploadInput{
		Credential:  cred,
		Slot:        models.MediaSlotCover,
		Data:        []byte("GIF89a"),
		ContentType: "image/gif",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !sawDeadline {
		t.Fatalf("archive publish should carry the store deadline")
	}
}

func TestFeedReturnsNewestFive(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)
	ctx := context.Background()

	base := time.UnixMilli(1_700_000_000_000)
	for i := 0; i < 6; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		f.posts.now = func() time.Time { return at }
		if _, err := f.posts.CreatePost(ctx, CreatePostInput{Credential: cred, Caption: string(rune('a' + i))}); err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}

	feed, err := f.posts.GetFeed(ctx, cred)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 5 {
		t.Fatalf("expected 5 posts, got %d", len(feed))
	}
	want := "fedcb"
	for i, post := range feed {
		if post.Caption != string(want[i]) {
			t.Fatalf("position %d: expected %c, got %s", i, want[i], post.Caption)
		}
	}
}

func TestFeedTiesKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)
	ctx := context.Background()

	at := time.UnixMilli(1_700_000_000_000)
	f.posts.now = func() time.Time { return at }
	for _, caption := range []string{"first", "second", "third"} {
		if _, err := f.posts.CreatePost(ctx, CreatePostInput{Credential: cred, Caption: caption}); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	feed, _ := f.posts.GetFeed(ctx, cred)
	if feed[0].Caption != "first" || feed[1].Caption != "second" || feed[2].Caption != "third" {
		t.Fatalf("ties reordered: %s %s %s", feed[0].Caption, feed[1].Caption, feed[2].Caption)
	}
}

func TestCreatePostSnapshotsAuthor(t *testing.T) {
	f := newFixture(t)
	user, cred := f.session(t)

	post, err := f.posts.CreatePost(context.Background(), CreatePostInput{
		Credential: cred,
		Caption:    "hello",
		Type:       "image",
		Image:      &Attachment{Data: []byte{1}, ContentType: "image/png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == "" || post.Author.ID != user.ID || post.Author.Name != "Ada" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if post.Image == nil || post.Video != nil {
		t.Fatalf("unexpected attachments: %+v", post)
	}
}

func TestToggleLikeCycle(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, CreatePostInput{Credential: cred, Caption: "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	state, err := f.posts.ToggleLike(ctx, cred, post.ID)
	if err != nil || state != models.LikeStateLiked {
		t.Fatalf("first toggle: %v %v", state, err)
	}
	state, err = f.posts.ToggleLike(ctx, cred, post.ID)
	if err != nil || state != models.LikeStateUnliked {
		t.Fatalf("second toggle: %v %v", state, err)
	}

	notifications, err := f.posts.ListNotifications(ctx, cred)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifications))
	}
	n := notifications[0]
	if n.Type != models.NotificationPhotoLiked || n.Content != "Ada has liked your post." {
		t.Fatalf("unexpected notification: %+v", n)
	}

	feed, _ := f.posts.GetFeed(ctx, cred)
	if feed[0].LikedBy(post.UserID) {
		t.Fatalf("post should end up unliked")
	}
}

func TestToggleLikeUnknownPost(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)

	_, err := f.posts.ToggleLike(context.Background(), cred, "missing")
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestToggleLikeWithoutSelfNotifications(t *testing.T) {
	f := newFixture(t)
	f.cfg.Features.NotifySelfLike = false
	_, cred := f.session(t)
	ctx := context.Background()

	post, _ := f.posts.CreatePost(ctx, CreatePostInput{Credential: cred})
	if _, err := f.posts.ToggleLike(ctx, cred, post.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	notifications, _ := f.posts.ListNotifications(ctx, cred)
	if len(notifications) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifications))
	}
}

func TestConcurrentToggleLike(t *testing.T) {
	f := newFixture(t)
	_, cred := f.session(t)
	ctx := context.Background()
	post, _ := f.posts.CreatePost(ctx, CreatePostInput{Credential: cred})

	const toggles = 40
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		liked int
	)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := f.posts.ToggleLike(ctx, cred, post.ID)
			if err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
			if state == models.LikeStateLiked {
				mu.Lock()
				liked++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	feed, _ := f.posts.GetFeed(ctx, cred)
	if feed[0].LikedBy(post.UserID) {
		t.Fatalf("even number of toggles should leave the post unliked")
	}
	notifications, _ := f.posts.ListNotifications(ctx, cred)
	if len(notifications) != liked {
		t.Fatalf("notifications %d != liked results %d", len(notifications), liked)
	}
}

func mustGet(t *testing.T, f *fixture, id string) models.User {
	t.Helper()
	user, err := f.store.Users().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return user
}
