package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/ids"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/repository"
	"github.com/MassterJoe/alertMe9Ja/internal/security"
)

type AuthService struct {
	users   UserStore
	cfg     *config.AppConfig
	log     zerolog.Logger
	timeout deadline
	now     func() time.Time
}

func NewAuthService(users UserStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		cfg:     cfg,
		log:     log,
		timeout: deadline(cfg.Store.Timeout),
		now:     time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Gender   string
	DOB      string
	City     string
	Country  string
	Bio      string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	if input.Email == "" || input.Username == "" || input.Password == "" {
		return apperror.Validation("Email, username and password are required.")
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	_, err := s.users.FindByEmailOrUsername(storeCtx, input.Email, input.Username)
	cancel()
	switch {
	case err == nil:
		return apperror.Conflict("Email or username already exists.")
	case !errors.Is(err, repository.ErrUserNotFound):
		return apperror.Internal(err)
	}

	passwordHash, err := security.HashPassword(input.Password, s.cfg.Security.BcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}

	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Gender:       input.Gender,
		DOB:          input.DOB,
		City:         input.City,
		Country:      input.Country,
		Bio:          input.Bio,
		Friends:      []string{},
		Pages:        []string{},
		Groups:       []string{},
	}

	storeCtx, cancel = s.timeout.wrap(ctx)
	defer cancel()
	if err := s.users.Create(storeCtx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return apperror.Conflict("Email or username already exists.")
		}
		return apperror.Internal(err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return nil
}

type LoginResult struct {
	AccessToken  string
	ProfileImage *models.Media
	User         models.User
}

// Login verifies the password and replaces the user's active token.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	storeCtx, cancel := s.timeout.wrap(ctx)
	user, err := s.users.FindByEmail(storeCtx, strings.TrimSpace(email))
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, apperror.NotFound("Email does not exist")
		}
		return LoginResult{}, apperror.Internal(err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
	}
	if !ok {
		return LoginResult{}, apperror.Unauthorized("Incorrect password")
	}

	token, err := security.GenerateSessionToken(s.cfg.Security.JWTSecret, user.Email, user.ID, s.now())
	if err != nil {
		return LoginResult{}, apperror.Internal(err)
	}

	storeCtx, cancel = s.timeout.wrap(ctx)
	defer cancel()
	if err := s.users.SetAccessToken(storeCtx, user.ID, token); err != nil {
		return LoginResult{}, apperror.Internal(err)
	}
	user.AccessToken = token

	return LoginResult{
		AccessToken:  token,
		ProfileImage: user.ProfileImage,
		User:         user,
	}, nil
}

// ResolveSession maps a credential to its user. Cookie, body and stored-bearer
// credentials must match the stored token; signed bearer credentials are
// verified and then looked up by the id they carry.
func (s *AuthService) ResolveSession(ctx context.Context, cred Credential) (models.User, error) {
	if cred.Token == "" {
		return models.User{}, ErrNoSession
	}

	storeCtx, cancel := s.timeout.wrap(ctx)
	defer cancel()

	var (
		user models.User
		err  error
	)
	switch cred.Source {
	case SourceBearer:
		claims, parseErr := security.ParseSessionToken(cred.Token, s.cfg.Security.JWTSecret)
		if parseErr != nil {
			return models.User{}, ErrNoSession
		}
		user, err = s.users.GetByID(storeCtx, claims.UserID)
	default:
		user, err = s.users.FindByAccessToken(storeCtx, cred.Token)
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrNoSession
		}
		return models.User{}, apperror.Internal(err)
	}
	return user, nil
}
