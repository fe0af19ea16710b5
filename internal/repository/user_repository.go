package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MassterJoe/alertMe9Ja/internal/models"
)

const userColumns = `
	id, name, username, email, password_hash, gender, dob, city, country, bio,
	COALESCE(access_token, ''), profile_image_type, profile_image, cover_photo_type, cover_photo,
	friend_ids, page_ids, group_ids, created_at, updated_at
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, name, username, email, password_hash, gender, dob, city, country, bio,
			friend_ids, page_ids, group_ids, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Gender,
		user.DOB,
		user.City,
		user.Country,
		user.Bio,
		nonNil(user.Friends),
		nonNil(user.Pages),
		nonNil(user.Groups),
	)
	if isUniqueViolation(err) {
		return ErrDuplicateUser
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $2 LIMIT 1`, email, username)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByAccessToken(ctx context.Context, token string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE access_token = $1`, token)
}

func (r *UserRepository) SetAccessToken(ctx context.Context, id string, token string) error {
	const query = `UPDATE users SET access_token = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, id, token)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) error {
	const query = `
		UPDATE users
		SET name = COALESCE($2, name),
		    dob = COALESCE($3, dob),
		    city = COALESCE($4, city),
		    country = COALESCE($5, country),
		    bio = COALESCE($6, bio),
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, update.Name, update.DOB, update.City, update.Country, update.Bio)
}

func (r *UserRepository) SetMedia(ctx context.Context, id string, slot models.MediaSlot, media models.Media) error {
	var query string
	switch slot {
	case models.MediaSlotAvatar:
		query = `UPDATE users SET profile_image_type = $2, profile_image = $3, updated_at = NOW() WHERE id = $1`
	case models.MediaSlotCover:
		query = `UPDATE users SET cover_photo_type = $2, cover_photo = $3, updated_at = NOW() WHERE id = $1`
	default:
		return fmt.Errorf("unknown media slot %q", slot)
	}
	return r.execOne(ctx, query, id, media.ContentType, media.Data)
}

func (r *UserRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (models.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user                     models.User
		profileType, coverType   *string
		profileImage, coverPhoto []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Gender,
		&user.DOB,
		&user.City,
		&user.Country,
		&user.Bio,
		&user.AccessToken,
		&profileType,
		&profileImage,
		&coverType,
		&coverPhoto,
		&user.Friends,
		&user.Pages,
		&user.Groups,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return models.User{}, err
	}
	user.ProfileImage = scanMedia(profileType, profileImage)
	user.CoverPhoto = scanMedia(coverType, coverPhoto)
	return user, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
