package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MassterJoe/alertMe9Ja/internal/models"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, post models.Post) error {
	const query = `
		INSERT INTO posts (
			id, user_id, caption, type, created_at,
			image_type, image, video_type, video,
			comments, shares,
			author_id, author_name, author_image_type, author_image
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15
		)
	`

	imageType, image := mediaArgs(post.Image)
	videoType, video := mediaArgs(post.Video)
	authorImageType, authorImage := mediaArgs(post.Author.ProfileImage)

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.UserID,
		post.Caption,
		post.Type,
		post.CreatedAt,
		imageType,
		image,
		videoType,
		video,
		nonNil(post.Comments),
		nonNil(post.Shares),
		post.Author.ID,
		post.Author.Name,
		authorImageType,
		authorImage,
	)
	if isForeignKeyViolation(err) {
		return ErrUserNotFound
	}
	return err
}

// ListByUser returns the newest posts first. Posts sharing a timestamp keep
// insertion order.
func (r *PostRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Post, error) {
	const query = `
		SELECT p.id, p.user_id, p.caption, p.type, p.created_at,
		       p.image_type, p.image, p.video_type, p.video,
		       p.comments, p.shares,
		       p.author_id, p.author_name, p.author_image_type, p.author_image,
		       ARRAY(
		           SELECT l.user_id FROM post_likers l
		           WHERE l.post_id = p.id
		           ORDER BY l.liked_at, l.user_id
		       ) AS likers
		FROM posts p
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.seq ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var (
			post                      models.Post
			imageType, videoType      *string
			authorImageType           *string
			image, video, authorImage []byte
		)
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Caption,
			&post.Type,
			&post.CreatedAt,
			&imageType,
			&image,
			&videoType,
			&video,
			&post.Comments,
			&post.Shares,
			&post.Author.ID,
			&post.Author.Name,
			&authorImageType,
			&authorImage,
			&post.Likers,
		); err != nil {
			return nil, err
		}
		post.Image = scanMedia(imageType, image)
		post.Video = scanMedia(videoType, video)
		post.Author.ProfileImage = scanMedia(authorImageType, authorImage)
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ToggleLike flips likerID's membership in the post's likers inside one
// transaction. The post row lock serialises concurrent toggles on the same
// post; onLike, when non-nil, is appended to the owner's notifications only
// when the like is added.
func (r *PostRepository) ToggleLike(ctx context.Context, ownerID, postID, likerID string, onLike *models.Notification) (models.LikeState, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 AND user_id = $2 FOR UPDATE`, postID, ownerID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPostNotFound
		}
		return "", err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM post_likers WHERE post_id = $1 AND user_id = $2`, postID, likerID)
	if err != nil {
		return "", err
	}

	state := models.LikeStateUnliked
	if cmd.RowsAffected() == 0 {
		state = models.LikeStateLiked
		if _, err := tx.Exec(ctx,
			`INSERT INTO post_likers (post_id, user_id, liked_at) VALUES ($1, $2, NOW())`,
			postID, likerID,
		); err != nil {
			return "", err
		}
		if onLike != nil {
			if err := insertNotification(ctx, tx, ownerID, *onLike); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return state, nil
}

func (r *PostRepository) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	const query = `
		SELECT id, type, content, profile_image_type, profile_image, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var (
			n         models.Notification
			imageType *string
			image     []byte
		)
		if err := rows.Scan(&n.ID, &n.Type, &n.Content, &imageType, &image, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.ProfileImage = scanMedia(imageType, image)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func insertNotification(ctx context.Context, tx pgx.Tx, userID string, n models.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, type, content, profile_image_type, profile_image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	imageType, image := mediaArgs(n.ProfileImage)
	_, err := tx.Exec(ctx, query, n.ID, userID, n.Type, n.Content, imageType, image, n.CreatedAt)
	return err
}
