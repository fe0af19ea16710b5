package handlers

import (
	"time"

	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

type authorView struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

type postView struct {
	ID        string     `json:"_id"`
	Caption   string     `json:"caption"`
	Type      string     `json:"type"`
	CreatedAt int64      `json:"createdAt"`
	Image     *string    `json:"image"`
	Video     *string    `json:"video"`
	Likers    []string   `json:"likers"`
	Comments  []string   `json:"comments"`
	Shares    []string   `json:"shares"`
	User      authorView `json:"user"`
}

func newPostView(p models.Post) postView {
	return postView{
		ID:        p.ID,
		Caption:   p.Caption,
		Type:      p.Type,
		CreatedAt: p.CreatedAt,
		Image:     service.DataURI(p.Image),
		Video:     service.DataURI(p.Video),
		Likers:    nonNil(p.Likers),
		Comments:  nonNil(p.Comments),
		Shares:    nonNil(p.Shares),
		User: authorView{
			ID:           p.Author.ID,
			Name:         p.Author.Name,
			ProfileImage: service.DataURI(p.Author.ProfileImage),
		},
	}
}

type notificationView struct {
	ID           string    `json:"_id"`
	Type         string    `json:"type"`
	Content      string    `json:"content"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newNotificationView(n models.Notification) notificationView {
	return notificationView{
		ID:           n.ID,
		Type:         n.Type,
		Content:      n.Content,
		ProfileImage: service.DataURI(n.ProfileImage),
		CreatedAt:    n.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
