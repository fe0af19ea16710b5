package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MassterJoe/alertMe9Ja/internal/middleware"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

const postIDHeader = "Post-Id"

func (h HandlerSet) AddPost(c *gin.Context) {
	image, err := readFormFile(c, "image")
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	video, err := readFormFile(c, "video")
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), service.CreatePostInput{
		Credential: middleware.BodyCredential(tokenField)(c),
		Caption:    c.PostForm("caption"),
		Type:       c.PostForm("type"),
		Image:      image,
		Video:      video,
	})
	if err != nil {
		h.fail(c, err, nil, msgLoggedOut)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Post added successfully!",
		"post":    newPostView(post),
	})
}

func (h HandlerSet) GetNewsfeed(c *gin.Context) {
	cred := middleware.StoredBearerCredential()(c)
	if cred.Token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": msgNoAccessToken})
		return
	}

	posts, err := h.posts.GetFeed(c.Request.Context(), cred)
	if err != nil {
		h.fail(c, err, nil, msgLoggedOut)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Record has been fetched",
		"data":    views,
	})
}

func (h HandlerSet) ToggleLikePost(c *gin.Context) {
	state, err := h.posts.ToggleLike(c.Request.Context(), middleware.StoredBearerCredential()(c), c.GetHeader(postIDHeader))
	if err != nil {
		h.fail(c, err, nil, msgLoggedOut)
		return
	}

	message := "Post liked successfully."
	if state == models.LikeStateUnliked {
		message = "Post unliked successfully."
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  string(state),
		"message": message,
	})
}

func (h HandlerSet) GetNotifications(c *gin.Context) {
	notifications, err := h.posts.ListNotifications(c.Request.Context(), middleware.StoredBearerCredential()(c))
	if err != nil {
		h.fail(c, err, nil, msgLoggedOut)
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, newNotificationView(n))
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Record has been fetched",
		"data":    views,
	})
}
