package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/middleware"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
)

func (h HandlerSet) Home(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		h.redirectToLogin(c, err)
		return
	}

	profile := h.profiles.GetProfile(user)
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"profileImage": profile.ProfileImage,
		"coverPhoto":   profile.CoverPhoto,
	})
}

func (h HandlerSet) ProfilePage(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		h.redirectToLogin(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Record has been fetched.",
		"data":    h.profiles.GetProfile(user),
	})
}

type updateProfileRequest struct {
	Name    *string `form:"name" json:"name"`
	DOB     *string `form:"dob" json:"dob"`
	City    *string `form:"city" json:"city"`
	Country *string `form:"country" json:"country"`
	AboutMe *string `form:"aboutMe" json:"aboutMe"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c)
		return
	}

	// An empty dob means "not supplied".
	if req.DOB != nil && *req.DOB == "" {
		req.DOB = nil
	}

	err := h.profiles.UpdateProfile(c.Request.Context(), h.cookieCredential()(c), models.ProfileUpdate{
		Name:    req.Name,
		DOB:     req.DOB,
		City:    req.City,
		Country: req.Country,
		Bio:     req.AboutMe,
	})
	if err != nil {
		h.fail(c, err, statusCodes{apperror.KindUnauthenticated: http.StatusOK}, msgLoggedOutShort)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Profile has been updated",
	})
}

func (h HandlerSet) GetUser(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		h.denyGetUser(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Record has been fetched.",
		"data":    h.profiles.GetProfile(user),
	})
}
