package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

type signupRequest struct {
	Name     string `form:"name" json:"name"`
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	Gender   string `form:"gender" json:"gender"`
	DOB      string `form:"dob" json:"dob"`
	City     string `form:"city" json:"city"`
	Country  string `form:"country" json:"country"`
	AboutMe  string `form:"aboutMe" json:"aboutMe"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c)
		return
	}

	err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		DOB:      req.DOB,
		City:     req.City,
		Country:  req.Country,
		Bio:      req.AboutMe,
	})
	if err != nil {
		h.fail(c, err, statusCodes{apperror.KindConflict: http.StatusOK})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Signed up successfully, you can log in now.",
	})
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badPayload(c)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, statusCodes{
			apperror.KindNotFound:     http.StatusOK,
			apperror.KindUnauthorized: http.StatusOK,
		})
		return
	}

	sec := h.cfg.Security
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sec.CookieName, result.AccessToken, int(sec.CookieMaxAge.Seconds()), "/", "", sec.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"message":      "Login successfully",
		"accessToken":  result.AccessToken,
		"profileImage": service.DataURI(result.ProfileImage),
	})
}

// Logout only sends the browser back to the login page; the stored token
// stays valid until the next login replaces it.
func (h HandlerSet) Logout(c *gin.Context) {
	c.Redirect(http.StatusFound, h.cfg.LoginPath)
}
