package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/middleware"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

const tokenField = "accessToken"

func (h HandlerSet) UploadCoverPhoto(c *gin.Context) {
	file, err := readFormFile(c, "coverPhoto")
	if err != nil {
		h.fail(c, err, nil)
		return
	}

	uri, err := h.profiles.UploadMedia(c.Request.Context(), uploadInput(c, models.MediaSlotCover, file))
	if err != nil {
		h.fail(c, err, statusCodes{apperror.KindUnauthenticated: http.StatusOK}, msgLoggedOutShort+".")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cover photo has been updated",
		"data":    uri,
	})
}

func (h HandlerSet) UploadProfileImage(c *gin.Context) {
	file, err := readFormFile(c, "profileImage")
	if err != nil {
		h.fail(c, err, nil)
		return
	}
	if file == nil || len(file.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No file uploaded"})
		return
	}

	uri, err := h.profiles.UploadMedia(c.Request.Context(), uploadInput(c, models.MediaSlotAvatar, file))
	if err != nil {
		h.fail(c, err, statusCodes{apperror.KindUnauthenticated: http.StatusNotFound}, msgLoggedOut)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Profile image updated successfully",
		"data":    uri,
	})
}

func uploadInput(c *gin.Context, slot models.MediaSlot, file *service.Attachment) service.UploadInput {
	input := service.UploadInput{
		Credential: middleware.BodyCredential(tokenField)(c),
		Slot:       slot,
	}
	if file != nil {
		input.Data = file.Data
		input.ContentType = file.ContentType
	}
	return input
}
