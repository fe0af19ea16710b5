package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

const (
	msgLoggedOutShort  = "User has been logged out. Please login again"
	msgLoggedOut       = "User not found or logged out. Please log in again."
	msgNoAccessToken   = "No access token provided"
	msgInvalidPayload  = "Invalid request payload."
	msgPayloadTooLarge = "Uploaded file is too large."
)

var errPayloadTooLarge = errors.New("payload too large")

// statusCodes overrides the default HTTP status for selected error kinds on
// a single route.
type statusCodes map[apperror.Kind]int

func defaultStatus(kind apperror.Kind) int {
	switch kind {
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthorized, apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindValidation, apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. unauthMessage, when given, replaces the
// message of an unauthenticated error.
func (h HandlerSet) fail(c *gin.Context, err error, codes statusCodes, unauthMessage ...string) {
	if errors.Is(err, errPayloadTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "message": msgPayloadTooLarge})
		return
	}

	kind := apperror.KindOf(err)
	status, ok := codes[kind]
	if !ok {
		status = defaultStatus(kind)
	}

	message := apperror.Message(err)
	if kind == apperror.KindUnauthenticated && len(unauthMessage) > 0 {
		message = unauthMessage[0]
	}

	if kind == apperror.KindInternal {
		h.log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.Writer.Header().Get("X-Request-Id")).
			Msg("request failed")
	}

	c.JSON(status, gin.H{"status": "error", "message": message})
}

func badPayload(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": msgInvalidPayload})
}

// readFormFile loads an uploaded file into memory. A missing file, or a
// request that is not multipart at all, yields nil.
func readFormFile(c *gin.Context, field string) (*service.Attachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, errPayloadTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, nil
		}
		return nil, apperror.New(apperror.KindBadRequest, msgInvalidPayload, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &service.Attachment{Data: data, ContentType: header.Header.Get("Content-Type")}, nil
}
