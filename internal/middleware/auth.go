package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/models"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

const currentUserKey = "current_user"

// Extractor pulls a credential out of a request.
type Extractor func(c *gin.Context) service.Credential

func CookieCredential(name string) Extractor {
	return func(c *gin.Context) service.Credential {
		token, _ := c.Cookie(name)
		return service.Credential{Token: token, Source: service.SourceCookie}
	}
}

// BodyCredential reads the token from a urlencoded or multipart form field.
func BodyCredential(field string) Extractor {
	return func(c *gin.Context) service.Credential {
		return service.Credential{Token: c.PostForm(field), Source: service.SourceBody}
	}
}

// BearerCredential accepts any token signed with the session secret.
func BearerCredential() Extractor {
	return func(c *gin.Context) service.Credential {
		return service.Credential{Token: bearerToken(c), Source: service.SourceBearer}
	}
}

// StoredBearerCredential reads the Authorization header but only accepts the
// token currently stored on the user, so a newer login revokes it.
func StoredBearerCredential() Extractor {
	return func(c *gin.Context) service.Credential {
		return service.Credential{Token: bearerToken(c), Source: service.SourceStoredBearer}
	}
}

func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Session resolves the request's credential and stores the user on the
// context. Failures are handed to deny, which must write the response.
func Session(resolver service.SessionResolver, extract Extractor, deny func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.ResolveSession(c.Request.Context(), extract(c))
		if err != nil {
			deny(c, err)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Session.
func CurrentUser(c *gin.Context) (models.User, error) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, service.ErrNoSession
	}
	user, ok := val.(models.User)
	if !ok {
		return models.User{}, apperror.Internal(nil)
	}
	return user, nil
}
