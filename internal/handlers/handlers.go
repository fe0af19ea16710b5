package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MassterJoe/alertMe9Ja/internal/apperror"
	"github.com/MassterJoe/alertMe9Ja/internal/config"
	"github.com/MassterJoe/alertMe9Ja/internal/middleware"
	"github.com/MassterJoe/alertMe9Ja/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Users     service.UserStore
	Posts     service.PostStore
	Database  Pinger
	Cache     *redis.Client
	Publisher service.ArchivePublisher
	Metrics   *middleware.Metrics
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	profiles *service.ProfileService
	posts    *service.PostService
	db       Pinger
	cache    *redis.Client
	limiter  *middleware.RateLimiter
	metrics  *middleware.Metrics
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	auth := service.NewAuthService(deps.Users, cfg, log)

	var limiter *middleware.RateLimiter
	if deps.Cache != nil {
		limiter = middleware.NewRateLimiter(deps.Cache, cfg.RateLimit, log)
	}

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		profiles: service.NewProfileService(deps.Users, auth, deps.Publisher, cfg, log),
		posts:    service.NewPostService(deps.Posts, auth, cfg, log),
		db:       deps.Database,
		cache:    deps.Cache,
		limiter:  limiter,
		metrics:  deps.Metrics,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/signup", middleware.RateLimit(h.limiter, "signup", h.metrics), h.Signup)
	router.POST("/login", middleware.RateLimit(h.limiter, "login", h.metrics), h.Login)
	router.GET("/logout", h.Logout)

	pageSession := middleware.Session(h.auth, h.cookieCredential(), h.redirectToLogin)
	router.GET("/", pageSession, h.Home)
	router.GET("/updateProfile", pageSession, h.ProfilePage)
	router.POST("/updateProfile", h.UpdateProfile)

	router.POST("/getUser", middleware.Session(h.auth, middleware.BearerCredential(), h.denyGetUser), h.GetUser)

	uploads := router.Group("", middleware.BodyLimit(h.cfg.Upload.MaxBytes))
	uploads.POST("/uploadCoverPhoto", h.UploadCoverPhoto)
	uploads.POST("/uploadProfileImage", h.UploadProfileImage)
	uploads.POST("/addPost", h.AddPost)

	router.POST("/getNewsfeed", h.GetNewsfeed)
	router.POST("/toggleLikePost", h.ToggleLikePost)
	router.POST("/getNotifications", h.GetNotifications)
}

func (h HandlerSet) cookieCredential() middleware.Extractor {
	return middleware.CookieCredential(h.cfg.Security.CookieName)
}

func (h HandlerSet) redirectToLogin(c *gin.Context, err error) {
	if apperror.Is(err, apperror.KindUnauthenticated) {
		c.Redirect(http.StatusFound, h.cfg.LoginPath)
		return
	}
	h.fail(c, err, nil)
}

func (h HandlerSet) denyGetUser(c *gin.Context, err error) {
	h.fail(c, err, statusCodes{apperror.KindUnauthenticated: http.StatusOK}, msgLoggedOutShort)
}
