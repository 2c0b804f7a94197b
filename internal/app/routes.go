package app

import (
	"net/http"
	"time"

	"github.com/swoyamsuwal/django-twitter/internal/auth"
	"github.com/swoyamsuwal/django-twitter/internal/cache"
	"github.com/swoyamsuwal/django-twitter/internal/config"
	"github.com/swoyamsuwal/django-twitter/internal/dto"
	"github.com/swoyamsuwal/django-twitter/internal/events"
	"github.com/swoyamsuwal/django-twitter/internal/handlers"
	"github.com/swoyamsuwal/django-twitter/internal/middleware"
	"github.com/swoyamsuwal/django-twitter/internal/repo"
	"github.com/swoyamsuwal/django-twitter/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config config.Config
	Log    *zap.Logger
	Tweets repo.TweetRepo
	Users  repo.UserRepo
	Redis  *redis.Client
	Events events.Publisher
}

// NewRouter returns an engine with middleware and every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(d.Log))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Cookie", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, d)
	return r
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, d Deps) {
	cfg := d.Config
	dto.RegisterValidators()

	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionStore := auth.NewStore(d.Redis, cfg.Session.TTL.Duration())
	site := r.Group("", auth.LoadSession(sessionStore, cfg.Session.CookieName, d.Log))

	userSvc := service.NewUserService(d.Users, d.Events, d.Log)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc, handlers.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}, d.Log)
	registerAuthRoutes(site, authHandler)

	ownership := service.Ownership(cfg.Tweets.EnforceOwnership)
	if ownership == service.AnyCaller {
		d.Log.Warn("tweet ownership is not enforced: any caller may update or delete any tweet")
	}
	tweetCache := cache.NewTweetCache(d.Redis, cfg.Redis.DefaultTTL.Duration())
	tweetSvc := service.NewTweetService(d.Tweets, tweetCache, d.Events, d.Log, ownership)
	registerTweetRoutes(site, handlers.NewTweetHandler(tweetSvc, d.Log), ownership)
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func registerTweetRoutes(site *gin.RouterGroup, h *handlers.TweetHandler, ownership service.Ownership) {
	site.GET("/", h.List)
	site.GET("/search/", h.Search)
	site.GET("/tweets/:id/", h.Detail)
	site.POST("/tweets/create/", auth.RequireSession(), h.Create)

	writes := site.Group("")
	if ownership == service.OwnerOnly {
		writes.Use(auth.RequireSession())
	}
	writes.PUT("/tweets/:id/update/", h.Update)
	writes.DELETE("/tweets/:id/delete/", h.Delete)
}

func registerAuthRoutes(site *gin.RouterGroup, h *handlers.AuthHandler) {
	site.POST("/register/", h.Register)
	site.POST("/login/", h.Login)
	site.POST("/logout/", h.Logout)
}
