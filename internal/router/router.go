package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yatube/internal/handler"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/pkg/config"
	"yatube/pkg/telemetry"
)

// Deps is everything the HTTP layer needs
type Deps struct {
	Posts   *service.PostService
	Follows *service.FollowService
	Users   *service.UserService
	Groups  *service.GroupService

	PageCache repository.PageCache
	// Media serves uploaded images; nil when they live in a bucket
	Media   http.FileSystem
	Ping    func(ctx context.Context) error
	Metrics bool

	Auth         config.AuthConfig
	Cache        config.CacheConfig
	MediaURL     string
	ServiceName  string
	SecureCookie bool
}

func New(d Deps) (*gin.Engine, error) {
	renderer, err := handler.NewRenderer(d.Posts.ImageURL)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = renderer
	r.Use(gin.Recovery(), middleware.RequestLogger(), telemetry.Middleware())
	r.Use(middleware.AuthMiddleware(d.Users, d.Auth.CookieName))
	r.NoRoute(handler.NotFound)

	post := handler.NewPostHandler(d.Posts)
	follow := handler.NewFollowHandler(d.Follows)
	group := handler.NewGroupHandler(d.Groups)
	user := handler.NewUserHandler(d.Users, handler.SessionCookie{
		Name:   d.Auth.CookieName,
		MaxAge: d.Auth.MaxAge,
		Secure: d.SecureCookie,
	})

	r.GET("/health", handler.Health(d.ServiceName, d.Ping))
	if d.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if d.Media != nil {
		r.StaticFS(d.MediaURL, d.Media)
	}

	// anonymous pages; only the index is cached
	r.GET("/", middleware.CachePage(d.PageCache, d.Cache.IndexTTL), post.Index)
	r.GET("/groups/", group.List)
	r.GET("/group/:slug/", post.GroupPosts)
	r.GET("/profile/:username/", post.Profile)
	r.GET("/posts/:id/", post.Detail)

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/signup/", user.SignupForm)
		authGroup.POST("/signup/", user.Signup)
		authGroup.GET("/login/", user.LoginForm)
		authGroup.POST("/login/", user.Login)
		authGroup.GET("/logout/", user.Logout)
	}

	private := r.Group("/")
	private.Use(middleware.LoginRequired(d.Auth.LoginURL))
	{
		private.GET("/create/", post.CreateForm)
		private.POST("/create/", post.Create)
		private.GET("/posts/:id/edit/", post.EditForm)
		private.POST("/posts/:id/edit/", post.Edit)
		private.GET("/posts/:id/comment/", post.AddComment)
		private.POST("/posts/:id/comment/", post.AddComment)
		private.GET("/follow/", post.FollowIndex)
		private.GET("/profile/:username/follow/", follow.Follow)
		private.GET("/profile/:username/unfollow/", follow.Unfollow)
	}

	return r, nil
}
