package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/minimalblog/internal/config"
	"anoa.com/minimalblog/internal/middleware"
	"anoa.com/minimalblog/pkg/apperror"
	"anoa.com/minimalblog/pkg/password"
	"anoa.com/minimalblog/pkg/render"
	"anoa.com/minimalblog/pkg/response"
	"anoa.com/minimalblog/pkg/storage"
	"anoa.com/minimalblog/web"

	commentRepo "anoa.com/minimalblog/internal/modules/comment/repository"
	commentService "anoa.com/minimalblog/internal/modules/comment/service"

	pageHttp "anoa.com/minimalblog/internal/modules/page/delivery/http"

	postHttp "anoa.com/minimalblog/internal/modules/post/delivery/http"
	postRepo "anoa.com/minimalblog/internal/modules/post/repository"
	postService "anoa.com/minimalblog/internal/modules/post/service"

	searchHttp "anoa.com/minimalblog/internal/modules/search/delivery/http"
	searchService "anoa.com/minimalblog/internal/modules/search/service"

	sessionRepo "anoa.com/minimalblog/internal/modules/session/repository"
	sessionService "anoa.com/minimalblog/internal/modules/session/service"

	userHttp "anoa.com/minimalblog/internal/modules/user/delivery/http"
	userRepo "anoa.com/minimalblog/internal/modules/user/repository"
	userService "anoa.com/minimalblog/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

type options struct {
	renderer     render.Renderer
	imageStorage storage.ImageStorage
	clock        func() time.Time
}

type Option func(*options)

// WithRenderer replaces the embedded HTML templates.
func WithRenderer(r render.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithImageStorage replaces the Cloudinary cover storage.
func WithImageStorage(s storage.ImageStorage) Option {
	return func(o *options) { o.imageStorage = s }
}

// WithClock sets the clock used to date new posts.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// NewServer wires every module onto a gin engine. redisClient may be nil, in
// which case sessions live in the database.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	o := &options{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	if o.renderer == nil {
		tmpl, err := render.LoadTemplates(web.Templates())
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		router.SetHTMLTemplate(tmpl)
		o.renderer = render.NewHTMLRenderer()
	}

	if o.imageStorage == nil && cfg.CloudinaryEnabled() {
		imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			return nil, err
		}
		o.imageStorage = imageStorage
	}

	userRepo := userRepo.NewUserRepository(db)
	postRepo := postRepo.NewPostRepository(db)
	commentRepo := commentRepo.NewCommentRepository(db)

	var store sessionRepo.Store
	if redisClient != nil {
		store = sessionRepo.NewRedisStore(redisClient)
		log.Info().Msg("sessions stored in redis")
	} else {
		store = sessionRepo.NewGormStore(db)
	}
	sessionSvc := sessionService.NewService(store, cfg.SecretKey, cfg.SessionTTL)

	var searchSvc searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(meiliHost(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewMeiliSearchService(meiliClient, postRepo)
		log.Info().Str("host", cfg.MeiliSearchHost).Msg("post search backed by meilisearch")
	} else {
		searchSvc = searchService.NewDBSearchService(postRepo)
	}

	hasher := password.NewHasher(cfg.PasswordIterations)
	authSvc := userService.NewAuthService(userRepo, hasher)

	postOpts := []postService.Option{
		postService.WithSearch(searchSvc),
		postService.WithClock(o.clock),
	}
	if o.imageStorage != nil {
		postOpts = append(postOpts, postService.WithImageStorage(o.imageStorage))
	}
	postSvc := postService.NewPostService(postRepo, commentRepo, postOpts...)
	commentSvc := commentService.NewCommentService(commentRepo)

	authMiddleware := middleware.NewAuthMiddleware(sessionSvc, userRepo, o.renderer, !cfg.IsDevelopment())

	authHandler := userHttp.NewAuthHandler(authSvc, sessionSvc, authMiddleware, o.renderer)
	postHandler := postHttp.NewPostHandler(postSvc, commentSvc, o.renderer)
	pageHandler := pageHttp.NewPageHandler(o.renderer)
	searchHandler := searchHttp.NewSearchHandler(searchSvc, o.renderer)

	router.Use(middleware.Recovery(o.renderer))
	router.Use(middleware.RequestLogger("/favicon.ico"))
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(authMiddleware.LoadPrincipal())

	router.NoRoute(func(c *gin.Context) {
		response.ResponseError(c, o.renderer, apperror.ErrNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		response.ResponseError(c, o.renderer, apperror.New(http.StatusMethodNotAllowed, "method not allowed", nil))
	})

	router.GET("/", postHandler.Index)

	router.GET("/register", authHandler.RegisterForm)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.LoginForm)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.POST("/logout", authHandler.Logout)

	router.GET("/post/:id", postHandler.ShowPost)
	router.POST("/post/:id", postHandler.AddComment)

	router.GET("/about", pageHandler.About)
	router.GET("/contact", pageHandler.Contact)
	router.GET("/search", searchHandler.Search)

	admin := router.Group("")
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("/new-post", postHandler.NewPostForm)
		admin.POST("/new-post", postHandler.CreatePost)
		admin.GET("/edit-post/:id", postHandler.EditPostForm)
		admin.POST("/edit-post/:id", postHandler.UpdatePost)
		admin.POST("/delete/:id", postHandler.DeletePost)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func meiliHost(host string) string {
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
