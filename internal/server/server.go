package server

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"stackit.dev/forum/internal/config"
	"stackit.dev/forum/internal/jobs"
	"stackit.dev/forum/internal/middleware"
	"stackit.dev/forum/pkg/ratelimiter"
	"stackit.dev/forum/pkg/storage"
	"stackit.dev/forum/pkg/validator"

	adminHttp "stackit.dev/forum/internal/modules/admin/delivery/http"
	adminService "stackit.dev/forum/internal/modules/admin/service"

	answerHttp "stackit.dev/forum/internal/modules/answer/delivery/http"
	answerRepo "stackit.dev/forum/internal/modules/answer/repository"
	answerService "stackit.dev/forum/internal/modules/answer/service"

	attachmentHttp "stackit.dev/forum/internal/modules/attachment/delivery/http"
	attachmentRepo "stackit.dev/forum/internal/modules/attachment/repository"
	attachmentService "stackit.dev/forum/internal/modules/attachment/service"

	commentHttp "stackit.dev/forum/internal/modules/comment/delivery/http"
	commentRepo "stackit.dev/forum/internal/modules/comment/repository"
	commentService "stackit.dev/forum/internal/modules/comment/service"

	notiHttp "stackit.dev/forum/internal/modules/notification/delivery/http"
	notifRepo "stackit.dev/forum/internal/modules/notification/repository"
	notifService "stackit.dev/forum/internal/modules/notification/service"

	questionHttp "stackit.dev/forum/internal/modules/question/delivery/http"
	questionRepo "stackit.dev/forum/internal/modules/question/repository"
	questionService "stackit.dev/forum/internal/modules/question/service"

	searchService "stackit.dev/forum/internal/modules/search/service"

	tagHttp "stackit.dev/forum/internal/modules/tag/delivery/http"
	tagRepo "stackit.dev/forum/internal/modules/tag/repository"
	tagService "stackit.dev/forum/internal/modules/tag/service"

	userHttp "stackit.dev/forum/internal/modules/user/delivery/http"
	userRepo "stackit.dev/forum/internal/modules/user/repository"
	userService "stackit.dev/forum/internal/modules/user/service"

	voteHttp "stackit.dev/forum/internal/modules/vote/delivery/http"
	voteRepo "stackit.dev/forum/internal/modules/vote/repository"
	voteService "stackit.dev/forum/internal/modules/vote/service"

	viewRepo "stackit.dev/forum/internal/modules/view/repository"
	viewService "stackit.dev/forum/internal/modules/view/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	orphanUploadAge       = 24 * time.Hour
	uploadCleanupSchedule = "@every 12h"
	viewSyncSchedule      = "@every 1m"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	cleanup     attachmentService.AttachmentService
	views       viewService.ViewService
}

// NewServer wires every module. redisClient may be nil, which disables
// cooldowns, realtime notification delivery and view counting.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStorage storage.ImageStorage) *Server {
	validator.UseJSONFieldNames()

	limiter := ratelimiter.New(redisClient, ratelimiter.Cooldowns{
		Global:   cfg.RateLimitGlobal,
		Question: cfg.RateLimitQuestion,
		Answer:   cfg.RateLimitAnswer,
		Comment:  cfg.RateLimitComment,
	})
	meiliSvc := NewSearch(cfg)

	userRepository := userRepo.NewUserRepository(db)
	userSvc := userService.NewUserService(userRepository)
	authSvc := userService.NewAuthService(userSvc, userService.AuthConfig{
		Secret:             cfg.JWTSecret,
		TokenTTL:           cfg.JWTTTL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GoogleRedirectURL:  cfg.GoogleRedirectURL,
	})
	authHandler := userHttp.NewAuthHandler(authSvc, cfg.FrontendURL, cfg.AppEnv == "production")

	tagSvc := tagService.NewTagService(tagRepo.NewTagRepository(db))
	tagHandler := tagHttp.NewTagHandler(tagSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	questionRepository := questionRepo.NewQuestionRepository(db)
	answerRepository := answerRepo.NewAnswerRepository(db)
	voteRepository := voteRepo.NewVoteRepository(db)
	commentRepository := commentRepo.NewCommentRepository(db)

	questionSvc := questionService.NewService(questionRepository, answerRepository, voteRepository, tagSvc, meiliSvc, limiter)
	var viewSvc viewService.ViewService
	if redisClient != nil {
		viewSvc = viewService.NewViewService(redisClient, viewRepo.NewViewRepository(db))
	}
	questionHandler := questionHttp.NewQuestionHandler(questionSvc, viewSvc)
	userHandler := userHttp.NewUserHandler(userSvc, questionSvc)

	answerSvc := answerService.NewAnswerService(answerRepository, questionRepository, notificationSvc, limiter, questionSvc)
	answerHandler := answerHttp.NewAnswerHandler(answerSvc)

	voteSvc := voteService.NewVoteService(voteRepository, answerRepository)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	commentSvc := commentService.NewCommentService(commentRepository, answerRepository, userRepository, notificationSvc, limiter)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	adminSvc := adminService.NewAdminService(userRepository, questionRepository, answerRepository, commentRepository, voteRepository)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, questionSvc, answerSvc, commentSvc)

	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepo.NewUploadRepository(db), imageStorage, cfg.UploadFolder)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(authSvc, userSvc)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
	}
	api.GET("/tags", tagHandler.GetTags)
	api.GET("/answers/:id/comments", commentHandler.GetComments)

	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/questions", questionHandler.GetQuestions)
		public.GET("/questions/:id", questionHandler.GetQuestion)
		public.GET("/users/:id", userHandler.GetUser)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			adminGroup.GET("/questions", adminHandler.GetAllQuestions)
			adminGroup.GET("/answers", adminHandler.GetAllAnswers)
			adminGroup.GET("/comments", adminHandler.GetAllComments)
			adminGroup.DELETE("/questions/:id", adminHandler.DeleteQuestion)
			adminGroup.DELETE("/answers/:id", adminHandler.DeleteAnswer)
			adminGroup.DELETE("/comments/:id", adminHandler.DeleteComment)
			adminGroup.GET("/stats", adminHandler.GetStats)
		}

		protected.POST("/questions", questionHandler.AskQuestion)
		protected.DELETE("/questions/:id", questionHandler.DeleteQuestion)
		protected.PUT("/questions/:id/accept", questionHandler.AcceptAnswer)
		protected.POST("/questions/:id/answers", answerHandler.SubmitAnswer)

		protected.POST("/answers/:id/votes", voteHandler.CastVote)
		protected.POST("/answers/:id/comments", commentHandler.AddComment)
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.POST("/uploads", attachmentHandler.Upload)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		cleanup:     attachmentSvc,
		views:       viewSvc,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// StartWorkers schedules the background jobs, which stop when ctx ends:
// the view counter flush (when redis is configured) and the orphaned upload cleanup.
func (s *Server) StartWorkers(ctx context.Context) error {
	scheduler := jobs.NewScheduler(ctx)

	if s.views != nil {
		err := scheduler.Register(jobs.Func("view-sync", viewSyncSchedule, func(ctx context.Context) error {
			n, err := s.views.Sync(ctx)
			if n > 0 {
				log.Printf("server: synced views for %d questions", n)
			}
			return err
		}))
		if err != nil {
			return err
		}
	}

	err := scheduler.Register(jobs.Func("upload-cleanup", uploadCleanupSchedule, func(ctx context.Context) error {
		n, err := s.cleanup.CleanupOrphans(ctx, orphanUploadAge)
		if err != nil {
			return err
		}
		log.Printf("server: upload cleanup removed %d files", n)
		return nil
	}))
	if err != nil {
		return err
	}

	scheduler.Start()
	return nil
}

// NewSearch returns the meilisearch backed search service, or nil when no
// host is configured.
func NewSearch(cfg *config.Config) searchService.SearchService {
	host := cfg.MeiliSearchHost
	if host == "" {
		return nil
	}
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}

	client := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliSearchService(client)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
