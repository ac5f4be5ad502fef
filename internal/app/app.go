package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/selam-edu/core/internal/config"
	"github.com/selam-edu/core/internal/database"
	"github.com/selam-edu/core/internal/middleware"
	"github.com/selam-edu/core/internal/modules/conversation"
	"github.com/selam-edu/core/internal/modules/escalation"
	"github.com/selam-edu/core/internal/modules/qa"
	"github.com/selam-edu/core/internal/modules/qa/alignment"
	"github.com/selam-edu/core/internal/modules/qa/moderation"
	"github.com/selam-edu/core/internal/modules/qa/provider"
	"github.com/selam-edu/core/internal/modules/qa/retrieval"
	"github.com/selam-edu/core/internal/modules/telemetry"
	pkgcron "github.com/selam-edu/core/internal/pkg/cron"
	jwtpkg "github.com/selam-edu/core/internal/pkg/jwt"
	pkgredis "github.com/selam-edu/core/internal/pkg/redis"
	"github.com/selam-edu/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler

	qaSvc   *qa.Service
	convSvc *conversation.Store
	escSvc  *escalation.Service
	sink    *telemetry.Sink
	taskSvc *taskqueue.Service
}

// New initializes the application: config → DB → Redis → pipeline → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "x-api-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	taskSvc := taskqueue.NewService(rc)
	convSvc := conversation.NewStore(db)
	escSvc := escalation.NewService(db, taskSvc, logger.Named("escalation"))

	anonymize := cfg.Pipeline.AnonymizeUserData == nil || *cfg.Pipeline.AnonymizeUserData
	sink := telemetry.NewSink(
		db,
		cfg.Pipeline.RetainConversationData,
		anonymize,
		cfg.Pipeline.ConversationRetentionDays,
		logger.Named("telemetry"),
	)

	gen := provider.NewClient(cfg.AI, cfg.Pipeline.MaxRetries, logger.Named("provider"))

	var retriever qa.Retriever
	if cfg.KnowledgeBase.Enable {
		wc, err := retrieval.NewWeaviateClient(cfg.KnowledgeBase)
		if err != nil {
			logger.Warn("knowledge base unavailable, retrieval disabled", zap.Error(err))
		} else {
			retriever = retrieval.NewRetriever(
				wc, gen,
				cfg.KnowledgeBase.ClassName,
				cfg.KnowledgeBase.TopK,
				cfg.KnowledgeBase.MinScore,
				logger.Named("retrieval"),
			)
		}
	}

	qaSvc := qa.NewService(
		cfg.Pipeline,
		moderation.NewEngine(db),
		alignment.NewValidator(cfg.Pipeline.AlignmentOKThreshold),
		retriever,
		gen,
		convSvc,
		escSvc,
		sink,
		logger.Named("pipeline"),
	)

	ctx, cancel := context.WithCancel(context.Background())

	sched := pkgcron.New()
	registerCronJobs(sched, db, cfg, qaSvc, convSvc, escSvc, sink, taskSvc, logger)
	go sched.Start(ctx)

	app := &App{
		cfg: cfg, router: router, db: db, logger: logger, cancel: cancel, sched: sched,
		qaSvc: qaSvc, convSvc: convSvc, escSvc: escSvc, sink: sink, taskSvc: taskSvc,
	}
	app.registerRoutes(rc)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines.
func (a *App) Shutdown() { a.cancel() }

func (a *App) startTime() time.Time { return processStart }

var processStart = time.Now()
