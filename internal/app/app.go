package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"examprep_backend/internal/config"
	"examprep_backend/internal/controller"
	"examprep_backend/internal/graph"
	"examprep_backend/internal/repository"
	"examprep_backend/internal/service"
	"examprep_backend/pkg/configwatcher"
	"examprep_backend/pkg/database"
	"examprep_backend/pkg/logger"
	"examprep_backend/pkg/monitoring"
	"examprep_backend/pkg/security"
	"examprep_backend/pkg/tracing"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	tracer   *sdktrace.TracerProvider
}

type repositories struct {
	param       *repository.ConceptParameterRepository
	state       *repository.KnowledgeStateRepository
	event       *repository.InteractionEventRepository
	fairness    *repository.FairnessRepository
	calibration *repository.CalibrationRepository
	exam        *repository.ExamConfigRepository
}

type services struct {
	settings    *service.EngineSettings
	auth        *service.AuthService
	storage     *service.StorageService
	allocation  *service.AllocationService
	mastery     *service.MasteryService
	calibration *service.CalibrationService
	fairness    *service.FairnessService
	export      *service.ExportService
	scheduler   *service.SchedulerService
}

type controllers struct {
	auth        *controller.AuthController
	interaction *controller.InteractionController
	allocation  *controller.AllocationController
	calibration *controller.CalibrationController
	fairness    *controller.FairnessController
	admin       *controller.AdminController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	cacheTTL := time.Duration(cfg.Engine.ParamCacheTTLSec) * time.Second
	return &repositories{
		param:       repository.NewConceptParameterRepository(db, rdb, cacheTTL),
		state:       repository.NewKnowledgeStateRepository(db),
		event:       repository.NewInteractionEventRepository(db),
		fairness:    repository.NewFairnessRepository(db),
		calibration: repository.NewCalibrationRepository(db),
		exam:        repository.NewExamConfigRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, graphHolder *graph.Holder) (*services, error) {
	s := &services{}

	s.settings = service.NewEngineSettings(cfg.Engine)

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.auth = service.NewAuthService(cfg)
	s.allocation = service.NewAllocationService(repos.exam, repos.state, s.settings)
	s.mastery = service.NewMasteryService(
		repos.param,
		repos.state,
		repos.event,
		repos.fairness,
		graphHolder,
		s.allocation,
		s.settings,
	)
	s.calibration = service.NewCalibrationService(repos.calibration, repos.event)
	s.fairness = service.NewFairnessService(repos.fairness, s.settings)
	s.export = service.NewExportService(s.fairness, s.storage)
	s.scheduler = service.NewSchedulerService(s.calibration, s.fairness, s.export, cfg.Scheduler)

	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, graphHolder *graph.Holder, neo4jClient *graph.Neo4jClient) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		interaction: controller.NewInteractionController(s.mastery),
		allocation:  controller.NewAllocationController(s.allocation),
		calibration: controller.NewCalibrationController(s.calibration),
		fairness:    controller.NewFairnessController(s.fairness, s.export),
		admin:       controller.NewAdminController(repos.param, repos.exam, s.calibration, graphHolder, neo4jClient),
		health:      controller.NewHealthController(db, graphHolder),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// initTransferGraph 启动时优先从 Neo4j 取概念迁移图；图库没开或连不上就用
// 配置里的 fallback_edges，保证迁移传播始终可用。
func (a *App) initTransferGraph(cfg *config.Config) (*graph.Holder, *graph.Neo4jClient) {
	fallback, err := graph.FromConfigEdges(cfg.Graph.FallbackEdges)
	if err != nil {
		logger.Log.Fatal("Invalid fallback transfer edges", zap.Error(err))
	}

	if !cfg.Graph.Enabled {
		return graph.NewHolder(fallback), nil
	}

	client, err := graph.NewNeo4jClient(cfg.Graph)
	if err != nil {
		logger.Log.Warn("Neo4j unavailable, using fallback transfer edges", zap.Error(err))
		return graph.NewHolder(fallback), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g, err := client.LoadGraph(ctx)
	if err != nil {
		logger.Log.Warn("Failed to load transfer graph from Neo4j, using fallback edges", zap.Error(err))
		return graph.NewHolder(fallback), client
	}

	logger.Log.Info("Transfer graph loaded from Neo4j", zap.Int("edges", g.EdgeCount()))
	return graph.NewHolder(g), client
}

func (a *App) watchEngineSettings(s *services) {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(raw interface{}) {
		newCfg, ok := raw.(*config.Config)
		if !ok {
			return
		}
		s.settings.Update(newCfg.Engine)
		logger.Log.Info("Engine settings reloaded",
			zap.Float64("transferFactor", newCfg.Engine.TransferFactor),
			zap.Float64("disparityThreshold", newCfg.Engine.DisparityThreshold),
		)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	graphHolder, neo4jClient := app.initTransferGraph(cfg)

	repos := app.initRepositories(db, rdb, cfg)
	services, err := app.initServices(repos, cfg, graphHolder)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, repos, db, graphHolder, neo4jClient)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("examprep-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	if cfg.Scheduler.Enabled {
		services.scheduler.Start()
	}

	app.watchEngineSettings(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.services != nil && a.services.scheduler != nil {
		a.services.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
