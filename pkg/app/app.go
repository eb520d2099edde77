// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appcache "github.com/foliva/docengine/pkg/cache"
	"github.com/foliva/docengine/pkg/configs"
	"github.com/foliva/docengine/pkg/internal/handle"
	"github.com/foliva/docengine/pkg/internal/jobs"
	"github.com/foliva/docengine/pkg/internal/mail"
	"github.com/foliva/docengine/pkg/internal/repository"
	"github.com/foliva/docengine/pkg/internal/router"
	"github.com/foliva/docengine/pkg/internal/service"
	"github.com/foliva/docengine/pkg/internal/storage"
	"github.com/foliva/docengine/pkg/internal/userinfo"
	"github.com/foliva/docengine/pkg/log"
	"github.com/foliva/docengine/pkg/metrics"
	"github.com/foliva/docengine/pkg/middleware"
	"github.com/foliva/docengine/pkg/scheduler"
	"github.com/foliva/docengine/pkg/tracing"
)

type App struct {
	Engine *gin.Engine
	config *configs.AppConfig
	sched  *scheduler.Scheduler
}

func NewApp(configPath string) *App {
	ctx := contextPkg.Background()
	engine := gin.New()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// 初始化追踪
	config := configs.GetConfig()
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.StorageMiddleware(manager),
		middleware.AuthMiddleware(config.Auth),
	)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	repo := repository.New(manager.GetDBClient())
	deletionCfg := func() configs.DeletionConfig { return configs.GetConfig().Deletion }
	svc := service.New(repo, deletionCfg)

	if kv := manager.GetKVClient(); kv != nil {
		svc = svc.WithCache(appcache.NewCache(kv))
	}

	info := userinfo.New(config.UserData)
	router.Register(engine, handle.New(svc, info))

	sender := mail.NewSender(config.Mail)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		fmt.Printf("Error initializing scheduler: %v\n", err)
		os.Exit(1)
	}

	if err := jobs.RegisterCronJobs(sched, svc, repo, sender, deletionCfg, config.Mail.CronIntervalMinutes); err != nil {
		fmt.Printf("Error registering cron jobs: %v\n", err)
		os.Exit(1)
	}

	sched.Start()

	return &App{
		Engine: engine,
		config: config,
		sched:  sched,
	}
}

func (a *App) Run() error {
	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}
