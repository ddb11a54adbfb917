package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"cite-events/core"
	"cite-events/pkg/resources"
	"cite-events/pkg/servers"
)

func setDefaults() {
	viper.SetDefault("PORT", "8001")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "cite_events")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("ADMIN_USER", "admin")
	viper.SetDefault("STATIC_DIR", "./static")
	viper.SetDefault("MIGRATIONS_PATH", "./migrations")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
}

func main() {
	var err error

	name, version := "cite-events", "1.0"

	// 1. Config
	_ = godotenv.Load()
	viper.AutomaticEnv()
	setDefaults()

	// 2. Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().
		Str("service", name).Str("version", version).Logger()
	log.Logger = logger
	ctx := logger.WithContext(context.Background())

	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 3. Telemetry
	tracerShutdownFn, err := resources.CreateTracer(ctx)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to setup the tracer")
	}

	// 4. Database
	err = resources.RunMigrations(ctx)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to run database migrations")
	}

	pool, err := resources.CreateDatabaseConnectionPool(ctx)
	if err != nil {
		shutdownLogger.Fatal().Err(err).Msg("unable to create database connection pool")
	}

	// 5. Wiring
	repository := core.NewRepository(pool)
	handlers := core.NewHandlers(repository, viper.GetString("ADMIN_USER"), viper.GetString("STATIC_DIR"))

	// 6. HTTP surface
	gin.SetMode(gin.ReleaseMode)

	restHandler := gin.New()
	restHandler.Use(gin.Recovery())
	restHandler.Use(otelgin.Middleware(name))
	restHandler.Use(resources.NewHTTPMetrics(name).Middleware())

	restHandler.GET("/health", func(gctx *gin.Context) {
		if err := pool.Ping(gctx.Request.Context()); err != nil {
			gctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}

		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := restHandler.Group("/api")
	{
		api.POST("/events", handlers.PostEvents)
		api.GET("/events", handlers.GetEvents)
		api.GET("/events/:id", handlers.GetEvent)
		api.PUT("/events/:id", handlers.PutEvent)
		api.DELETE("/events/:id", handlers.DeleteEvent)
		api.POST("/events/:id/archive", handlers.ArchiveEvent)
		api.POST("/events/:id/unarchive", handlers.UnarchiveEvent)
		api.POST("/events/:id/join", handlers.JoinEvent)
		api.POST("/events/:id/leave", handlers.LeaveEvent)
		api.GET("/events/:id/chat", handlers.GetChatMessages)
		api.POST("/events/:id/chat", handlers.PostChatMessage)

		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)

		api.GET("/users/:username/events", handlers.GetUserEvents)
		api.GET("/users/:username/profile", handlers.GetProfile)
		api.PUT("/users/:username/profile", handlers.PutProfile)
		api.GET("/users/:username/invite-code", handlers.GetInviteCode)
		api.GET("/users/:username/follows", handlers.GetFollows)
		api.GET("/users/:username/followers", handlers.GetFollowers)
		api.GET("/invites/validate", handlers.ValidateInvite)

		api.POST("/follows", handlers.Follow)
		api.DELETE("/follows", handlers.Unfollow)

		api.POST("/upload", handlers.Upload)
	}

	restHandler.Static("/static", viper.GetString("STATIC_DIR"))

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 7. Lifecycle
	app := lifecycle.NewApp(
		lifecycle.WithName(name),
		lifecycle.WithVersion(version),
		lifecycle.WithSignal(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT),
	)

	app.Attach(servers.BuildHttpServer("rest-server", &http.Server{
		Addr:              ":" + viper.GetString("PORT"),
		Handler:           restHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}))
	app.Attach(servers.BuildHttpServer("debug-server", &http.Server{
		Addr:              "localhost:6060",
		Handler:           debugHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}))
	app.Attach(servers.BuildBaseServer(
		pool,
		resources.CloserFunc(func() {
			if err := tracerShutdownFn(context.Background()); err != nil {
				shutdownLogger.Error().Err(err).Msg("unable to stop the tracer")
			}
		}),
	))

	startupLogger.Info().Msg("application running")

	err = app.Run()
	if err != nil {
		shutdownLogger.Error().Err(err).Msg("runtime error")
	}
}
