package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	blogshandler "github.com/inkpress/inkpress/domains/blogs/be/handler"
	blogsrepo "github.com/inkpress/inkpress/domains/blogs/be/repo"
	blogsservice "github.com/inkpress/inkpress/domains/blogs/be/service"
	platformlogging "github.com/inkpress/inkpress/platform/go/logging"
	platformmiddleware "github.com/inkpress/inkpress/platform/go/middleware"
	"github.com/inkpress/inkpress/platform/go/persistence"
)

type config struct {
	Port                    string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL             string        `env:"DATABASE_URL,required"`
	AuthProvider            string        `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE"`
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	blogStore, err := persistence.NewBlogStore(pool)
	if err != nil {
		logger.Fatal("init blog store", zap.Error(err))
	}

	blogRepo := blogsrepo.NewPostgresRepository(blogStore)
	blogService := blogsservice.New(blogRepo)
	blogHTTPHandler := blogshandler.New(blogService, logger)

	authMiddleware := buildAuthMiddleware(ctx, cfg, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	apiRouter := chi.NewRouter()

	// Public reads stay anonymous; the static /blogs/public segment takes
	// precedence over the authenticated /blogs/{blogID} match.
	apiRouter.Group(blogHTTPHandler.MountPublic)

	apiRouter.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(platformmiddleware.RequestTrace)
		blogHTTPHandler.MountAuthenticated(r)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
