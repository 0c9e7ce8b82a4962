package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/watchlist-backend/internal/config"
	"github.com/AnshRaj112/watchlist-backend/internal/database"
	"github.com/AnshRaj112/watchlist-backend/internal/handlers"
	"github.com/AnshRaj112/watchlist-backend/internal/logging"
	"github.com/AnshRaj112/watchlist-backend/internal/metrics"
	"github.com/AnshRaj112/watchlist-backend/internal/middleware"
	"github.com/AnshRaj112/watchlist-backend/internal/routes"
	"github.com/AnshRaj112/watchlist-backend/internal/services"
	"github.com/AnshRaj112/watchlist-backend/internal/store"
	"github.com/AnshRaj112/watchlist-backend/internal/store/memstore"
	"github.com/AnshRaj112/watchlist-backend/internal/store/mongostore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load env
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	if envErr != nil {
		log.Debug("no .env file found")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stores store.Stores
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		stores = memstore.New()
	default:
		client, db, err := database.Connect(ctx, cfg.MongoURI, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Disconnect(client); err != nil {
				log.Warn("mongo disconnect failed", "error", err)
			}
		}()
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		log.Info("MongoDB indexes ensured")
		stores = mongostore.New(db)
	}

	var notifier services.Notifier = services.NewLocalNotifier()
	var limiter middleware.HitCounter
	if cfg.RedisURI != "" {
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURI, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		notifier = services.NewRedisNotifier(rdb, log)
		limiter = middleware.NewRedisHitCounter(rdb)
	} else {
		log.Info("REDIS_URI not set; using in-process notifications and no window rate limit")
	}

	var audit store.LoginAuditor
	if cfg.PostgresURI != "" {
		pg, err := database.ConnectPostgres(ctx, cfg.PostgresURI, log)
		if err != nil {
			return err
		}
		defer pg.Close()
		audit = database.NewLoginAudit(pg)
	} else {
		log.Info("POSTGRES_URI not set; login audit disabled")
	}

	media := services.DisabledMedia()
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Warn("failed to initialize Cloudinary; image uploads disabled", "error", err)
		} else {
			media = cld
			log.Info("Cloudinary service initialized", "folder", cfg.CloudinaryFolder)
		}
	} else {
		log.Warn("Cloudinary credentials not found; image uploads disabled")
	}

	creds := services.NewCredentialManager(cfg)
	tokens := services.NewTokenService(cfg)
	auth := services.NewAuthService(stores.Accounts, creds, tokens, audit, log)
	notifications := services.NewNotificationService(stores.Notifications, stores.Accounts, notifier, log)
	m := metrics.New()

	h := handlers.New(handlers.Deps{
		Auth:           auth,
		Users:          services.NewUserService(stores.Accounts, creds, media, notifications, log),
		Posts:          services.NewPostService(stores.Posts, stores.Accounts, media, notifications, log),
		Notifications:  notifications,
		Quotes:         services.NewQuoteService(stores.Quotes),
		Metrics:        m,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	router := routes.NewRouter(routes.Options{
		Handler: h,
		Auth:    auth,
		Config:  cfg,
		Metrics: m,
		Log:     log,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("watchlist backend running", "port", cfg.Port, "env", cfg.Environment, "production", cfg.IsProduction())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
