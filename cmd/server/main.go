package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-gin-invitation/config"
	"go-gin-invitation/internal/auth"
	"go-gin-invitation/internal/cache"
	"go-gin-invitation/internal/database"
	"go-gin-invitation/internal/handler"
	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/notify"
	"go-gin-invitation/internal/queue"
	"go-gin-invitation/internal/repository"
	"go-gin-invitation/internal/service"
	"go-gin-invitation/internal/storage"
	"go-gin-invitation/internal/worker"
	"go-gin-invitation/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repositories struct {
	events repository.EventRepository
	guests repository.GuestRepository
	wishes repository.WishRepository
	users  repository.UserRepository
}

func main() {
	cfg := config.LoadConfig()
	logger.SetLevel(cfg.App.LogLevel)
	log := logger.WithComponent("main")
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatal("failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	invitationCache := cache.NewNoopInvitationCache()
	var sessions auth.SessionStore = auth.NewMemorySessionStore()
	if rdb != nil {
		invitationCache = cache.NewRedisInvitationCache(rdb, cfg.Redis.CacheTTL)
		sessions = auth.NewRedisSessionStore(rdb)
	}

	dispatchQueue, err := openQueue(ctx, cfg, rdb)
	if err != nil {
		log.Fatal("failed to initialize dispatch queue", zap.Error(err))
	}

	sender, closeSender := openSender(ctx, cfg)
	defer closeSender()

	giftDefaults := model.GiftAccounts{
		BRIAccountNumber: cfg.Gift.BRIAccountNumber,
		BRIAccountName:   cfg.Gift.BRIAccountName,
		ShopeePayNumber:  cfg.Gift.ShopeePayNumber,
		ShopeePayName:    cfg.Gift.ShopeePayName,
	}

	eventService := service.NewEventService(repos.events, invitationCache, giftDefaults)
	guestService := service.NewGuestService(repos.guests, repos.events, invitationCache, giftDefaults)
	wishService := service.NewWishService(repos.wishes)
	invitationService := service.NewInvitationService(eventService, guestService, wishService, dispatchQueue, cfg.App.PublicOrigin)
	authService := service.NewAuthService(
		repos.users,
		sessions,
		auth.NewJWTIssuer(cfg.Auth.JWTSecret),
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		notify.NewMailer(cfg.Mail),
		service.AuthConfig{
			SessionTTL:               cfg.Auth.SessionTTL,
			RequireEmailVerification: cfg.Auth.RequireEmailVerification,
			PublicOrigin:             cfg.App.PublicOrigin,
		},
	)

	dispatchWorker := worker.NewDispatchWorker(sender, dispatchQueue, 30*time.Second)
	if err := dispatchWorker.Start(ctx); err != nil {
		log.Fatal("failed to start dispatch worker", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(handler.Timeout(cfg.App.RequestTimeout))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	guard := handler.NewGuard(authService, eventService)
	handler.NewAuthHandler(authService).RegisterRoutes(router)
	handler.NewEventHandler(eventService, guard).RegisterRoutes(router)
	handler.NewGuestHandler(guestService, invitationService, guard, cfg.App.PublicOrigin).RegisterRoutes(router)
	handler.NewWishHandler(wishService, guard).RegisterRoutes(router)
	handler.NewInvitationHandler(invitationService, guard, handler.RateLimiter(120, time.Minute)).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	dispatchWorker.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config) (*repositories, func(), error) {
	switch cfg.Storage.Driver {
	case "file":
		store, err := storage.NewStore(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return &repositories{
			events: store.Events(),
			guests: store.Guests(),
			wishes: store.Wishes(),
			users:  store.Users(),
		}, func() {}, nil
	default:
		pool, err := database.InitDatabase(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return &repositories{
			events: repository.NewEventRepository(pool),
			guests: repository.NewGuestRepository(pool),
			wishes: repository.NewWishRepository(pool),
			users:  repository.NewUserRepository(pool),
		}, pool.Close, nil
	}
}

func openQueue(ctx context.Context, cfg *config.Config, rdb *redis.Client) (queue.DispatchQueue, error) {
	retry := queue.RetryPolicy{
		MaxAttempts: cfg.Queue.MaxRetryCount,
		PerChannel: map[model.DispatchChannel]int{
			model.ChannelWhatsApp:  cfg.Queue.MaxRetryWhatsApp,
			model.ChannelInstagram: cfg.Queue.MaxRetryInstagram,
		},
	}
	if cfg.Queue.Driver == "redis" && rdb != nil {
		hostname, _ := os.Hostname()
		return queue.NewRedisStreamDispatchQueue(ctx, rdb, hostname, &queue.RedisStreamConfig{
			ClaimMinIdleTime:   cfg.Queue.ClaimMinIdleTime,
			ReadGroupBlockTime: cfg.Queue.ReadBlockTime,
			Retry:              retry,
		})
	}
	return queue.NewDispatchQueue(cfg.Queue.BufferSize, retry), nil
}

// openSender 沒有啟用 WhatsApp 時只記錄分享連結
func openSender(ctx context.Context, cfg *config.Config) (notify.Sender, func()) {
	log := logger.WithComponent("main")
	var whatsapp notify.Sender = notify.NewLinkSender()
	closeFn := func() {}

	if cfg.WhatsApp.Enabled {
		wa, err := notify.NewWhatsAppSender(ctx, cfg.WhatsApp.DataDir)
		if err != nil {
			log.Error("whatsapp sender unavailable, falling back to share links", zap.Error(err))
		} else if err := wa.Connect(ctx); err != nil {
			log.Error("whatsapp connect failed, falling back to share links", zap.Error(err))
		} else {
			whatsapp = wa
			closeFn = wa.Disconnect
		}
	}

	return notify.NewRouter(map[model.DispatchChannel]notify.Sender{
		model.ChannelWhatsApp:  whatsapp,
		model.ChannelInstagram: notify.NewLinkSender(),
	}), closeFn
}
