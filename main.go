package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"paldeck_server/config"
	"paldeck_server/logger"
	"paldeck_server/middleware"
	"paldeck_server/realtime"
	"paldeck_server/routes"
	"paldeck_server/services"
	"paldeck_server/socket"
	"paldeck_server/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Must(cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ failed to initialize store", zap.Error(err))
	}

	guard := newSwipeGuard(ctx, cfg, log)

	hub := realtime.NewHub(log)
	defer hub.Close()

	// Initialize Services
	authService := services.NewAuthService(st, cfg.JWTSecret, cfg.JWTTTL, log)
	profileService := services.NewProfileService(st, st, cfg.MinAge, log)
	matchService := services.NewMatchService(st, log)
	swipeService := services.NewSwipeService(st, matchService, guard, log)
	chatService := services.NewChatService(st, matchService, hub, log)

	var photoService *services.PhotoService
	if cfg.S3BucketName != "" {
		photoService, err = services.NewS3PhotoService(ctx, cfg.AWSRegion, cfg.S3BucketName)
		if err != nil {
			log.Fatal("❌ failed to initialize S3", zap.Error(err))
		}
	} else {
		log.Warn("⚠️ S3_BUCKET_NAME not set, photo routes disabled")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(10*time.Minute, ctx.Done())

	r := mux.NewRouter()
	routes.RegisterRoutes(r, routes.Dependencies{
		Auth:     authService,
		Profiles: profileService,
		Swipes:   swipeService,
		Matches:  matchService,
		Chat:     chatService,
		Photos:   photoService,
		Limiter:  limiter,
		Log:      log,
	})

	// Realtime chat
	socketServer := socket.NewSocketServer(hub, authService, matchService, log)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Error("❌ socket.io server stopped", zap.Error(err))
		}
	}()
	defer socketServer.Close()
	r.PathPrefix("/socket.io/").Handler(socketServer)
	r.Handle("/ws/matches/{matchId}", socket.NewStreamHandler(hub, authService, matchService, log))

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 starting server", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ graceful shutdown failed", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.StoreBackend == "memory" {
		log.Warn("⚠️ using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	log.Info("Initializing DynamoDB client...", zap.String("region", cfg.AWSRegion))
	client, err := store.InitializeDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
	if err != nil {
		return nil, err
	}
	log.Info("✅ DynamoDB client initialized")

	return store.NewDynamoStore(client, store.Tables{
		Profiles: cfg.ProfilesTable,
		Swipes:   cfg.SwipesTable,
		Matches:  cfg.MatchesTable,
		Messages: cfg.MessagesTable,
		Accounts: cfg.AccountsTable,
	}, log), nil
}

func newSwipeGuard(ctx context.Context, cfg *config.Config, log *zap.Logger) services.SwipeGuard {
	if cfg.RedisAddr == "" {
		return services.NewMemorySwipeGuard()
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("⚠️ redis not reachable yet, swipe guard will fall back per request", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		log.Info("✅ redis connected", zap.String("addr", cfg.RedisAddr))
	}
	return services.NewRedisSwipeGuard(rdb, cfg.SwipeGuardTTL, log)
}
