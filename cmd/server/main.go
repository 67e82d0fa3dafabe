package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizforge-backend/internal/config"
	"quizforge-backend/internal/database"
	"quizforge-backend/internal/handlers"
	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/repository"
	"quizforge-backend/internal/repository/mongostore"
	"quizforge-backend/internal/router"
	"quizforge-backend/internal/services"
	"quizforge-backend/internal/websocket"
)

type stores struct {
	quizzes  services.QuizStore
	students services.StudentStore
	users    services.UserStore
	close    func()
}

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting quizforge backend", "env", cfg.Env, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize the document store ────
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("store initialisation failed", "driver", cfg.StoreDriver, "error", err)
	}
	defer st.close()

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connection failed", "error", err)
	}
	defer redisClients.Close()
	log.Info("redis connected")
	redisStore := services.NewRedisStore(redisClients.Cache)

	// ──── Step 4: Initialize Auth ────
	jwtAuth, err := middleware.NewJWTAuth(cfg.AuthSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatal("session signing key setup failed", "error", err)
	}
	google, err := services.NewGoogleProvider(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if err != nil {
		log.Fatal("google provider setup failed", "error", err)
	}

	// ──── Initialize Services ────
	authService := services.NewAuthService(st.users, redisStore, jwtAuth, google, log)
	quizService := services.NewQuizService(st.quizzes, redisStore, redisStore, log)
	studentService := services.NewStudentService(st.students, log)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, cfg.FrontendURL, cfg.IsProduction(), log)
	quizHandler := handlers.NewQuizHandler(quizService)
	studentHandler := handlers.NewStudentHandler(studentService)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.FrontendURL, log)
	go wsHub.Run(ctx)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(router.Deps{
		JWTAuth:        jwtAuth,
		Guard:          middleware.NewGuard(jwtAuth),
		AuthLimiter:    middleware.NewRateLimiter(middleware.NewRedisCounter(redisClients.Cache), cfg.AuthRateLimit, time.Minute, "auth", log),
		AuthHandler:    authHandler,
		QuizHandler:    quizHandler,
		StudentHandler: studentHandler,
		AdminEvents:    wsHub.HandleWebSocket,
		FrontendURL:    cfg.FrontendURL,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	log.Info("quizforge backend ready", "addr", server.Addr, "api", "/api/v1", "ws", "/api/v1/admin/ws")

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", "error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("mongodb connected", "database", cfg.MongoDatabase)
		return &stores{
			quizzes:  mongostore.NewQuizStore(db),
			students: mongostore.NewStudentStore(db),
			users:    mongostore.NewUserStore(db),
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("postgres connected, migrations applied")
		return &stores{
			quizzes:  repository.NewQuizRepo(pool),
			students: repository.NewStudentRepo(pool),
			users:    repository.NewUserRepo(pool),
			close:    pool.Close,
		}, nil
	}
}
