package cli

import (
	"context"
	"fmt"
	"log"

	"quizportal/cache"
	"quizportal/config"
	"quizportal/handlers"
	"quizportal/middleware"
	"quizportal/ratelimit"
	"quizportal/routes"
	"quizportal/services"
	"quizportal/store"
	"quizportal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type repositories struct {
	users    services.UserRepository
	quizzes  services.QuizRepository
	results  services.ResultRepository
	contacts services.ContactRepository
}

// buildRouter wires stores, services and handlers for cfg. The returned
// cleanup releases database and Redis connections. The hub stops with ctx.
func buildRouter(ctx context.Context, cfg *config.Config) (*gin.Engine, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repos, closeDB, err := openRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeDB)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = config.InitRedis(cfg)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cleanup()
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var limiter ratelimit.Limiter
	if redisClient != nil {
		repos.quizzes = cache.NewRedisQuizRepository(redisClient, repos.quizzes, cfg.Quiz.CacheTTL)
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Max, cfg.RateLimit.Window)
	} else {
		repos.quizzes = cache.NewMemoryQuizRepository(repos.quizzes, cfg.Quiz.CacheTTL)
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
	}

	hub := services.NewHub()
	go hub.Run(ctx)

	tokens := services.NewTokenService(cfg.Auth.SecretKey)
	authService := services.NewAuthService(repos.users, tokens, services.AuthOptions{
		BcryptCost: cfg.HashCost(),
		IsAdmin:    cfg.IsAdminEmail,
	})
	quizService := services.NewQuizService(repos.quizzes)
	resultService := services.NewResultService(repos.results, repos.users, repos.quizzes, services.ResultOptions{
		StrictReferences: cfg.Quiz.StrictReferences,
		Publisher:        hub,
	})
	contactService := services.NewContactService(repos.contacts)

	responder := handlers.ErrorResponder{Debug: cfg.DebugErrors}
	router, err := routes.New(routes.Dependencies{
		Users:     handlers.NewUserHandler(authService, contactService, responder, cfg.Auth.CookieSecure),
		Quizzes:   handlers.NewQuizHandler(quizService, resultService, responder),
		Admin:     handlers.NewAdminHandler(authService, quizService, resultService, contactService, responder),
		Live:      handlers.NewLiveHandler(hub, middleware.OriginAllowed(cfg.ClientOrigins)),
		Tokens:    tokens,
		Accounts:  authService,
		Limiter:   limiter,
		Origins:   cfg.ClientOrigins,
		Responder: responder,

		TrustedProxies: cfg.TrustedProxies,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return router, cleanup, nil
}

func openRepositories(cfg *config.Config) (repositories, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		return repositories{
			users:    memory.NewUserStore(),
			quizzes:  memory.NewQuizStore(),
			results:  memory.NewResultStore(cfg.Quiz.SingleAttempt),
			contacts: memory.NewContactStore(),
		}, func() {}, nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := store.Migrate(db, store.MigrateOptions{SingleAttempt: cfg.Quiz.SingleAttempt}); err != nil {
		closeDB()
		return repositories{}, nil, err
	}
	return repositories{
		users:    store.NewUserStore(db),
		quizzes:  store.NewQuizStore(db),
		results:  store.NewResultStore(db),
		contacts: store.NewContactStore(db),
	}, closeDB, nil
}
