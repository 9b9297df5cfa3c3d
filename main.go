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

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk-server/handlers"
	"github.com/newsdesk/newsdesk-server/internal/articles"
	"github.com/newsdesk/newsdesk-server/internal/audit"
	"github.com/newsdesk/newsdesk-server/internal/config"
	"github.com/newsdesk/newsdesk-server/internal/database"
	"github.com/newsdesk/newsdesk-server/internal/locks"
	"github.com/newsdesk/newsdesk-server/internal/oidc"
	"github.com/newsdesk/newsdesk-server/internal/publisherrequests"
	"github.com/newsdesk/newsdesk-server/internal/publishers"
	"github.com/newsdesk/newsdesk-server/internal/revocation"
	"github.com/newsdesk/newsdesk-server/internal/storage"
	"github.com/newsdesk/newsdesk-server/internal/users"
	"github.com/newsdesk/newsdesk-server/pkg/logger"
	"github.com/newsdesk/newsdesk-server/pkg/metrics"
	"github.com/newsdesk/newsdesk-server/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// repositories groups the storage backends; Mongo when reachable, memory otherwise.
type repositories struct {
	users      users.UserRepository
	articles   articles.ArticleRepository
	publishers publishers.PublisherRepository
	requests   publisherrequests.RequestRepository
	events     audit.Store
}

func memoryRepositories() repositories {
	return repositories{
		users:      users.NewMemoryUserRepository(),
		articles:   articles.NewMemoryArticleRepository(),
		publishers: publishers.NewMemoryPublisherRepository(),
		requests:   publisherrequests.NewMemoryRequestRepository(),
		events:     audit.NewMemoryStore(),
	}
}

func mongoRepositories(db *mongo.Database) repositories {
	return repositories{
		users:      users.NewMongoUserRepository(db.Collection(database.UsersCollection)),
		articles:   articles.NewMongoArticleRepository(db.Collection(database.ArticlesCollection)),
		publishers: publishers.NewMongoPublisherRepository(db.Collection(database.PublishersCollection)),
		requests:   publisherrequests.NewMongoRequestRepository(db.Collection(database.PublisherRequestsCollection)),
		events:     audit.NewMongoStore(db.Collection(database.RequestEventsCollection)),
	}
}

// connectMongo retries with backoff to tolerate startup races with the database container.
func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.URI, cfg.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("could not connect to MongoDB after %d attempts: %w", maxAttempts, lastErr)
}

func buildVerifier(ctx context.Context, cfg config.OIDCConfig) oidc.Chain {
	var chain oidc.Chain
	if cfg.Issuer != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Issuer, cfg.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier for %s: %v", cfg.Issuer, err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.DevSecret != "" {
		logger.Warn("enabling HS256 development token verifier")
		chain = append(chain, oidc.NewHMACVerifier(cfg.DevSecret))
	}
	if len(chain) == 0 {
		logger.Warn("no token verifier configured; every authenticated route will answer 403")
	}
	return chain
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat(os.Getenv("LOG_FORMAT"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s oidc=%v mongo=%v redis=%v minio=%v",
		cfg.Server.Environment, cfg.OIDC.Issuer != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos := memoryRepositories()
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = connectMongo(ctx, cfg.MongoDB)
		if err != nil {
			if cfg.IsProduction() {
				logger.Fatalf("%v", err)
			}
			logger.Warnf("%v; using in-memory repositories", err)
		} else {
			db := mongoClient.Database(cfg.MongoDB.Database)
			if err := database.EnsureIndexes(ctx, db); err != nil {
				logger.Fatalf("failed to ensure indexes: %v", err)
			}
			repos = mongoRepositories(db)
			logger.Infof("connected to MongoDB database %s", cfg.MongoDB.Database)
		}
	} else {
		logger.Warn("MONGODB_URI not set; data lives in memory and is lost on restart")
	}

	var redisClient *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v; using in-process locks", addr, err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s", addr)
		}
	}

	var locker locks.Locker = locks.NewMemoryLocker()
	if redisClient != nil {
		locker = locks.NewRedisLocker(redisClient, "lock:")
	}

	var uploads storage.ObjectStore
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("uploads disabled: %v", err)
		} else {
			uploads = s
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	var rateLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			rateLimit = middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			rateLimit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	userSvc := users.NewService(repos.users, cfg.OIDC.AdminEmails)
	articleSvc := articles.NewService(repos.articles, repos.users, locker, cfg.Locks.TTL)
	verifier := buildVerifier(ctx, cfg.OIDC)

	r := handlers.NewRouter(handlers.Deps{
		Verifier:   verifier,
		Revoked:    revocation.NewList(redisClient),
		Users:      userSvc,
		Articles:   articleSvc,
		Publishers: publishers.NewService(repos.publishers, articleSvc),
		Requests: publisherrequests.NewWorkflow(repos.requests, repos.users, repos.publishers,
			repos.events, locker, cfg.Locks.TTL),
		Uploads:   uploads,
		RateLimit: rateLimit,
		Metrics:   reg,
		Ready: func(ctx context.Context) map[string]bool {
			deps := map[string]bool{"verifier": len(verifier) > 0}
			if mongoClient != nil {
				deps["mongo"] = mongoClient.Ping(ctx, nil) == nil
			}
			if redisClient != nil {
				deps["redis"] = redisClient.Ping(ctx).Err() == nil
			}
			return deps
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("newsdesk server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(shutdownCtx)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
