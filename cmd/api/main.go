package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	activityhttp "github.com/academiahub/backend/internal/activity/http"
	activityrepo "github.com/academiahub/backend/internal/activity/repository"
	activityservice "github.com/academiahub/backend/internal/activity/service"
	"github.com/academiahub/backend/internal/activity/stream"
	authhttp "github.com/academiahub/backend/internal/auth/http"
	authservice "github.com/academiahub/backend/internal/auth/service"
	"github.com/academiahub/backend/internal/common/clock"
	"github.com/academiahub/backend/internal/common/config"
	"github.com/academiahub/backend/internal/common/constants"
	"github.com/academiahub/backend/internal/common/crypto"
	"github.com/academiahub/backend/internal/common/db"
	commonhttp "github.com/academiahub/backend/internal/common/http"
	"github.com/academiahub/backend/internal/common/jwtverify"
	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/common/server"
	newshttp "github.com/academiahub/backend/internal/news/http"
	newsservice "github.com/academiahub/backend/internal/news/service"
	"github.com/academiahub/backend/internal/paper/arxiv"
	paperhttp "github.com/academiahub/backend/internal/paper/http"
	paperservice "github.com/academiahub/backend/internal/paper/service"
	prefshttp "github.com/academiahub/backend/internal/prefs/http"
	prefsservice "github.com/academiahub/backend/internal/prefs/service"
	prefsstore "github.com/academiahub/backend/internal/prefs/store"
	userhttp "github.com/academiahub/backend/internal/user/http"
	userrepo "github.com/academiahub/backend/internal/user/repository"
	userservice "github.com/academiahub/backend/internal/user/service"
)

func main() {
	log := logger.GetInstance()
	if err := log.Initialize(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadAPIConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	clk := clock.NewRealClock()
	idGen := crypto.NewUUIDGenerator()
	hasher := &crypto.BcryptHasher{}

	// Repositories.
	users := userrepo.NewPgRepository(pool)
	comments := activityrepo.NewPgCommentRepository(pool)
	likes := activityrepo.NewPgLikeRepository(pool)
	saves := activityrepo.NewPgSaveRepository(pool)

	// Services.
	engagement := activityservice.NewEngagementService(comments, likes, saves, idGen, clk, log)
	feed := activityservice.NewFeedService(
		comments, likes, saves, users, clk, log,
		cfg.ActivityPerKindCap, cfg.ActivityFeedLimit,
	)
	userSvc := userservice.NewService(users, engagement, log)
	auth := authservice.NewService(users, hasher, idGen, clk, cfg.JWTSecret, cfg.AccessTokenTTL, log)

	guestStore := prefsstore.NewGuestStore(clk, constants.GuestPrefsTTL, log)
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	guestStore.StartCleanup(cleanupCtx, constants.GuestPrefsCleanupInterval)

	prefsSvc := prefsservice.NewService(prefsstore.NewDurableStore(users), guestStore, log)

	arxivClient := arxiv.NewClient(cfg.ArxivBaseURL, cfg.SearchTimeout, log)
	search := paperservice.NewSearchService(arxivClient, cfg.ArxivMaxResults, log)
	recommend := paperservice.NewRecommendService(
		arxivClient, prefsSvc, log,
		cfg.RecommendPerTermCap, cfg.RecommendPageSize, cfg.RecommendTermTimeout,
	)

	news := newsservice.NewService(cfg.NewsFeedURLs, cfg.NewsFeedTimeout, constants.NewsArticlesLimit, log)

	notifier := stream.NewNotifier(feed, cfg.NotificationPollInterval, log)

	// HTTP surface.
	requireAuth := jwtverify.Middleware(cfg.JWTSecret, log)
	secureCookies := os.Getenv("COOKIE_SECURE") == "true"

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())

	authhttp.NewHandler(auth, log, cfg.RequestTimeout, secureCookies).RegisterRoutes(mux)
	userhttp.NewHandler(userSvc, log, cfg.RequestTimeout).RegisterRoutes(mux, requireAuth)
	prefshttp.NewHandler(prefsSvc, log, cfg.RequestTimeout).RegisterRoutes(mux)
	activityhttp.NewHandler(feed, engagement, guestStore, notifier, log, cfg.RequestTimeout).RegisterRoutes(mux, requireAuth)
	paperhttp.NewHandler(search, recommend, log, cfg.SearchTimeout).RegisterRoutes(mux)
	newshttp.NewHandler(news, log, cfg.SearchTimeout).RegisterRoutes(mux)

	// Optional auth sits in front of everything so public routes can
	// personalize when a valid token is present.
	handler := commonhttp.BuildBaseHandler(log, jwtverify.Optional(cfg.JWTSecret)(mux))

	srv := server.NewServer(server.DefaultServerConfig(cfg.HTTPPort), handler)
	server.StartWithGracefulShutdownAndHooks(srv, log, "api", []server.ShutdownHook{
		func(ctx context.Context) error {
			cancelCleanup()
			return nil
		},
	})
}
