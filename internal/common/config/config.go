package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/academiahub/backend/internal/common/constants"
	commonerrors "github.com/academiahub/backend/internal/common/errors"
)

type APIConfig struct {
	HTTPPort       string
	DatabaseURL    string
	JWTSecret      string
	AccessTokenTTL time.Duration

	ArxivBaseURL    string
	ArxivMaxResults int

	RequestTimeout time.Duration
	SearchTimeout  time.Duration

	ActivityPerKindCap int
	ActivityFeedLimit  int

	RecommendPerTermCap  int
	RecommendPageSize    int
	RecommendTermTimeout time.Duration

	NewsFeedTimeout time.Duration
	NewsFeedURLs    []string

	NotificationPollInterval time.Duration
}

func LoadAPIConfig() (APIConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return APIConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return APIConfig{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return APIConfig{}, err
	}

	return APIConfig{
		HTTPPort:       getEnv("API_HTTP_PORT", constants.DefaultAPIHTTPPort),
		DatabaseURL:    databaseURL,
		JWTSecret:      jwtSecret,
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),

		ArxivBaseURL:    getEnv("ARXIV_BASE_URL", constants.DefaultArxivBaseURL),
		ArxivMaxResults: getIntEnv("ARXIV_MAX_RESULTS", constants.DefaultArxivMaxResults),

		RequestTimeout: getDurationEnv("API_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		SearchTimeout:  getDurationEnv("API_SEARCH_TIMEOUT", constants.DefaultSearchTimeout),

		ActivityPerKindCap: getIntEnv("ACTIVITY_PER_KIND_CAP", constants.ActivityPerKindCap),
		ActivityFeedLimit:  getIntEnv("ACTIVITY_FEED_LIMIT", constants.ActivityFeedLimit),

		RecommendPerTermCap:  getIntEnv("RECOMMEND_PER_TERM_CAP", constants.RecommendPerTermCap),
		RecommendPageSize:    getIntEnv("RECOMMEND_PAGE_SIZE", constants.RecommendPageSize),
		RecommendTermTimeout: getDurationEnv("RECOMMEND_TERM_TIMEOUT", constants.RecommendTermTimeout),

		NewsFeedTimeout: getDurationEnv("NEWS_FEED_TIMEOUT", constants.NewsFeedTimeout),
		NewsFeedURLs:    getListEnv("NEWS_FEED_URLS", constants.DefaultNewsFeedURLs),

		NotificationPollInterval: getDurationEnv("NOTIFICATION_POLL_INTERVAL", constants.NotificationPollInterval),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getListEnv(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
