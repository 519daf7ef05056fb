package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	MaxCommentLength      = 2000
	MaxSearchQueryLength  = 200
	MaxSearchResultsLimit = 100
	DefaultSearchLimit    = 25
	DefaultMaxRequestSize = 1 << 20

	ActivityPerKindCap   = 20
	ActivityFeedLimit    = 50
	RecommendPerTermCap  = 25
	RecommendPageSize    = 10
	RecommendTermTimeout = 10 * time.Second

	NewsFeedTimeout   = 10 * time.Second
	NewsArticlesLimit = 50

	NotificationPollInterval = 60 * time.Second

	GuestPrefsTTL             = 24 * time.Hour
	GuestPrefsCleanupInterval = 10 * time.Minute

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAPIHTTPPort     = "8080"
	DefaultRequestTimeout  = 5 * time.Second
	DefaultSearchTimeout   = 15 * time.Second
	DefaultAccessTokenTTL  = 7 * 24 * time.Hour
	DefaultArxivBaseURL    = "http://export.arxiv.org/api/query"
	DefaultArxivMaxResults = 50

	AuthCookieName  = "auth_token"
	GuestCookieName = "guest_id"

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketWriteWait       = 10 * time.Second
	WebSocketPongWait        = 90 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

// DefaultNewsFeedURLs are the technology news sources aggregated by
// the news endpoint when NEWS_FEED_URLS is not set.
var DefaultNewsFeedURLs = []string{
	"https://techcrunch.com/feed/",
	"https://news.mit.edu/rss/topic/machine-learning",
	"https://www.sciencedaily.com/rss/computers_math/artificial_intelligence.xml",
	"https://hnrss.org/frontpage",
	"https://arstechnica.com/feed/",
	"https://syncedreview.com/feed/",
}

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
