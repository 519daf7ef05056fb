package service

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/news/domain"
	"github.com/academiahub/backend/internal/observability/metrics"
)

// topicKeywords buckets an article by title and summary. The first
// matching topic wins, in the order below.
var topicKeywords = []struct {
	topic    domain.Topic
	keywords []string
}{
	{domain.TopicAI, []string{
		"artificial intelligence", " ai ", "machine learning", "neural", "llm",
		"deep learning", "chatbot", "gpt", "language model",
	}},
	{domain.TopicSecurity, []string{
		"security", "vulnerability", "exploit", "breach", "malware",
		"ransomware", "cve", "phishing", "zero-day",
	}},
	{domain.TopicOpenSource, []string{
		"open source", "open-source", "linux", "github", "gpl", "foss",
	}},
	{domain.TopicSystems, []string{
		"kernel", "database", "distributed", "cloud", "datacenter",
		"processor", "chip", "hardware", "compiler", "filesystem",
	}},
}

// Fetcher retrieves and parses one feed URL. The default uses gofeed
// with a bounded HTTP client; tests swap it out.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*gofeed.Feed, error)
}

type gofeedFetcher struct {
	client *http.Client
}

func (f *gofeedFetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	return parser.ParseURLWithContext(url, ctx)
}

// Service aggregates external technology news from configured RSS and
// Atom feeds into topic-bucketed articles.
type Service struct {
	fetcher  Fetcher
	feedURLs []string
	limit    int
	log      *logger.Logger
}

func NewService(feedURLs []string, timeout time.Duration, limit int, log *logger.Logger) *Service {
	return &Service{
		fetcher:  &gofeedFetcher{client: &http.Client{Timeout: timeout}},
		feedURLs: feedURLs,
		limit:    limit,
		log:      log,
	}
}

// NewServiceWithFetcher is the test seam.
func NewServiceWithFetcher(fetcher Fetcher, feedURLs []string, limit int, log *logger.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		feedURLs: feedURLs,
		limit:    limit,
		log:      log,
	}
}

// Articles fetches every configured feed concurrently and merges the
// results. A feed that fails or times out is skipped; readers get the
// news the healthy feeds delivered.
func (s *Service) Articles(ctx context.Context, topic domain.Topic) ([]domain.Article, error) {
	var (
		mu       sync.Mutex
		articles []domain.Article
		wg       sync.WaitGroup
	)

	for _, feedURL := range s.feedURLs {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()

			feed, err := s.fetcher.Fetch(ctx, feedURL)
			if err != nil {
				metrics.NewsFeedFetchesTotal.WithLabelValues(feedURL, "error").Inc()
				s.log.WithFields(ctx, logger.Fields{
					"action": "news_fetch",
					"feed":   feedURL,
					"error":  err.Error(),
				}).Warn("news feed fetch failed")
				return
			}
			metrics.NewsFeedFetchesTotal.WithLabelValues(feedURL, "ok").Inc()

			items := normalizeFeed(feed)

			mu.Lock()
			articles = append(articles, items...)
			mu.Unlock()
		}(feedURL)
	}

	wg.Wait()

	if topic != "" {
		articles = filterTopic(articles, topic)
	}

	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].URL > articles[j].URL
	})

	articles = dedupeByURL(articles)

	if len(articles) > s.limit {
		articles = articles[:s.limit]
	}

	return articles, nil
}

func normalizeFeed(feed *gofeed.Feed) []domain.Article {
	source := strings.TrimSpace(feed.Title)

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" || item.PublishedParsed == nil {
			continue
		}

		topic, ok := classify(item.Title, item.Description)
		if !ok {
			continue
		}

		articles = append(articles, domain.Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			Source:      source,
			Topic:       topic,
			Summary:     strings.TrimSpace(item.Description),
			PublishedAt: *item.PublishedParsed,
		})
	}
	return articles
}

func classify(title, summary string) (domain.Topic, bool) {
	text := " " + strings.ToLower(title) + " " + strings.ToLower(summary) + " "
	for _, bucket := range topicKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				return bucket.topic, true
			}
		}
	}
	return "", false
}

func filterTopic(articles []domain.Article, topic domain.Topic) []domain.Article {
	out := articles[:0]
	for _, a := range articles {
		if a.Topic == topic {
			out = append(out, a)
		}
	}
	return out
}

func dedupeByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
