package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/news/domain"
)

type mockFetcher struct {
	feeds map[string]*gofeed.Feed
	errs  map[string]error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*gofeed.Feed, error) {
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	return m.feeds[url], nil
}

func newsItem(title, link string, publishedAgo time.Duration) *gofeed.Item {
	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(-publishedAgo)
	return &gofeed.Item{
		Title:           title,
		Link:            link,
		PublishedParsed: &published,
	}
}

func TestArticlesClassifiesAndSorts(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string]*gofeed.Feed{
		"feed-a": {
			Title: "Feed A",
			Items: []*gofeed.Item{
				newsItem("New LLM beats benchmarks", "https://a.example/llm", 2*time.Hour),
				newsItem("Ransomware hits hospital", "https://a.example/ransom", 1*time.Hour),
				newsItem("Celebrity gossip roundup", "https://a.example/gossip", 30*time.Minute),
			},
		},
		"feed-b": {
			Title: "Feed B",
			Items: []*gofeed.Item{
				newsItem("Linux kernel 7.0 released", "https://b.example/kernel", 3*time.Hour),
			},
		},
	}}
	svc := NewServiceWithFetcher(fetcher, []string{"feed-a", "feed-b"}, 50, logger.GetInstance())

	articles, err := svc.Articles(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The gossip item matches no topic and is dropped.
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	if articles[0].URL != "https://a.example/ransom" {
		t.Errorf("expected newest first, got %s", articles[0].URL)
	}
	if articles[0].Topic != domain.TopicSecurity {
		t.Errorf("unexpected topic: %s", articles[0].Topic)
	}
	if articles[2].Source != "Feed B" {
		t.Errorf("expected source from feed title, got %q", articles[2].Source)
	}
}

func TestArticlesFiltersByTopic(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string]*gofeed.Feed{
		"feed-a": {
			Title: "Feed A",
			Items: []*gofeed.Item{
				newsItem("Neural network breakthrough", "https://a.example/nn", time.Hour),
				newsItem("Zero-day in popular router", "https://a.example/cve", 2*time.Hour),
			},
		},
	}}
	svc := NewServiceWithFetcher(fetcher, []string{"feed-a"}, 50, logger.GetInstance())

	articles, err := svc.Articles(context.Background(), domain.TopicSecurity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 1 || articles[0].URL != "https://a.example/cve" {
		t.Fatalf("unexpected filter result: %+v", articles)
	}
}

func TestArticlesSkipsFailingFeeds(t *testing.T) {
	fetcher := &mockFetcher{
		feeds: map[string]*gofeed.Feed{
			"healthy": {
				Title: "Healthy",
				Items: []*gofeed.Item{
					newsItem("Open source funding report", "https://h.example/foss", time.Hour),
				},
			},
		},
		errs: map[string]error{"broken": errors.New("dns failure")},
	}
	svc := NewServiceWithFetcher(fetcher, []string{"broken", "healthy"}, 50, logger.GetInstance())

	articles, err := svc.Articles(context.Background(), "")
	if err != nil {
		t.Fatalf("expected partial results, got error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article from the healthy feed, got %d", len(articles))
	}
}

func TestArticlesDeduplicatesByURL(t *testing.T) {
	fetcher := &mockFetcher{feeds: map[string]*gofeed.Feed{
		"feed-a": {
			Title: "Feed A",
			Items: []*gofeed.Item{
				newsItem("Linux kernel 7.0 released", "https://shared.example/kernel", time.Hour),
			},
		},
		"feed-b": {
			Title: "Feed B",
			Items: []*gofeed.Item{
				newsItem("Kernel 7.0 is out", "https://shared.example/kernel", 2*time.Hour),
			},
		},
	}}
	svc := NewServiceWithFetcher(fetcher, []string{"feed-a", "feed-b"}, 50, logger.GetInstance())

	articles, err := svc.Articles(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected deduped article, got %d", len(articles))
	}
}

func TestArticlesCapsResultCount(t *testing.T) {
	items := make([]*gofeed.Item, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, newsItem(
			"Security advisory",
			"https://a.example/"+string(rune('a'+i)),
			time.Duration(i)*time.Minute,
		))
	}
	fetcher := &mockFetcher{feeds: map[string]*gofeed.Feed{
		"feed-a": {Title: "Feed A", Items: items},
	}}
	svc := NewServiceWithFetcher(fetcher, []string{"feed-a"}, 5, logger.GetInstance())

	articles, err := svc.Articles(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(articles))
	}
}

func TestClassifyMatchesWordBoundedAI(t *testing.T) {
	if _, ok := classify("Waiting for the train", ""); ok {
		t.Fatal("'ai' inside a word must not classify as AI")
	}
	if topic, ok := classify("How AI changes research", ""); !ok || topic != domain.TopicAI {
		t.Fatalf("expected AI topic, got %q ok=%v", topic, ok)
	}
}
