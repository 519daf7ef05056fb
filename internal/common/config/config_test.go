package config

import (
	"testing"

	"github.com/academiahub/backend/internal/common/constants"
)

func TestGetListEnvFallsBackToDefaultFeeds(t *testing.T) {
	t.Setenv("NEWS_FEED_URLS", "")

	got := getListEnv("NEWS_FEED_URLS", constants.DefaultNewsFeedURLs)
	want := []string{
		"https://techcrunch.com/feed/",
		"https://news.mit.edu/rss/topic/machine-learning",
		"https://www.sciencedaily.com/rss/computers_math/artificial_intelligence.xml",
		"https://hnrss.org/frontpage",
		"https://arstechnica.com/feed/",
		"https://syncedreview.com/feed/",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d default feeds, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("feed %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestGetListEnvSplitsAndTrims(t *testing.T) {
	t.Setenv("NEWS_FEED_URLS", " https://a.example/feed , ,https://b.example/feed ")

	got := getListEnv("NEWS_FEED_URLS", constants.DefaultNewsFeedURLs)
	if len(got) != 2 || got[0] != "https://a.example/feed" || got[1] != "https://b.example/feed" {
		t.Fatalf("unexpected parse: %v", got)
	}
}
