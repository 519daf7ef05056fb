package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/academiahub/backend/internal/common/logger"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"
      xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/"
      xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query: search_query=all:"quantum"</title>
  <id>http://arxiv.org/api/abc</id>
  <updated>2025-06-01T00:00:00-04:00</updated>
  <opensearch:totalResults>4217</opensearch:totalResults>
  <opensearch:startIndex>0</opensearch:startIndex>
  <opensearch:itemsPerPage>2</opensearch:itemsPerPage>
  <entry>
    <id>http://arxiv.org/abs/2101.00001v2</id>
    <updated>2025-05-20T10:00:00Z</updated>
    <published>2025-05-01T09:00:00Z</published>
    <title>Quantum Widgets at Scale</title>
    <summary>  We study widgets.  </summary>
    <author><name>Jane Doe</name></author>
    <author><name>John Smith</name></author>
    <link href="http://arxiv.org/abs/2101.00001v2" rel="alternate" type="text/html"/>
    <arxiv:primary_category term="quant-ph" scheme="http://arxiv.org/schemas/atom"/>
    <category term="quant-ph" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.ET" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id></id>
    <title>Broken entry without id</title>
  </entry>
</feed>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, logger.GetInstance()), srv
}

func TestSearchParsesFeed(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	})

	result, err := client.Search(context.Background(), SearchRequest{
		Query:      `all:"quantum"`,
		MaxResults: 2,
		SortBy:     SortSubmittedDate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.Get("search_query") != `all:"quantum"` {
		t.Errorf("unexpected search_query: %q", gotQuery.Get("search_query"))
	}
	if gotQuery.Get("sortBy") != "submittedDate" || gotQuery.Get("sortOrder") != "descending" {
		t.Errorf("unexpected sort params: %v", gotQuery)
	}

	if result.TotalResults != 4217 {
		t.Errorf("expected totalResults 4217, got %d", result.TotalResults)
	}
	if len(result.Papers) != 1 {
		t.Fatalf("expected malformed entry dropped, got %d papers", len(result.Papers))
	}

	p := result.Papers[0]
	if p.ID != "2101.00001v2" {
		t.Errorf("unexpected id: %q", p.ID)
	}
	if p.BareID() != "2101.00001" {
		t.Errorf("unexpected bare id: %q", p.BareID())
	}
	if p.Title != "Quantum Widgets at Scale" {
		t.Errorf("unexpected title: %q", p.Title)
	}
	if p.Summary != "We study widgets." {
		t.Errorf("expected trimmed summary, got %q", p.Summary)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Jane Doe" {
		t.Errorf("unexpected authors: %v", p.Authors)
	}
	if p.PrimaryCategory != "quant-ph" {
		t.Errorf("unexpected primary category: %q", p.PrimaryCategory)
	}
	if p.PDFURL != "http://arxiv.org/pdf/2101.00001v2" {
		t.Errorf("unexpected pdf url: %q", p.PDFURL)
	}
	if p.PublishedAt.IsZero() || p.UpdatedAt.Before(p.PublishedAt) {
		t.Errorf("unexpected timestamps: published=%v updated=%v", p.PublishedAt, p.UpdatedAt)
	}
}

func TestSearchStripsVersionsFromIDList(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(sampleFeed))
	})

	_, err := client.Search(context.Background(), SearchRequest{
		IDList:     []string{"2101.00001v2", "2102.00002"},
		MaxResults: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.Get("id_list") != "2101.00001,2102.00002" {
		t.Errorf("unexpected id_list: %q", gotQuery.Get("id_list"))
	}
}

func TestSearchReportsUpstreamStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), SearchRequest{Query: "all:x", MaxResults: 1})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
