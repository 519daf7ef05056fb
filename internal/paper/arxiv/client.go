package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/academiahub/backend/internal/common/logger"
	"github.com/academiahub/backend/internal/observability/metrics"
	"github.com/academiahub/backend/internal/paper/domain"
)

type SortField string

const (
	SortSubmittedDate   SortField = "submittedDate"
	SortRelevance       SortField = "relevance"
	SortLastUpdatedDate SortField = "lastUpdatedDate"
)

// SearchRequest maps onto the arXiv API query parameters. Either
// Query or IDList must be set.
type SearchRequest struct {
	Query      string
	IDList     []string
	Start      int
	MaxResults int
	SortBy     SortField
}

// Client talks to the arXiv Atom API and normalizes entries into
// domain papers. Malformed entries are dropped, not surfaced.
type Client struct {
	httpClient *http.Client
	baseURL    string
	parser     *gofeed.Parser
	log        *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		parser:     gofeed.NewParser(),
		log:        log,
	}
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (domain.SearchResult, error) {
	start := time.Now()

	result, err := c.search(ctx, req)

	metrics.ArxivRequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ArxivRequestsTotal.WithLabelValues("error").Inc()
		return domain.SearchResult{}, err
	}
	metrics.ArxivRequestsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (c *Client) search(ctx context.Context, req SearchRequest) (domain.SearchResult, error) {
	params := url.Values{}
	if req.Query != "" {
		params.Set("search_query", req.Query)
	}
	if len(req.IDList) > 0 {
		bare := make([]string, 0, len(req.IDList))
		for _, id := range req.IDList {
			bare = append(bare, domain.StripVersion(id))
		}
		params.Set("id_list", strings.Join(bare, ","))
	}
	params.Set("start", strconv.Itoa(req.Start))
	params.Set("max_results", strconv.Itoa(req.MaxResults))
	if req.SortBy != "" {
		params.Set("sortBy", string(req.SortBy))
		params.Set("sortOrder", "descending")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("failed to build arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SearchResult{}, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		paper, ok := c.toPaper(item)
		if !ok {
			continue
		}
		papers = append(papers, paper)
	}

	return domain.SearchResult{
		Papers:       papers,
		TotalResults: totalResults(feed, len(papers)),
	}, nil
}

func (c *Client) toPaper(item *gofeed.Item) (domain.Paper, bool) {
	if item.GUID == "" || item.Title == "" || item.PublishedParsed == nil {
		c.log.Debugf("dropping malformed arxiv entry guid=%q", item.GUID)
		return domain.Paper{}, false
	}

	absURL := item.Link
	if absURL == "" {
		absURL = item.GUID
	}

	paper := domain.Paper{
		ID:          idFromAbsURL(item.GUID),
		Title:       strings.TrimSpace(item.Title),
		Summary:     strings.TrimSpace(item.Description),
		PublishedAt: *item.PublishedParsed,
		AbsURL:      absURL,
		PDFURL:      pdfURLFromAbs(absURL),
		Categories:  item.Categories,
	}

	if item.UpdatedParsed != nil {
		paper.UpdatedAt = *item.UpdatedParsed
	} else {
		paper.UpdatedAt = paper.PublishedAt
	}

	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			paper.Authors = append(paper.Authors, author.Name)
		}
	}

	paper.PrimaryCategory = primaryCategory(item)
	if paper.PrimaryCategory == "" && len(paper.Categories) > 0 {
		paper.PrimaryCategory = paper.Categories[0]
	}

	return paper, true
}

// idFromAbsURL turns "http://arxiv.org/abs/2101.00001v2" into
// "2101.00001v2". Entry ids that are not URLs pass through.
func idFromAbsURL(guid string) string {
	idx := strings.Index(guid, "/abs/")
	if idx == -1 {
		return guid
	}
	return guid[idx+len("/abs/"):]
}

func pdfURLFromAbs(absURL string) string {
	return strings.Replace(absURL, "/abs/", "/pdf/", 1)
}

func primaryCategory(item *gofeed.Item) string {
	ns, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	exts, ok := ns["primary_category"]
	if !ok || len(exts) == 0 {
		return ""
	}
	return exts[0].Attrs["term"]
}

// totalResults reads the opensearch extension the arXiv API attaches
// to the feed, falling back to the page size when absent.
func totalResults(feed *gofeed.Feed, fallback int) int {
	ns, ok := feed.Extensions["opensearch"]
	if !ok {
		return fallback
	}
	exts, ok := ns["totalResults"]
	if !ok || len(exts) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(exts[0].Value))
	if err != nil {
		return fallback
	}
	return n
}
