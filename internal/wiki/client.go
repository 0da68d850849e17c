// Package wiki talks to the MediaWiki action API.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pders01/wikinsight/internal/config"
	"github.com/pders01/wikinsight/internal/debuglog"
)

type SearchResult struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	PageID    int    `json:"pageid"`
	Timestamp string `json:"timestamp"`
}

type Article struct {
	Title   string
	Content string
	PageID  int
}

type FeaturedItem struct {
	Title     string
	Blurb     string
	Link      string
	Published time.Time
}

type Client struct {
	client      *http.Client
	limiter     *rate.Limiter
	apiURL      string
	siteURL     string
	userAgent   string
	searchLimit int
}

func NewClient(cfg config.WikiConfig) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		limiter:     rate.NewLimiter(limit, burst),
		apiURL:      cfg.APIURL,
		siteURL:     cfg.SiteURL,
		userAgent:   cfg.UserAgent,
		searchLimit: cfg.SearchLimit,
	}
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) toDomain() error {
	return &DomainError{Code: e.Code, Info: e.Info}
}

type searchResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		Search []SearchResult `json:"search"`
	} `json:"query"`
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Title  string `json:"title"`
		PageID int    `json:"pageid"`
		Text   struct {
			Content string `json:"*"`
		} `json:"text"`
	} `json:"parse"`
}

type randomResponse struct {
	Error *apiError `json:"error"`
	Query *struct {
		Random []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
}

// Search runs a full-text search. A response without hits is an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
	}
	if c.searchLimit > 0 {
		params.Set("srlimit", strconv.Itoa(c.searchLimit))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.toDomain()
	}
	if resp.Query == nil {
		return nil, &ParseError{Op: "search", Err: fmt.Errorf("%w: query", errMissingField)}
	}

	results := make([]SearchResult, len(resp.Query.Search))
	copy(results, resp.Query.Search)
	debuglog.Debugf("search %q returned %d results", query, len(results))
	return results, nil
}

// FetchArticle returns the rendered HTML of a page, following redirects.
func (c *Client) FetchArticle(ctx context.Context, title string) (*Article, error) {
	params := url.Values{
		"action":             {"parse"},
		"page":               {title},
		"prop":               {"text"},
		"disableeditsection": {"true"},
		"redirects":          {"true"},
	}

	var resp parseResponse
	if err := c.getJSON(ctx, "fetch article", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.toDomain()
	}
	if resp.Parse == nil {
		return nil, &ParseError{Op: "fetch article", Err: fmt.Errorf("%w: parse", errMissingField)}
	}

	return &Article{
		Title:   resp.Parse.Title,
		Content: resp.Parse.Text.Content,
		PageID:  resp.Parse.PageID,
	}, nil
}

// Random picks the title of a random main-namespace article.
func (c *Client) Random(ctx context.Context) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"list":        {"random"},
		"rnnamespace": {"0"},
		"rnlimit":     {"1"},
	}

	var resp randomResponse
	if err := c.getJSON(ctx, "random", params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error.toDomain()
	}
	if resp.Query == nil || len(resp.Query.Random) == 0 {
		return "", &ParseError{Op: "random", Err: fmt.Errorf("%w: query.random", errMissingField)}
	}
	return resp.Query.Random[0].Title, nil
}

// ArticleURL is the human-facing page for title.
func (c *Client) ArticleURL(title string) string {
	return c.siteURL + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

func (c *Client) getJSON(ctx context.Context, op string, params url.Values, v any) error {
	params.Set("format", "json")

	body, err := c.get(ctx, op, params, "application/json")
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op string, params url.Values, accept string) (io.ReadCloser, error) {
	endpoint := c.apiURL + "?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: op, URL: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}
