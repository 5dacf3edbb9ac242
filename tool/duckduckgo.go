package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DuckDuckGoSearch scrapes the DuckDuckGo HTML endpoint. It needs no API
// key, which makes it the default backend.
type DuckDuckGoSearch struct {
	BaseURL    string
	MaxResults int
	UserAgent  string
	Client     *http.Client
}

var _ Searcher = (*DuckDuckGoSearch)(nil)

// DuckDuckGoOption configures the DuckDuckGoSearch.
type DuckDuckGoOption func(*DuckDuckGoSearch)

// WithDuckDuckGoBaseURL sets the HTML endpoint URL.
func WithDuckDuckGoBaseURL(baseURL string) DuckDuckGoOption {
	return func(d *DuckDuckGoSearch) {
		d.BaseURL = baseURL
	}
}

// WithDuckDuckGoMaxResults caps the number of results returned.
func WithDuckDuckGoMaxResults(n int) DuckDuckGoOption {
	return func(d *DuckDuckGoSearch) {
		if n > 0 {
			d.MaxResults = n
		}
	}
}

// WithDuckDuckGoHTTPClient sets a custom HTTP client (e.g. with a timeout).
func WithDuckDuckGoHTTPClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGoSearch) {
		d.Client = client
	}
}

// NewDuckDuckGoSearch creates a new DuckDuckGo searcher.
func NewDuckDuckGoSearch(opts ...DuckDuckGoOption) *DuckDuckGoSearch {
	d := &DuckDuckGoSearch{
		BaseURL:    "https://html.duckduckgo.com/html/",
		MaxResults: 5,
		UserAgent:  "Mozilla/5.0 (compatible; smart-chatbot/1.0)",
		Client:     &http.Client{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search executes the search and parses the result page.
func (d *DuckDuckGoSearch) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)

	reqURL := fmt.Sprintf("%s?%s", d.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.UserAgent)

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("duckduckgo rate limited the request")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	var results []Result
	doc.Find("div.result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(results) >= d.MaxResults {
			return false
		}

		link := s.Find("a.result__a")
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())

		if title == "" || href == "" {
			return true
		}

		results = append(results, Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: snippet,
		})
		return true
	})

	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> redirect links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
