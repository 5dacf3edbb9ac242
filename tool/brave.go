package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

// BraveSearch queries the Brave Search API.
type BraveSearch struct {
	APIKey  string
	BaseURL string
	Count   int
	Country string
	Lang    string
	Client  *http.Client
}

var _ Searcher = (*BraveSearch)(nil)

// BraveOption configures the BraveSearch.
type BraveOption func(*BraveSearch)

// WithBraveBaseURL sets the base URL for the Brave Search API.
func WithBraveBaseURL(baseURL string) BraveOption {
	return func(b *BraveSearch) {
		b.BaseURL = baseURL
	}
}

// WithBraveCount sets the number of results to return (1-20).
func WithBraveCount(count int) BraveOption {
	return func(b *BraveSearch) {
		if count < 1 {
			count = 1
		}
		if count > 20 {
			count = 20
		}
		b.Count = count
	}
}

// WithBraveCountry sets the country code for search results (e.g., "US").
func WithBraveCountry(country string) BraveOption {
	return func(b *BraveSearch) {
		b.Country = country
	}
}

// WithBraveLang sets the language code for search results (e.g., "en").
func WithBraveLang(lang string) BraveOption {
	return func(b *BraveSearch) {
		b.Lang = lang
	}
}

// WithBraveHTTPClient sets a custom HTTP client (e.g. with a timeout).
func WithBraveHTTPClient(client *http.Client) BraveOption {
	return func(b *BraveSearch) {
		b.Client = client
	}
}

// NewBraveSearch creates a new BraveSearch tool.
// If apiKey is empty, it tries to read from BRAVE_API_KEY environment variable.
func NewBraveSearch(apiKey string, opts ...BraveOption) (*BraveSearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("BRAVE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("BRAVE_API_KEY not set")
	}

	b := &BraveSearch{
		APIKey:  apiKey,
		BaseURL: "https://api.search.brave.com/res/v1/web/search",
		Count:   10,
		Country: "US",
		Lang:    "en",
		Client:  &http.Client{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search executes the search.
func (b *BraveSearch) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", b.Count))
	if b.Country != "" {
		params.Set("country", b.Country)
	}
	if b.Lang != "" {
		params.Set("search_lang", b.Lang)
	}

	reqURL := fmt.Sprintf("%s?%s", b.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("brave api rate limited the request")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave api returned status: %d", resp.StatusCode)
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}

	return results, nil
}
