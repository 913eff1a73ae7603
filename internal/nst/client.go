package nst

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// DefaultBaseURL is the team-table endpoint of the stats site.
	DefaultBaseURL = "https://www.naturalstattrick.com/teamtable.php"

	// UserAgent presented on plain HTTP requests; the site rejects the Go
	// default client fingerprint.
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches team-table HTML. A plain HTTP client is tried first; when
// browser fallback is enabled, fetch failures retry through a headless
// browser instead of giving up.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	browserFallback bool
}

// NewClient creates a table client. An empty baseURL uses the default site.
func NewClient(baseURL string, browserFallback bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:         baseURL,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		browserFallback: browserFallback,
	}
}

// FetchTable fetches the raw HTML for one situation table.
func (c *Client) FetchTable(ctx context.Context, seasonLabel string, sit string, loc string) (string, error) {
	params := url.Values{}
	params.Set("fromseason", seasonLabel)
	params.Set("thruseason", seasonLabel)
	params.Set("stype", "2") // regular season
	params.Set("sit", sit)
	params.Set("score", "all")
	params.Set("rate", "y")
	params.Set("team", "all")
	params.Set("gpf", "410")
	params.Set("fd", "")
	params.Set("td", "")
	if loc != "" {
		params.Set("loc", loc)
	}
	fullURL := c.baseURL + "?" + params.Encode()

	html, err := c.fetchHTTP(ctx, fullURL)
	if err != nil && c.browserFallback {
		log.Printf("⚠️  plain fetch for sit=%s failed (%v); retrying via headless browser", sit, err)
		html, err = c.fetchBrowser(ctx, fullURL)
	}
	if err != nil {
		return "", err
	}
	return html, nil
}

func (c *Client) fetchHTTP(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("table fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading table body: %w", err)
	}
	return string(body), nil
}

// fetchBrowser loads the page in headless Chrome and returns the rendered
// document.
func (c *Client) fetchBrowser(ctx context.Context, fullURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, 45*time.Second)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(fullURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser fetch: %w", err)
	}
	if html == "" {
		return "", fmt.Errorf("browser fetch returned empty document")
	}
	return html, nil
}
