// Package scraper proxies scraping and content-generation jobs to external
// providers. It owns only transport plumbing and a bounded retry policy; the
// providers' pipelines are consumed, never reimplemented.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ScrapeResult is the structured content extracted from an article page.
type ScrapeResult struct {
	URL      string   `json:"url"`
	FinalURL string   `json:"final_url,omitempty"`
	Title    string   `json:"title,omitempty"`
	H1       string   `json:"h1,omitempty"`
	Headings []string `json:"headings,omitempty"`
	Content  string   `json:"content,omitempty"`
}

// GenerateRequest describes one content-generation job.
type GenerateRequest struct {
	Keyword  string `json:"keyword"`
	Location string `json:"location,omitempty"`
	Goal     string `json:"goal,omitempty"`
	URL      string `json:"url,omitempty"`
}

// GenerateResult is the provider's generated content.
type GenerateResult struct {
	Content    string `json:"content"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// Client calls the scraping and generation providers with a classified,
// bounded retry policy.
type Client struct {
	scraperURL   string
	scraperKey   string
	generatorURL string
	generatorKey string
	http         *http.Client
	maxAttempts  int
	sleep        func(time.Duration)
}

// Config holds provider endpoints and credentials.
type Config struct {
	ScraperURL      string
	ScraperAPIKey   string
	GeneratorURL    string
	GeneratorAPIKey string
	RequestTimeout  time.Duration
	MaxAttempts     int
}

// NewClient creates a Client from provider configuration.
func NewClient(cfg Config) *Client {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		scraperURL:   strings.TrimSuffix(cfg.ScraperURL, "/"),
		scraperKey:   cfg.ScraperAPIKey,
		generatorURL: strings.TrimSuffix(cfg.GeneratorURL, "/"),
		generatorKey: cfg.GeneratorAPIKey,
		http:         &http.Client{Timeout: cfg.RequestTimeout},
		maxAttempts:  attempts,
		sleep:        time.Sleep,
	}
}

// Scrape asks the scraping provider to extract article content from url.
func (c *Client) Scrape(ctx context.Context, url string) (*ScrapeResult, error) {
	if c.scraperURL == "" {
		return nil, fmt.Errorf("scraper provider is not configured")
	}

	var result ScrapeResult
	err := withRetry(ctx, c.maxAttempts, c.sleep, func() error {
		return c.postJSON(ctx, c.scraperURL+"/v1/scrape", c.scraperKey,
			map[string]string{"url": url}, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", url, err)
	}
	return &result, nil
}

// Generate asks the generation provider for article content.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if c.generatorURL == "" {
		return nil, fmt.Errorf("generation provider is not configured")
	}

	var result GenerateResult
	err := withRetry(ctx, c.maxAttempts, c.sleep, func() error {
		return c.postJSON(ctx, c.generatorURL+"/v1/generate", c.generatorKey, req, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("generate for keyword %q: %w", req.Keyword, err)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, url, apiKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return ErrRateLimited
	case resp.StatusCode == http.StatusGatewayTimeout:
		io.Copy(io.Discard, resp.Body)
		return ErrTimeout
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrValidation, resp.StatusCode, detail)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
