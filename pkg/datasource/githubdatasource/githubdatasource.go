// Package githubdatasource is a reference datasource.Provider: it fetches
// content for task-extraction enrichment from a GitHub URL, with TTL
// caching and a domain allowlist.
package githubdatasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ospreyai/osprey/pkg/config"
	"github.com/ospreyai/osprey/pkg/datasource"
)

// Provider fetches and caches content from a configured GitHub repo URL,
// falling back to static default content when no URL is configured.
type Provider struct {
	httpClient *http.Client
	token string
	cache *cache
	allowedDomains []string
	repoURL string
	defaultContent string
}

var _ datasource.Provider = (*Provider)(nil)

// New builds a Provider from the resolved DataSourceConfig.
func New(cfg config.DataSourceConfig) *Provider {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
 ttl = time.Minute
	}
	return &Provider{
 httpClient: &http.Client{Timeout: 30 * time.Second},
 token: cfg.GitHubToken,
 cache: newCache(ttl),
 allowedDomains: cfg.AllowedDomains,
 repoURL: cfg.RepoURL,
 defaultContent: cfg.DefaultContent,
	}
}

// Fetch resolves data-source content for this turn. A configured repo
// URL is fetched (with caching); otherwise the configured default
// content is returned as-is. query is unused by this provider — it
// always serves the one configured document.
func (p *Provider) Fetch(ctx context.Context, _ string) (string, error) {
	if p.repoURL == "" {
 return p.defaultContent, nil
	}

	if err := validateURL(p.repoURL, p.allowedDomains); err != nil {
 return "", fmt.Errorf("githubdatasource: %w", err)
	}

	normalized := convertToRawURL(p.repoURL)
	if content, ok := p.cache.Get(normalized); ok {
 return content, nil
	}

	content, err := p.download(ctx, normalized)
	if err != nil {
 return "", fmt.Errorf("githubdatasource: fetch %s: %w", normalized, err)
	}

	p.cache.Set(normalized, content)
	return content, nil
}

func (p *Provider) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
 return "", fmt.Errorf("create request: %w", err)
	}
	if p.token != "" {
 req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
 return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
 return "", fmt.Errorf("GitHub returned HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
 return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// OverrideHTTPClientForTest swaps the internal HTTP client. Test-only.
func (p *Provider) OverrideHTTPClientForTest(httpClient *http.Client) {
	p.httpClient = httpClient
}
