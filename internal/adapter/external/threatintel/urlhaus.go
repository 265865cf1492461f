package threatintel

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
)

const urlhausName = "URLhaus"

// URLhausConfig holds configuration for URLhaus client
type URLhausConfig struct {
	APIKey  string // Auth-Key from auth.abuse.ch
	Timeout time.Duration
	BaseURL string
}

// URLhausClient queries abuse.ch URLhaus for hosts serving malicious URLs.
// A host can be an IP address or a domain name.
type URLhausClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewURLhausClient creates a new URLhaus client
func NewURLhausClient(cfg URLhausConfig) *URLhausClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://urlhaus-api.abuse.ch/v1"
	}

	return &URLhausClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Check queries URLhaus for an IP or domain
func (c *URLhausClient) Check(ctx context.Context, indicator string) Outcome {
	if !c.IsConfigured() {
		return NotApplicable()
	}

	form := url.Values{}
	form.Set("host", indicator)

	resp, err := doRequest(ctx, c.httpClient, http.MethodPost, c.baseURL+"/host/", strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Auth-Key":     c.apiKey,
	})
	if err != nil {
		return failed(urlhausName, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return rejected(urlhausName, resp)
	}

	payload, err := decodeObject(resp.Body)
	if err != nil {
		return failed(urlhausName, err)
	}

	found := stringField(payload, "query_status") == "ok"

	return Applicable(entity.ProviderResult{
		Provider:    urlhausName,
		IsMalicious: found,
		Score:       clampScore(urlhausScore(payload)),
		Raw:         payload,
	})
}

// urlhausScore calculates threat score based on URLhaus host data
func urlhausScore(payload map[string]any) int {
	// no_results means the host is unknown to URLhaus
	if stringField(payload, "query_status") != "ok" {
		return 0
	}

	// Base score for being in URLhaus
	score := 50

	online := 0
	for _, item := range listField(payload, "urls") {
		entry, _ := item.(map[string]any)
		if stringField(entry, "url_status") == "online" {
			online++
		}
	}
	score += min(online*10, 30)

	if intField(payload, "url_count") > 5 {
		score += 10
	}

	blacklists := objectField(payload, "blacklists")
	if stringField(blacklists, "spamhaus_dbl") == "listed" {
		score += 10
	}
	if stringField(blacklists, "surbl_multi") == "listed" {
		score += 10
	}

	return score
}

// GetProviderName returns the provider name
func (c *URLhausClient) GetProviderName() string {
	return urlhausName
}

// GetDescription returns a short description of the source
func (c *URLhausClient) GetDescription() string {
	return "Malware distribution hosts (abuse.ch)"
}

// IsConfigured returns true if Auth-Key is configured
func (c *URLhausClient) IsConfigured() bool {
	return c.apiKey != ""
}
