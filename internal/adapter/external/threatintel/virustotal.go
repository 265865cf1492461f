package threatintel

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
)

const virusTotalName = "VirusTotal"

// VirusTotalClient handles communication with VirusTotal API
type VirusTotalClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// VirusTotalConfig holds VirusTotal client configuration
type VirusTotalConfig struct {
	APIKey  string
	Timeout time.Duration
	BaseURL string
}

// NewVirusTotalClient creates a new VirusTotal client
func NewVirusTotalClient(cfg VirusTotalConfig) *VirusTotalClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.virustotal.com/api/v3"
	}

	return &VirusTotalClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Check queries VirusTotal for IP or domain reputation
func (c *VirusTotalClient) Check(ctx context.Context, indicator string) Outcome {
	if !c.IsConfigured() {
		return NotApplicable()
	}

	collection := "ip_addresses"
	if entity.IsDomain(indicator) {
		collection = "domains"
	}
	reqURL := c.baseURL + "/" + collection + "/" + url.PathEscape(indicator)

	resp, err := doRequest(ctx, c.httpClient, http.MethodGet, reqURL, nil, map[string]string{
		"x-apikey": c.apiKey,
		"Accept":   "application/json",
	})
	if err != nil {
		return failed(virusTotalName, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return rejected(virusTotalName, resp)
	}

	payload, err := decodeObject(resp.Body)
	if err != nil {
		return failed(virusTotalName, err)
	}

	attrs := objectField(objectField(payload, "data"), "attributes")
	stats := objectField(attrs, "last_analysis_stats")
	maliciousCount := int64(intField(stats, "malicious"))
	suspiciousCount := int64(intField(stats, "suspicious"))
	// -100 to 100, negative = bad. Read as float so -0.5 keeps its sign.
	reputation := floatField(attrs, "reputation")

	return Applicable(entity.ProviderResult{
		Provider:    virusTotalName,
		IsMalicious: maliciousCount > 0 || reputation < 0,
		Score:       clampScore(maliciousCount*20 + suspiciousCount*10),
		Raw:         payload,
	})
}

// GetProviderName returns the provider name
func (c *VirusTotalClient) GetProviderName() string {
	return virusTotalName
}

// GetDescription returns a short description of the source
func (c *VirusTotalClient) GetDescription() string {
	return "Multi-AV consensus & reputation"
}

// IsConfigured returns true if the client has an API key
func (c *VirusTotalClient) IsConfigured() bool {
	return c.apiKey != ""
}
