package threatintel

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
)

const (
	abuseIPDBName = "AbuseIPDB"
	// Confidence at or above this value is reported as malicious
	abuseMaliciousThreshold = 25
)

// AbuseIPDBClient handles communication with AbuseIPDB API.
// AbuseIPDB only knows about IP addresses.
type AbuseIPDBClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// AbuseIPDBConfig holds AbuseIPDB client configuration
type AbuseIPDBConfig struct {
	APIKey  string
	Timeout time.Duration
	BaseURL string
}

// NewAbuseIPDBClient creates a new AbuseIPDB client
func NewAbuseIPDBClient(cfg AbuseIPDBConfig) *AbuseIPDBClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.abuseipdb.com/api/v2"
	}

	return &AbuseIPDBClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Check queries AbuseIPDB for IP reputation
func (c *AbuseIPDBClient) Check(ctx context.Context, indicator string) Outcome {
	if !c.IsConfigured() || entity.IsDomain(indicator) {
		return NotApplicable()
	}

	params := url.Values{}
	params.Set("ipAddress", indicator)
	params.Set("maxAgeInDays", "90")

	resp, err := doRequest(ctx, c.httpClient, http.MethodGet, c.baseURL+"/check?"+params.Encode(), nil, map[string]string{
		"Key":    c.apiKey,
		"Accept": "application/json",
	})
	if err != nil {
		return failed(abuseIPDBName, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return rejected(abuseIPDBName, resp)
	}

	payload, err := decodeObject(resp.Body)
	if err != nil {
		return failed(abuseIPDBName, err)
	}

	confidence := intField(objectField(payload, "data"), "abuseConfidenceScore")

	return Applicable(entity.ProviderResult{
		Provider:    abuseIPDBName,
		IsMalicious: confidence >= abuseMaliciousThreshold,
		Score:       clampScore(confidence), // already 0-100
		Raw:         payload,
	})
}

// GetProviderName returns the provider name
func (c *AbuseIPDBClient) GetProviderName() string {
	return abuseIPDBName
}

// GetDescription returns a short description of the source
func (c *AbuseIPDBClient) GetDescription() string {
	return "IP abuse reports & confidence scoring"
}

// IsConfigured returns true if the client has an API key
func (c *AbuseIPDBClient) IsConfigured() bool {
	return c.apiKey != ""
}
