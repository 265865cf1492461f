package threatintel

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
)

const greyNoiseName = "GreyNoise"

// GreyNoiseClient handles communication with GreyNoise Community API.
// GreyNoise identifies IPs that are mass-scanning the internet, which keeps
// benign scanners (Shodan, Googlebot, etc.) from looking hostile.
type GreyNoiseClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GreyNoiseConfig holds GreyNoise client configuration
type GreyNoiseConfig struct {
	APIKey  string
	Timeout time.Duration
	BaseURL string
}

// NewGreyNoiseClient creates a new GreyNoise client
func NewGreyNoiseClient(cfg GreyNoiseConfig) *GreyNoiseClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.greynoise.io/v3/community"
	}

	return &GreyNoiseClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: newHTTPClient(cfg.Timeout),
	}
}

// Check queries GreyNoise for IP information
func (c *GreyNoiseClient) Check(ctx context.Context, indicator string) Outcome {
	if !c.IsConfigured() || entity.IsDomain(indicator) {
		return NotApplicable()
	}

	resp, err := doRequest(ctx, c.httpClient, http.MethodGet, c.baseURL+"/"+url.PathEscape(indicator), nil, map[string]string{
		"key":    c.apiKey,
		"Accept": "application/json",
	})
	if err != nil {
		return failed(greyNoiseName, err)
	}

	// 404 means IP not observed by GreyNoise - this is normal
	if resp.StatusCode == http.StatusNotFound {
		payload, err := decodeObject(resp.Body)
		if err != nil {
			payload = map[string]any{"message": string(resp.Body)}
		}
		return Applicable(entity.ProviderResult{
			Provider: greyNoiseName,
			Raw:      payload,
		})
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return rejected(greyNoiseName, resp)
	}

	payload, err := decodeObject(resp.Body)
	if err != nil {
		return failed(greyNoiseName, err)
	}

	classification := stringField(payload, "classification")

	return Applicable(entity.ProviderResult{
		Provider:    greyNoiseName,
		IsMalicious: classification == "malicious" && !boolField(payload, "riot"),
		Score:       clampScore(greyNoiseScore(payload)),
		Raw:         payload,
	})
}

// greyNoiseScore maps a GreyNoise classification onto the 0-100 scale
func greyNoiseScore(payload map[string]any) int {
	// RIOT = Rule It Out - known benign services (Googlebot, Microsoft, etc.)
	if boolField(payload, "riot") {
		return 0
	}

	switch stringField(payload, "classification") {
	case "benign":
		return 5
	case "malicious":
		return 85
	default:
		if boolField(payload, "noise") {
			// Scanning the internet but intent unknown
			return 30
		}
		return 0
	}
}

// GetProviderName returns the provider name
func (c *GreyNoiseClient) GetProviderName() string {
	return greyNoiseName
}

// GetDescription returns a short description of the source
func (c *GreyNoiseClient) GetDescription() string {
	return "Benign scanner identification (FP reduction)"
}

// IsConfigured returns true if the client has an API key
func (c *GreyNoiseClient) IsConfigured() bool {
	return c.apiKey != ""
}
