package threatintel

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
)

// ThreatIntelProvider defines the interface for threat intel sources
type ThreatIntelProvider interface {
	GetProviderName() string
	IsConfigured() bool
	// Check never fails: upstream errors are folded into a zero-score result
	Check(ctx context.Context, indicator string) Outcome
}

// ProviderStatus represents the status of a provider
type ProviderStatus struct {
	Name        string `json:"name"`
	Configured  bool   `json:"configured"`
	Description string `json:"description"`
}

// Outcome is either an applicable ProviderResult or a not-applicable signal.
// A zero Outcome is not applicable.
type Outcome struct {
	result *entity.ProviderResult
	err    error
}

// Applicable wraps a normalized provider result
func Applicable(result entity.ProviderResult) Outcome {
	return Outcome{result: &result}
}

// NotApplicable signals that the provider has nothing to say about the indicator
func NotApplicable() Outcome {
	return Outcome{}
}

// Result returns the provider result and whether the outcome is applicable
func (o Outcome) Result() (entity.ProviderResult, bool) {
	if o.result == nil {
		return entity.ProviderResult{}, false
	}
	return *o.result, true
}

// Err returns the upstream failure that produced a fallback result, if any
func (o Outcome) Err() error {
	return o.err
}

// failed builds the fallback result for a transport or decoding failure
func failed(provider string, err error) Outcome {
	return Outcome{
		result: &entity.ProviderResult{
			Provider: provider,
			Raw:      map[string]any{"error": err.Error()},
		},
		err: err,
	}
}

// rejected builds the fallback result for an HTTP error status.
// The upstream body text is kept as the diagnostic.
func rejected(provider string, resp *httpResponse) Outcome {
	return Outcome{
		result: &entity.ProviderResult{
			Provider: provider,
			Raw:      map[string]any{"error": string(resp.Body)},
		},
		err: statusError(resp.StatusCode),
	}
}

func statusError(code int) error {
	if code == http.StatusTooManyRequests {
		return fmt.Errorf("rate limit exceeded")
	}
	return fmt.Errorf("API error: status %d", code)
}

// clampScore bounds a score to the 0-100 scale
func clampScore[T int | int64](score T) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}
