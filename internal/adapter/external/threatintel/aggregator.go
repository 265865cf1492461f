package threatintel

import (
	"context"
	"log/slog"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
)

const (
	ReasonMalicious   = "At least one provider flagged as malicious"
	ReasonNoProviders = "No providers enabled or responses unavailable"
)

// AggregatorConfig holds configuration for the aggregator
type AggregatorConfig struct {
	VirusTotalKey string
	AbuseIPDBKey  string
	GreyNoiseKey  string
	URLhausKey    string
	// Timeout bounds every single provider call
	Timeout time.Duration
	Logger  *slog.Logger
}

// Aggregator combines multiple threat intelligence sources into one verdict
type Aggregator struct {
	dispatcher *Dispatcher
}

// NewAggregator creates a new threat intel aggregator with the built-in providers
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return NewAggregatorWithProviders(cfg.Logger,
		NewVirusTotalClient(VirusTotalConfig{
			APIKey:  cfg.VirusTotalKey,
			Timeout: cfg.Timeout,
		}),
		NewAbuseIPDBClient(AbuseIPDBConfig{
			APIKey:  cfg.AbuseIPDBKey,
			Timeout: cfg.Timeout,
		}),
		NewGreyNoiseClient(GreyNoiseConfig{
			APIKey:  cfg.GreyNoiseKey,
			Timeout: cfg.Timeout,
		}),
		NewURLhausClient(URLhausConfig{
			APIKey:  cfg.URLhausKey,
			Timeout: cfg.Timeout,
		}),
	)
}

// NewAggregatorWithProviders creates an aggregator over an explicit provider set
func NewAggregatorWithProviders(logger *slog.Logger, providers ...ThreatIntelProvider) *Aggregator {
	return &Aggregator{
		dispatcher: NewDispatcher(logger, providers...),
	}
}

// Evaluate queries all configured sources for the indicator and combines the
// answers. Provider failures are part of the result; an error means an
// unexpected internal fault.
func (a *Aggregator) Evaluate(ctx context.Context, indicator string) (*entity.AggregatedResult, error) {
	results, err := a.dispatcher.Dispatch(ctx, indicator)
	if err != nil {
		return nil, err
	}
	return Combine(indicator, results), nil
}

// Combine reduces provider results into a verdict and an average score
func Combine(indicator string, results map[string]entity.ProviderResult) *entity.AggregatedResult {
	if results == nil {
		results = map[string]entity.ProviderResult{}
	}

	result := &entity.AggregatedResult{
		Query:     indicator,
		Verdict:   entity.VerdictUnknown,
		Providers: results,
		Reasons:   []string{},
	}

	anyMalicious := false
	total := 0
	for _, r := range results {
		if r.IsMalicious {
			anyMalicious = true
		}
		total += clampScore(r.Score)
	}

	switch {
	case anyMalicious:
		result.Verdict = entity.VerdictMalicious
		result.Reasons = append(result.Reasons, ReasonMalicious)
	case len(results) > 0:
		result.Verdict = entity.VerdictClean
	default:
		result.Reasons = append(result.Reasons, ReasonNoProviders)
	}

	if len(results) > 0 {
		// Truncated mean, both operands are non-negative
		result.Score = total / len(results)
	}

	return result
}

// GetConfiguredProviders returns list of configured providers
func (a *Aggregator) GetConfiguredProviders() []string {
	return a.dispatcher.Providers()
}

// GetProviderStatus returns detailed status of all providers
func (a *Aggregator) GetProviderStatus() []ProviderStatus {
	return a.dispatcher.Status()
}
