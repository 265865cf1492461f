package threats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/adapter/external/threatintel"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/metrics"
)

// MaxBatchSize caps the number of indicators accepted by BatchCheck
const MaxBatchSize = 50

var (
	ErrEmptyBatch    = errors.New("at least one indicator is required")
	ErrBatchTooLarge = fmt.Errorf("maximum %d indicators per batch", MaxBatchSize)
)

// Evaluator is the aggregation engine used by the service
type Evaluator interface {
	Evaluate(ctx context.Context, indicator string) (*entity.AggregatedResult, error)
	GetConfiguredProviders() []string
	GetProviderStatus() []threatintel.ProviderStatus
}

// Service handles threat intelligence business logic
type Service struct {
	evaluator Evaluator
	logger    *slog.Logger
}

// NewService creates a new threats service
func NewService(evaluator Evaluator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		evaluator: evaluator,
		logger:    logger,
	}
}

// CheckIndicator queries threat intel and returns the aggregated result.
// The query is passed on unmodified and never validated, blank strings included.
func (s *Service) CheckIndicator(ctx context.Context, query string) (*entity.AggregatedResult, error) {
	result, err := s.evaluator.Evaluate(ctx, query)
	if err != nil {
		s.logger.Error("Threat intel evaluation failed", "query", query, "error", err)
		return nil, fmt.Errorf("evaluate indicator: %w", err)
	}

	metrics.Verdicts.WithLabelValues(string(result.Verdict)).Inc()
	s.logger.Info("Indicator evaluated",
		"query", query,
		"verdict", result.Verdict,
		"score", result.Score,
		"providers", len(result.Providers),
	)

	return result, nil
}

// BatchCheck evaluates several indicators one after another. Repeats are
// evaluated once; indicators that fail are logged and left out of the
// returned map.
func (s *Service) BatchCheck(ctx context.Context, queries []string) (map[string]*entity.AggregatedResult, error) {
	if len(queries) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(queries) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	results := make(map[string]*entity.AggregatedResult, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for _, query := range queries {
		if _, ok := seen[query]; ok {
			continue
		}
		seen[query] = struct{}{}

		result, err := s.CheckIndicator(ctx, query)
		if err != nil {
			s.logger.Warn("Skipping indicator in batch", "query", query, "error", err)
			continue
		}
		results[query] = result
	}

	return results, nil
}

// GetConfiguredProviders returns the names of providers with credentials
func (s *Service) GetConfiguredProviders() []string {
	return s.evaluator.GetConfiguredProviders()
}

// GetProviderStatus returns the status of all threat intel providers
func (s *Service) GetProviderStatus() []threatintel.ProviderStatus {
	return s.evaluator.GetProviderStatus()
}
