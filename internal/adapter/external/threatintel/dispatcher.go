package threatintel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/metrics"
)

// describer is implemented by providers that can explain themselves in
// the provider status listing
type describer interface {
	GetDescription() string
}

// Dispatcher fans an indicator out to every configured provider
type Dispatcher struct {
	known      []ThreatIntelProvider
	configured []ThreatIntelProvider
	logger     *slog.Logger
}

// NewDispatcher creates a dispatcher. Providers without credentials are
// kept for status reporting but never invoked. Pass nil for logger to
// disable logging.
func NewDispatcher(logger *slog.Logger, providers ...ThreatIntelProvider) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	d := &Dispatcher{
		known:  providers,
		logger: logger,
	}
	for _, p := range providers {
		if p.IsConfigured() {
			d.configured = append(d.configured, p)
		}
	}
	return d
}

// Dispatch runs every configured provider concurrently and waits for all of
// them. Only applicable results are returned, keyed by provider name.
// The error is non-nil only when a provider panicked.
func (d *Dispatcher) Dispatch(ctx context.Context, indicator string) (map[string]entity.ProviderResult, error) {
	results := make(map[string]entity.ProviderResult, len(d.configured))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var faults []error

	for _, p := range d.configured {
		wg.Add(1)
		go func(p ThreatIntelProvider) {
			defer wg.Done()

			name := p.GetProviderName()
			start := time.Now()

			defer func() {
				if r := recover(); r != nil {
					metrics.ProviderRequests.WithLabelValues(name, metrics.OutcomePanic).Inc()
					d.logger.Error("Threat intel provider panicked",
						"provider", name,
						"indicator", indicator,
						"panic", r,
					)

					mu.Lock()
					faults = append(faults, fmt.Errorf("provider %s: %v", name, r))
					mu.Unlock()
				}
			}()

			outcome := p.Check(ctx, indicator)
			metrics.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

			result, ok := outcome.Result()
			if !ok {
				metrics.ProviderRequests.WithLabelValues(name, metrics.OutcomeNotApplicable).Inc()
				return
			}

			if err := outcome.Err(); err != nil {
				metrics.ProviderRequests.WithLabelValues(name, metrics.OutcomeError).Inc()
				d.logger.Warn("Threat intel provider error",
					"provider", name,
					"indicator", indicator,
					"error", err,
				)
			} else {
				metrics.ProviderRequests.WithLabelValues(name, metrics.OutcomeOK).Inc()
			}

			mu.Lock()
			results[result.Provider] = result
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	if len(faults) > 0 {
		return nil, fmt.Errorf("dispatch %q: %w", indicator, errors.Join(faults...))
	}

	return results, nil
}

// Providers returns the names of the configured providers
func (d *Dispatcher) Providers() []string {
	names := make([]string, 0, len(d.configured))
	for _, p := range d.configured {
		names = append(names, p.GetProviderName())
	}
	return names
}

// Status returns detailed status of every known provider
func (d *Dispatcher) Status() []ProviderStatus {
	statuses := make([]ProviderStatus, 0, len(d.known))
	for _, p := range d.known {
		status := ProviderStatus{
			Name:       p.GetProviderName(),
			Configured: p.IsConfigured(),
		}
		if desc, ok := p.(describer); ok {
			status.Description = desc.GetDescription()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
