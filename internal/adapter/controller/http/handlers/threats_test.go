package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/adapter/external/threatintel"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/config"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/entity"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/usecase/threats"
)

type fakeProvider struct {
	name       string
	configured bool
	check      func(indicator string) threatintel.Outcome
}

func (f *fakeProvider) GetProviderName() string { return f.name }
func (f *fakeProvider) IsConfigured() bool      { return f.configured }
func (f *fakeProvider) Check(_ context.Context, indicator string) threatintel.Outcome {
	return f.check(indicator)
}

func scoring(name string, score int, malicious bool) *fakeProvider {
	return &fakeProvider{
		name:       name,
		configured: true,
		check: func(string) threatintel.Outcome {
			return threatintel.Applicable(entity.ProviderResult{
				Provider:    name,
				IsMalicious: malicious,
				Score:       score,
				Raw:         map[string]any{},
			})
		},
	}
}

func newTestRouter(providers ...threatintel.ThreatIntelProvider) http.Handler {
	svc := threats.NewService(threatintel.NewAggregatorWithProviders(nil, providers...), nil)
	h := NewThreatsHandler(svc)

	r := chi.NewRouter()
	r.Post("/api/check", h.Check)
	r.Get("/health", HealthCheck(&config.Config{App: config.AppConfig{Env: "test"}}, svc))
	r.Route("/api/v1/threats", func(r chi.Router) {
		r.Get("/check/{indicator}", h.CheckIndicator)
		r.Post("/batch", h.BatchCheck)
		r.Get("/providers", h.GetProviders)
	})
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheck_Malicious(t *testing.T) {
	router := newTestRouter(
		scoring("VirusTotal", 100, true),
		scoring("AbuseIPDB", 0, false),
	)

	rec := doRequest(t, router, http.MethodPost, "/api/check", `{"query":"1.2.3.4"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result entity.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "1.2.3.4", result.Query)
	assert.Equal(t, entity.VerdictMalicious, result.Verdict)
	assert.Equal(t, 50, result.Score)
	assert.Len(t, result.Providers, 2)
	assert.Equal(t, []string{threatintel.ReasonMalicious}, result.Reasons)
}

func TestCheck_NoProviders(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodPost, "/api/check", `{"query":"example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"query": "example.com",
		"verdict": "Unknown",
		"score": 0,
		"providers": {},
		"reasons": ["No providers enabled or responses unavailable"]
	}`, rec.Body.String())
}

func TestCheck_BadRequest(t *testing.T) {
	router := newTestRouter(scoring("VirusTotal", 0, false))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"invalid json", `{"query":`, http.StatusBadRequest},
		{"wrong type", `{"query":42}`, http.StatusBadRequest},
		{"oversized body", `{"query":"` + strings.Repeat("a", MaxRequestBodySize) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/check", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestCheck_BlankQueryIsEvaluated(t *testing.T) {
	router := newTestRouter(scoring("VirusTotal", 0, false))

	tests := []struct {
		name      string
		body      string
		wantQuery string
	}{
		{"missing query", `{}`, ""},
		{"empty query", `{"query":""}`, ""},
		{"blank query", `{"query":"  "}`, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/check", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			var result entity.AggregatedResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tt.wantQuery, result.Query)
			assert.Equal(t, entity.VerdictClean, result.Verdict)
			assert.Contains(t, result.Providers, "VirusTotal")
		})
	}
}

func TestCheck_InternalFault(t *testing.T) {
	buggy := &fakeProvider{
		name:       "Buggy",
		configured: true,
		check: func(string) threatintel.Outcome {
			panic("nil map write")
		},
	}
	router := newTestRouter(buggy, scoring("VirusTotal", 10, false))

	rec := doRequest(t, router, http.MethodPost, "/api/check", `{"query":"8.8.8.8"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "nil map write")
}

func TestCheckIndicator_URLParam(t *testing.T) {
	router := newTestRouter(scoring("VirusTotal", 20, false))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/threats/check/example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result entity.AggregatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "example.com", result.Query)
	assert.Equal(t, entity.VerdictClean, result.Verdict)
	assert.Equal(t, 20, result.Score)
}

func TestBatchCheck(t *testing.T) {
	router := newTestRouter(scoring("VirusTotal", 0, false))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/threats/batch", `{"queries":["1.1.1.1","example.com"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results map[string]entity.AggregatedResult `json:"results"`
		Count   int                                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Contains(t, body.Results, "example.com")

	rec = doRequest(t, router, http.MethodPost, "/api/v1/threats/batch", `{"queries":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProviders(t *testing.T) {
	router := newTestRouter(
		scoring("VirusTotal", 0, false),
		&fakeProvider{name: "AbuseIPDB"},
	)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/threats/providers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers []threatintel.ProviderStatus `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Providers, 2)
	assert.Equal(t, "VirusTotal", body.Providers[0].Name)
	assert.True(t, body.Providers[0].Configured)
	assert.False(t, body.Providers[1].Configured)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(scoring("VirusTotal", 0, false)), http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "test", body.Environment)
		assert.Equal(t, []string{"VirusTotal"}, body.Providers)
	})

	t.Run("degraded without providers", func(t *testing.T) {
		rec := doRequest(t, newTestRouter(&fakeProvider{name: "VirusTotal"}), http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "no provider configured", body.Checks["providers"])
	})
}
