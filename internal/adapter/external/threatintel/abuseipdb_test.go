package threatintel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAbuseIPDBServer(t *testing.T, handler http.HandlerFunc) *AbuseIPDBClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAbuseIPDBClient(AbuseIPDBConfig{APIKey: "test-key", BaseURL: srv.URL})
}

func abuseBody(confidence int) string {
	return fmt.Sprintf(`{"data":{"ipAddress":"1.2.3.4","abuseConfidenceScore":%d}}`, confidence)
}

func TestAbuseIPDB_NotConfigured(t *testing.T) {
	client := NewAbuseIPDBClient(AbuseIPDBConfig{})

	assert.False(t, client.IsConfigured())
	_, ok := client.Check(context.Background(), "1.2.3.4").Result()
	assert.False(t, ok)
}

func TestAbuseIPDB_SkipsDomains(t *testing.T) {
	called := false
	client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, indicator := range []string{"example.com", "evil.org", "a1.2.3.4"} {
		_, ok := client.Check(context.Background(), indicator).Result()
		assert.False(t, ok, indicator)
	}
	assert.False(t, called)
}

func TestAbuseIPDB_RequestShape(t *testing.T) {
	client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check", r.URL.Path)
		assert.Equal(t, "1.2.3.4", r.URL.Query().Get("ipAddress"))
		assert.Equal(t, "90", r.URL.Query().Get("maxAgeInDays"))
		assert.Equal(t, "test-key", r.Header.Get("Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		fmt.Fprint(w, abuseBody(0))
	})

	result, ok := client.Check(context.Background(), "1.2.3.4").Result()
	require.True(t, ok)
	assert.Equal(t, "AbuseIPDB", result.Provider)
}

func TestAbuseIPDB_ConfidenceMapping(t *testing.T) {
	tests := []struct {
		confidence    int
		wantMalicious bool
		wantScore     int
	}{
		{0, false, 0},
		{24, false, 24},
		{25, true, 25},
		{100, true, 100},
		{150, true, 100},
		{-5, false, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.confidence), func(t *testing.T) {
			client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, abuseBody(tt.confidence))
			})

			outcome := client.Check(context.Background(), "1.2.3.4")
			result, ok := outcome.Result()
			require.True(t, ok)
			assert.NoError(t, outcome.Err())
			assert.Equal(t, tt.wantMalicious, result.IsMalicious)
			assert.Equal(t, tt.wantScore, result.Score)
			assert.Contains(t, result.Raw, "data")
		})
	}
}

func TestAbuseIPDB_OutOfRangeConfidenceSaturates(t *testing.T) {
	for _, raw := range []string{"1e12", "3000000000.0", "99999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"data":{"abuseConfidenceScore":%s}}`, raw)
			})

			result, ok := client.Check(context.Background(), "1.2.3.4").Result()
			require.True(t, ok)
			assert.True(t, result.IsMalicious)
			assert.Equal(t, 100, result.Score)
		})
	}
}

func TestAbuseIPDB_MissingFieldsDefaultToZero(t *testing.T) {
	for _, body := range []string{`{}`, `{"data":{}}`, `{"data":null}`, `{"data":{"abuseConfidenceScore":"n/a"}}`, `null`} {
		client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})

		result, ok := client.Check(context.Background(), "1.2.3.4").Result()
		require.True(t, ok, body)
		assert.False(t, result.IsMalicious, body)
		assert.Equal(t, 0, result.Score, body)
	}
}

func TestAbuseIPDB_HTTPErrorKeepsBody(t *testing.T) {
	client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"detail":"Authentication failed"}]}`)
	})

	outcome := client.Check(context.Background(), "1.2.3.4")
	result, ok := outcome.Result()
	require.True(t, ok)
	assert.False(t, result.IsMalicious)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, `{"errors":[{"detail":"Authentication failed"}]}`, result.Raw["error"])
	assert.EqualError(t, outcome.Err(), "API error: status 401")
}

func TestAbuseIPDB_RateLimited(t *testing.T) {
	client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	outcome := client.Check(context.Background(), "1.2.3.4")
	assert.EqualError(t, outcome.Err(), "rate limit exceeded")
}

func TestAbuseIPDB_TimeoutIsNonFinding(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewAbuseIPDBClient(AbuseIPDBConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})

	outcome := client.Check(context.Background(), "1.2.3.4")
	result, ok := outcome.Result()
	require.True(t, ok)
	require.Error(t, outcome.Err())
	assert.False(t, result.IsMalicious)
	assert.Equal(t, 0, result.Score)
	assert.NotEmpty(t, result.Raw["error"])
}

func TestAbuseIPDB_InvalidJSON(t *testing.T) {
	client := newAbuseIPDBServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>oops</html>`)
	})

	outcome := client.Check(context.Background(), "1.2.3.4")
	result, ok := outcome.Result()
	require.True(t, ok)
	require.Error(t, outcome.Err())
	assert.Equal(t, 0, result.Score)
	assert.Contains(t, result.Raw["error"], "decode response")
}
