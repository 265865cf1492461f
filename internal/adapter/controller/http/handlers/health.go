package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/config"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/usecase/threats"
)

// Version is set at build time with -ldflags
var Version = "dev"

var startTime = time.Now()

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Uptime      string            `json:"uptime"`
	Environment string            `json:"environment"`
	Timestamp   time.Time         `json:"timestamp"`
	Checks      map[string]string `json:"checks"`
	Providers   []string          `json:"providers"`
	System      SystemInfo        `json:"system"`
}

// SystemInfo represents system information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
}

// HealthCheck returns a handler for health check endpoint
func HealthCheck(cfg *config.Config, service *threats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		configured := service.GetConfiguredProviders()
		checks := map[string]string{
			"api":       "ok",
			"providers": "ok",
		}
		// Without credentials every lookup comes back Unknown
		if len(configured) == 0 {
			checks["providers"] = "no provider configured"
		}

		status := "healthy"
		for _, check := range checks {
			if check != "ok" {
				status = "degraded"
				break
			}
		}

		JSONResponse(w, http.StatusOK, HealthResponse{
			Status:      status,
			Version:     Version,
			Uptime:      time.Since(startTime).Round(time.Second).String(),
			Environment: cfg.App.Env,
			Timestamp:   time.Now().UTC(),
			Checks:      checks,
			Providers:   configured,
			System: SystemInfo{
				GoVersion:    runtime.Version(),
				NumCPU:       runtime.NumCPU(),
				NumGoroutine: runtime.NumGoroutine(),
				MemAllocMB:   m.Alloc / 1024 / 1024,
			},
		})
	}
}
