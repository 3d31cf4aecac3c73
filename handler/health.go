package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/webshopd/nexipay/infra/config"
	"github.com/webshopd/nexipay/infra/response"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	gateways  []string
	startTime time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	Timestamp   time.Time     `json:"timestamp"`
	Uptime      string        `json:"uptime"`
	Environment string        `json:"environment"`
	Gateways    []string      `json:"gateways"`
	System      *SystemHealth `json:"system"`
}

// SystemHealth represents runtime health of the process
type SystemHealth struct {
	Goroutines  int    `json:"goroutines"`
	MemoryAlloc string `json:"memory_alloc"`
	NumGC       uint32 `json:"num_gc"`
	GoVersion   string `json:"go_version"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gateways []string) *HealthHandler {
	return &HealthHandler{
		gateways:  gateways,
		startTime: time.Now(),
	}
}

// Health returns the service health snapshot
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	health := HealthStatus{
		Status:      "healthy",
		Version:     "1.0.0",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: config.GetEnv("ENVIRONMENT", "development"),
		Gateways:    h.gateways,
		System: &SystemHealth{
			Goroutines:  runtime.NumGoroutine(),
			MemoryAlloc: fmt.Sprintf("%.1f MB", float64(mem.Alloc)/1024/1024),
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}

	response.Success(w, http.StatusOK, "Service is healthy", health)
}
