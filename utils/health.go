package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth = HealthStatus{Healthy: true, Checks: map[string]bool{}}
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// RunHealthChecks runs every check once and stores the snapshot.
func RunHealthChecks(ctx context.Context, checks map[string]HealthCheck) HealthStatus {
	status := HealthStatus{Healthy: true, Checks: make(map[string]bool, len(checks)), CheckedAt: time.Now()}
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()
		status.Checks[name] = err == nil
		if err != nil {
			status.Healthy = false
			GetLogger().Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
		}
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor runs the checks every interval until ctx is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, checks map[string]HealthCheck) {
	RunHealthChecks(ctx, checks)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				RunHealthChecks(ctx, checks)
			}
		}
	}()
}
