package provider

import (
	"context"
	"sync"
	"time"
)

const (
	defaultCheckInterval = 30 * time.Second
	defaultCheckTimeout  = 10 * time.Second
	unhealthyThreshold   = 3
)

// HealthStatus represents the current health state of a provider.
type HealthStatus struct {
	Healthy             bool
	LastCheck           time.Time
	ConsecutiveFailures int
}

// HealthChecker periodically checks adapter health and tracks status.
type HealthChecker struct {
	mu            sync.RWMutex
	registry      *Registry
	statuses      map[string]*HealthStatus
	checkInterval time.Duration
	checkTimeout  time.Duration
	stopCh        chan struct{}
	stopped       chan struct{}
}

// NewHealthChecker creates a health checker that monitors all adapters
// in the given registry.
func NewHealthChecker(registry *Registry) *HealthChecker {
	return &HealthChecker{
		registry:      registry,
		statuses:      make(map[string]*HealthStatus),
		checkInterval: defaultCheckInterval,
		checkTimeout:  defaultCheckTimeout,
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
}

// Start begins the background health check loop.
func (hc *HealthChecker) Start() {
	go hc.run()
}

// Stop signals the health check loop to terminate and waits for it to finish.
func (hc *HealthChecker) Stop() {
	close(hc.stopCh)
	<-hc.stopped
}

// IsHealthy returns whether a provider is currently healthy.
func (hc *HealthChecker) IsHealthy(name string) bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	status, ok := hc.statuses[name]
	if !ok {
		// Unknown provider is considered unhealthy.
		return false
	}
	return status.Healthy
}

// GetStatus returns the full health status for a provider.
func (hc *HealthChecker) GetStatus(name string) (HealthStatus, bool) {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	status, ok := hc.statuses[name]
	if !ok {
		return HealthStatus{}, false
	}
	return *status, true
}

// GetAllStatuses returns a snapshot of all provider health statuses.
func (hc *HealthChecker) GetAllStatuses() map[string]HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	result := make(map[string]HealthStatus, len(hc.statuses))
	for name, status := range hc.statuses {
		result[name] = *status
	}
	return result
}

func (hc *HealthChecker) run() {
	defer close(hc.stopped)

	// Run an initial check immediately.
	hc.checkAll()

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-hc.stopCh:
			return
		case <-ticker.C:
			hc.checkAll()
		}
	}
}

func (hc *HealthChecker) checkAll() {
	for _, a := range hc.registry.All() {
		hc.checkAdapter(a)
	}
}

func (hc *HealthChecker) checkAdapter(a Adapter) {
	ctx, cancel := context.WithTimeout(context.Background(), hc.checkTimeout)
	defer cancel()

	healthy := a.HealthCheck(ctx)

	hc.mu.Lock()
	defer hc.mu.Unlock()

	status, ok := hc.statuses[a.Name()]
	if !ok {
		status = &HealthStatus{Healthy: true}
		hc.statuses[a.Name()] = status
	}

	status.LastCheck = time.Now()
	if healthy {
		status.Healthy = true
		status.ConsecutiveFailures = 0
		return
	}

	status.ConsecutiveFailures++
	if status.ConsecutiveFailures >= unhealthyThreshold {
		status.Healthy = false
	}
}
