// Package health provides health checks for the marketplace node.
//
// The checker probes the components the node depends on:
//   - the committed store and its read latency
//   - module invariants
//   - the telemetry exporters, when enabled
//
// Endpoints:
//   - /health is a basic liveness check
//   - /health/ready is the readiness check for load balancers
//   - /health/detailed includes invariants and component metrics
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Source is the node state the checker inspects. *app.MechApp implements it.
type Source interface {
	LastCommitID() storetypes.CommitID
	BlockHeader() cmtproto.Header
	Query(fn func(ctx sdk.Context) error) error
	CheckInvariants(ctx sdk.Context) error
}

// Probe reports the health of an optional component.
type Probe func() error

// Checker performs health checks on the node
type Checker struct {
	logger  log.Logger
	source  Source
	version string
	probes  map[string]Probe

	// Thresholds for health determination
	maxResponseTime time.Duration

	mu            sync.RWMutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// Config holds configuration for the health checker
type Config struct {
	// Version is reported by every check.
	Version string

	// MaxResponseTime is the store read latency above which the node is degraded
	MaxResponseTime time.Duration

	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration
}

// DefaultConfig returns the default health check configuration
func DefaultConfig() Config {
	return Config{
		MaxResponseTime: time.Second,
		CacheDuration:   5 * time.Second,
	}
}

// NewChecker creates a new health checker
func NewChecker(logger log.Logger, cfg Config, source Source) (*Checker, error) {
	if source == nil {
		return nil, fmt.Errorf("state source is required")
	}
	if cfg.MaxResponseTime <= 0 {
		return nil, fmt.Errorf("max response time must be positive")
	}

	return &Checker{
		logger:          logger,
		source:          source,
		version:         cfg.Version,
		probes:          make(map[string]Probe),
		maxResponseTime: cfg.MaxResponseTime,
		cacheDuration:   cfg.CacheDuration,
	}, nil
}

// AddProbe registers an extra component check. It must be called before the
// checker starts serving.
func (c *Checker) AddProbe(name string, probe Probe) {
	c.probes[name] = probe
}

// Check performs a health check. Detailed checks also run every module invariant
// and are never served from cache.
func (c *Checker) Check(ctx context.Context, detailed bool) *HealthCheck {
	if !detailed {
		if cached := c.cached(); cached != nil {
			return cached
		}
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Version:    c.version,
		Components: make(map[string]ComponentHealth),
	}

	type check struct {
		name string
		fn   func(context.Context) ComponentHealth
	}
	checks := []check{{"store", c.checkStore}}
	if detailed {
		checks = append(checks, check{"invariants", c.checkInvariants})
	}
	for name, probe := range c.probes {
		checks = append(checks, check{name, probeCheck(probe)})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, ch := range checks {
		wg.Add(1)
		go func(name string, fn func(context.Context) ComponentHealth) {
			defer wg.Done()
			result := fn(ctx)
			mu.Lock()
			health.Components[name] = result
			mu.Unlock()
		}(ch.name, ch.fn)
	}
	wg.Wait()

	health.Status = calculateOverallStatus(health.Components)

	if !detailed {
		c.mu.Lock()
		c.lastCheck = time.Now()
		c.cachedHealth = health
		c.mu.Unlock()
	}

	return health
}

// checkStore verifies the store is readable and reports the last committed block
func (c *Checker) checkStore(_ context.Context) ComponentHealth {
	var pendingHeight int64
	start := time.Now()
	err := c.source.Query(func(ctx sdk.Context) error {
		pendingHeight = ctx.BlockHeight()
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   fmt.Sprintf("store query failed: %v", err),
			Timestamp: time.Now(),
		}
	}

	commit := c.source.LastCommitID()
	header := c.source.BlockHeader()
	metrics := map[string]interface{}{
		"query_time_ms":  duration.Milliseconds(),
		"last_height":    commit.Version,
		"last_app_hash":  fmt.Sprintf("%X", commit.Hash),
		"block_time":     header.Time.Format(time.RFC3339),
		"chain_id":       header.ChainID,
		"pending_height": pendingHeight,
	}

	if commit.Version == 0 {
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   "chain not initialized",
			Timestamp: time.Now(),
			Metrics:   metrics,
		}
	}

	componentStatus := StatusHealthy
	message := "store is responsive"
	if duration > c.maxResponseTime {
		componentStatus = StatusDegraded
		message = "store response time is degraded"
	}

	return ComponentHealth{
		Status:    componentStatus,
		Message:   message,
		Timestamp: time.Now(),
		Metrics:   metrics,
	}
}

// checkInvariants runs every registered module invariant
func (c *Checker) checkInvariants(_ context.Context) ComponentHealth {
	err := c.source.Query(func(ctx sdk.Context) error {
		return c.source.CheckInvariants(ctx)
	})
	if err != nil {
		c.logger.Error("invariant check failed", "error", err)
		return ComponentHealth{
			Status:    StatusUnhealthy,
			Message:   err.Error(),
			Timestamp: time.Now(),
		}
	}

	return ComponentHealth{
		Status:    StatusHealthy,
		Message:   "all invariants hold",
		Timestamp: time.Now(),
	}
}

func probeCheck(probe Probe) func(context.Context) ComponentHealth {
	return func(context.Context) ComponentHealth {
		if err := probe(); err != nil {
			return ComponentHealth{
				Status:    StatusDegraded,
				Message:   err.Error(),
				Timestamp: time.Now(),
			}
		}
		return ComponentHealth{
			Status:    StatusHealthy,
			Timestamp: time.Now(),
		}
	}
}

// calculateOverallStatus determines the overall health status based on component statuses
func calculateOverallStatus(components map[string]ComponentHealth) Status {
	hasUnhealthy := false
	hasDegraded := false

	for _, component := range components {
		switch component.Status {
		case StatusUnhealthy:
			hasUnhealthy = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return StatusUnhealthy
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// cached returns the last basic check while it is fresh
func (c *Checker) cached() *HealthCheck {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachedHealth == nil || time.Since(c.lastCheck) >= c.cacheDuration {
		return nil
	}
	return c.cachedHealth
}

// RegisterRoutes registers health check endpoints
func (c *Checker) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", c.handleHealth)
	router.GET("/health/ready", c.handleHealthReady)
	router.GET("/health/detailed", c.handleHealthDetailed)
}

// handleHealth handles the basic liveness check endpoint
func (c *Checker) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleHealthReady handles the readiness check endpoint. Degraded is still ready.
func (c *Checker) handleHealthReady(ctx *gin.Context) {
	health := c.Check(ctx.Request.Context(), false)
	ctx.JSON(statusCode(health), health)
}

// handleHealthDetailed handles the detailed health check endpoint
func (c *Checker) handleHealthDetailed(ctx *gin.Context) {
	health := c.Check(ctx.Request.Context(), true)
	ctx.JSON(statusCode(health), health)
}

func statusCode(health *HealthCheck) int {
	if health.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
