// Package metrics provides a Redis-backed metrics collector for the
// alert service. Counters are written periodically so the management
// UI can read service health without hitting the service itself.
package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RedisKey is the Redis key this service reports under.
	RedisKey = "metrics:alert-service"
	// TTL is how long metrics stay in Redis if not refreshed.
	TTL = 2 * time.Minute
	// DefaultReportInterval is the default interval for writing metrics to Redis.
	DefaultReportInterval = 30 * time.Second
)

// Snapshot holds a point-in-time view of the service counters.
type Snapshot struct {
	ServiceName     string    `json:"service_name"`
	StartedAt       time.Time `json:"started_at"`
	LastUpdated     time.Time `json:"last_updated"`
	SweepsCompleted uint64    `json:"sweeps_completed"`
	SweepFailures   uint64    `json:"sweep_failures"`
	AlertsCreated   uint64    `json:"alerts_created"`
	AlertsSkipped   uint64    `json:"alerts_skipped"` // dedup hits
	LinksGenerated  uint64    `json:"links_generated"`
	DispatchSkips   uint64    `json:"dispatch_skips"` // missing phone numbers
	Errors          uint64    `json:"errors"`
}

// Collector collects and reports metrics for the alert service.
type Collector struct {
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	sweepsCompleted atomic.Uint64
	sweepFailures   atomic.Uint64
	alertsCreated   atomic.Uint64
	alertsSkipped   atomic.Uint64
	linksGenerated  atomic.Uint64
	dispatchSkips   atomic.Uint64
	errors          atomic.Uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new metrics collector. redisClient may be
// nil, in which case counters are still collected but never reported.
func NewCollector(redisClient *redis.Client) *Collector {
	return &Collector{
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: DefaultReportInterval,
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval for writing metrics to Redis.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.reportInterval = interval
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.write(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.write(context.Background()) // Final write
				return
			case <-ticker.C:
				c.write(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// RecordSweepCompleted increments the completed sweep counter.
func (c *Collector) RecordSweepCompleted() { c.sweepsCompleted.Add(1) }

// RecordSweepFailure increments the failed sweep counter.
func (c *Collector) RecordSweepFailure() { c.sweepFailures.Add(1) }

// RecordAlertCreated increments the created alert counter.
func (c *Collector) RecordAlertCreated() { c.alertsCreated.Add(1) }

// RecordAlertSkipped increments the dedup-skip counter.
func (c *Collector) RecordAlertSkipped() { c.alertsSkipped.Add(1) }

// RecordLinkGenerated increments the generated link counter.
func (c *Collector) RecordLinkGenerated() { c.linksGenerated.Add(1) }

// RecordDispatchSkip increments the missing-phone skip counter.
func (c *Collector) RecordDispatchSkip() { c.dispatchSkips.Add(1) }

// RecordError increments the error counter.
func (c *Collector) RecordError() { c.errors.Add(1) }

// GetSnapshot returns current metrics without writing to Redis.
func (c *Collector) GetSnapshot() *Snapshot {
	return &Snapshot{
		ServiceName:     "alert-service",
		StartedAt:       c.startedAt,
		LastUpdated:     time.Now().UTC(),
		SweepsCompleted: c.sweepsCompleted.Load(),
		SweepFailures:   c.sweepFailures.Load(),
		AlertsCreated:   c.alertsCreated.Load(),
		AlertsSkipped:   c.alertsSkipped.Load(),
		LinksGenerated:  c.linksGenerated.Load(),
		DispatchSkips:   c.dispatchSkips.Load(),
		Errors:          c.errors.Load(),
	}
}

// write serializes the current snapshot and stores it in Redis.
func (c *Collector) write(ctx context.Context) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(c.GetSnapshot())
	if err != nil {
		slog.Error("Failed to marshal metrics", "error", err)
		return
	}

	if err := c.redis.Set(ctx, RedisKey, data, TTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "error", err)
		return
	}

	slog.Debug("Metrics written to Redis", "key", RedisKey)
}
