// Package metrics provides tests for the metrics collector.
package metrics

import (
	"testing"
)

// TestCollector_Counters tests that counters accumulate into the snapshot.
func TestCollector_Counters(t *testing.T) {
	c := NewCollector(nil)

	c.RecordSweepCompleted()
	c.RecordAlertCreated()
	c.RecordAlertCreated()
	c.RecordAlertSkipped()
	c.RecordLinkGenerated()
	c.RecordDispatchSkip()
	c.RecordError()

	snap := c.GetSnapshot()
	if snap.SweepsCompleted != 1 {
		t.Errorf("SweepsCompleted = %d, want 1", snap.SweepsCompleted)
	}
	if snap.AlertsCreated != 2 {
		t.Errorf("AlertsCreated = %d, want 2", snap.AlertsCreated)
	}
	if snap.AlertsSkipped != 1 {
		t.Errorf("AlertsSkipped = %d, want 1", snap.AlertsSkipped)
	}
	if snap.LinksGenerated != 1 {
		t.Errorf("LinksGenerated = %d, want 1", snap.LinksGenerated)
	}
	if snap.DispatchSkips != 1 {
		t.Errorf("DispatchSkips = %d, want 1", snap.DispatchSkips)
	}
	if snap.Errors != 1 {
		t.Errorf("Errors = %d, want 1", snap.Errors)
	}
	if snap.ServiceName != "alert-service" {
		t.Errorf("ServiceName = %q, want alert-service", snap.ServiceName)
	}
}

// TestCollector_WriteWithoutRedis tests that writing with no Redis client is a no-op.
func TestCollector_WriteWithoutRedis(t *testing.T) {
	c := NewCollector(nil)
	// Must not panic
	c.write(nil)
}
