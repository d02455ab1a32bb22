package metrics

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestCollector_Connections(t *testing.T) {
	c := New()

	c.ConnectionOpened()
	c.ConnectionOpened()
	if c.ActiveConnections() != 2 {
		t.Errorf("active = %d, want 2", c.ActiveConnections())
	}

	c.ConnectionClosed()
	if c.ActiveConnections() != 1 {
		t.Errorf("active = %d, want 1", c.ActiveConnections())
	}
	if c.TotalConnections() != 2 {
		t.Errorf("total should remain 2, got %d", c.TotalConnections())
	}

	c.ConnectionQueued(1)
	c.ConnectionQueued(1)
	c.ConnectionQueued(-1)
	if c.QueuedConnections() != 1 {
		t.Errorf("queued = %d, want 1", c.QueuedConnections())
	}
}

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.BytesReceived(1024)
	c.BytesSent(512)
	c.BytesReceived(100)

	if c.TotalBytesIn() != 1124 {
		t.Errorf("bytes in = %d, want 1124", c.TotalBytesIn())
	}
	if c.TotalBytesOut() != 512 {
		t.Errorf("bytes out = %d, want 512", c.TotalBytesOut())
	}
}

func TestCollector_Commands(t *testing.T) {
	c := New()

	for _, code := range []int{0, 1, 0, -1, 0} {
		c.CommandExecuted(code)
	}
	if c.Commands() != 5 {
		t.Errorf("commands = %d, want 5", c.Commands())
	}
	if c.CommandFailures() != 2 {
		t.Errorf("failures = %d, want 2", c.CommandFailures())
	}
}

func TestCollector_Faults(t *testing.T) {
	c := New()

	c.RecordFault("first")
	c.RecordFault("HDFS command ls finished with result code 1")

	if c.FaultCount() != 2 {
		t.Errorf("faults = %d, want 2", c.FaultCount())
	}
	snap := c.Snapshot()
	if snap.LastFaultMessage != "HDFS command ls finished with result code 1" {
		t.Errorf("last fault = %q", snap.LastFaultMessage)
	}
	if snap.LastFault == "" {
		t.Error("expected a fault timestamp")
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.ConnectionOpened()
	c.CommandExecuted(2)

	var snap Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.ConnectionsActive != 1 {
		t.Errorf("JSON active = %d", snap.ConnectionsActive)
	}
	if snap.Commands != 1 || snap.CommandFailures != 1 {
		t.Errorf("JSON commands = %d/%d", snap.Commands, snap.CommandFailures)
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.CommandExecuted(j % 2)
				c.RecordFault("x")
			}
		}()
	}
	wg.Wait()
	if c.Commands() != 800 || c.CommandFailures() != 400 || c.FaultCount() != 800 {
		t.Errorf("got %d/%d/%d", c.Commands(), c.CommandFailures(), c.FaultCount())
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.ConnectionQueued(1)
	c.BytesReceived(100)
	c.BytesSent(100)
	c.CommandExecuted(1)
	c.RecordFault("test")

	if c.ActiveConnections() != 0 || c.Commands() != 0 || c.FaultCount() != 0 {
		t.Error("nil collector should return 0")
	}
	if snap := c.Snapshot(); snap.ConnectionsActive != 0 {
		t.Error("nil snapshot should be zero")
	}
	if c.JSON() == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
