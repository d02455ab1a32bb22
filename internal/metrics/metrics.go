// Package metrics provides lightweight, lock-free counters for the
// shell's runtime statistics, reported by the stats command.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks commands and daemon connections.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	connectionsQueued atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	commandsTotal     atomic.Int64
	commandFailures   atomic.Int64
	faultsTotal       atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastFault    time.Time
	lastFaultMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ConnectionQueued adjusts the number of accepted connections waiting
// for a free slot.
func (c *Collector) ConnectionQueued(delta int64) {
	if c == nil {
		return
	}
	c.connectionsQueued.Add(delta)
}

// ActiveConnections returns the current number of served connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// QueuedConnections returns the number of connections waiting for a slot.
func (c *Collector) QueuedConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsQueued.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes of command lines read from clients.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes of responses written to clients.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Command metrics ──────────────────────────────────────────────────

// CommandExecuted records one filesystem command and its result code.
func (c *Collector) CommandExecuted(code int) {
	if c == nil {
		return
	}
	c.commandsTotal.Add(1)
	if code != 0 {
		c.commandFailures.Add(1)
	}
}

// Commands returns the number of filesystem commands run.
func (c *Collector) Commands() int64 {
	if c == nil {
		return 0
	}
	return c.commandsTotal.Load()
}

// CommandFailures returns the number of non-zero result codes.
func (c *Collector) CommandFailures() int64 {
	if c == nil {
		return 0
	}
	return c.commandFailures.Load()
}

// ── Faults ───────────────────────────────────────────────────────────

// RecordFault increments the fault counter and stores the message.
func (c *Collector) RecordFault(msg string) {
	if c == nil {
		return
	}
	c.faultsTotal.Add(1)
	c.mu.Lock()
	c.lastFault = time.Now()
	c.lastFaultMsg = msg
	c.mu.Unlock()
}

// FaultCount returns the total number of faults recorded.
func (c *Collector) FaultCount() int64 {
	if c == nil {
		return 0
	}
	return c.faultsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	ConnectionsQueued int64  `json:"connections_queued"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	Commands          int64  `json:"commands"`
	CommandFailures   int64  `json:"command_failures"`
	Faults            int64  `json:"faults"`
	LastFault         string `json:"last_fault,omitempty"`
	LastFaultMessage  string `json:"last_fault_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		ConnectionsQueued: c.connectionsQueued.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		Commands:          c.commandsTotal.Load(),
		CommandFailures:   c.commandFailures.Load(),
		Faults:            c.faultsTotal.Load(),
	}
	if !c.lastFault.IsZero() {
		s.LastFault = c.lastFault.Format(time.RFC3339)
		s.LastFaultMessage = c.lastFaultMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
