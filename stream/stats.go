// SPDX-License-Identifier: EPL-2.0

package stream

import "sync/atomic"

// Stats is a snapshot of the engine counters.
type Stats struct {
	Blocks       uint64 // Process calls
	SilentBlocks uint64 // blocks silenced because nothing was loaded or the transport stopped
	StaleBlocks  uint64 // blocks entirely before the pool window
	EOFBlocks    uint64 // blocks at or past the end of a non-looping file
	AheadBlocks  uint64 // blocks entirely past the pool window

	RefillRequests uint64 // needsRead transitions from false to true
	Publishes      uint64 // blocks copied into the pool
	Refills        uint64 // blocks decoded and handed off
	RefillErrors   uint64 // failed refills
	Dropped        uint64 // handed-off blocks replaced before being published
}

// counters are shared by the engine and every worker it creates. Only
// atomic adds happen on the real-time goroutine.
type counters struct {
	blocks, silent, stale, eof, ahead atomic.Uint64

	requests, publishes, refills, refillErrors, dropped atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Blocks:         c.blocks.Load(),
		SilentBlocks:   c.silent.Load(),
		StaleBlocks:    c.stale.Load(),
		EOFBlocks:      c.eof.Load(),
		AheadBlocks:    c.ahead.Load(),
		RefillRequests: c.requests.Load(),
		Publishes:      c.publishes.Load(),
		Refills:        c.refills.Load(),
		RefillErrors:   c.refillErrors.Load(),
		Dropped:        c.dropped.Load(),
	}
}
