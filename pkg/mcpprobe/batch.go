package mcpprobe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// notFoundFailure is reported for requested ids absent from the descriptor
// map. Such entries consume no worker time and no transport resources.
const notFoundFailure = "MCP not found"

// ProbeAll probes every requested id with bounded concurrency. The timeout is
// per target, not shared across the batch; the returned map has exactly one
// entry per requested id, with unknown ids mapped to a synthetic zero-latency
// failure. The call returns only once every entry is populated.
func (p *Prober) ProbeAll(ctx context.Context, descriptors map[string]ServerDescriptor, ids []string, total time.Duration, concurrency int) map[string]ProbeResult {
	logger := p.opts.Logger.With("batch", uuid.NewString())
	logger.Info("probe batch starting", "targets", len(ids), "concurrency", concurrency)

	results := runBatch(ids, concurrency, func(id string) ProbeResult {
		desc, ok := descriptors[id]
		if !ok {
			return ProbeResult{Error: notFoundFailure}
		}
		return runGuarded(logger, id, func() ProbeResult {
			return p.Probe(ctx, desc, total)
		}, func(msg string) ProbeResult {
			return ProbeResult{Error: msg}
		})
	})

	logger.Info("probe batch finished", "targets", len(results))
	return results
}

// DiscoverAll is ProbeAll's capability-discovery counterpart.
func (p *Prober) DiscoverAll(ctx context.Context, descriptors map[string]ServerDescriptor, ids []string, total time.Duration, concurrency int) map[string]DiscoveryResult {
	logger := p.opts.Logger.With("batch", uuid.NewString())
	logger.Info("discovery batch starting", "targets", len(ids), "concurrency", concurrency)

	results := runBatch(ids, concurrency, func(id string) DiscoveryResult {
		desc, ok := descriptors[id]
		if !ok {
			return DiscoveryResult{Error: notFoundFailure}
		}
		return runGuarded(logger, id, func() DiscoveryResult {
			return p.Discover(ctx, desc, total)
		}, func(msg string) DiscoveryResult {
			return DiscoveryResult{Error: msg}
		})
	})

	logger.Info("discovery batch finished", "targets", len(results))
	return results
}

// runBatch dispatches ids to max(1, concurrency) workers sharing a single
// FIFO queue. The queue is a guarded cursor over the id slice rather than
// per-worker copies, so each position is handed out exactly once; workers
// exit individually when the cursor runs off the end, and the caller's map
// is fully populated before runBatch returns.
func runBatch[R any](ids []string, concurrency int, run func(id string) R) map[string]R {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(ids) {
		concurrency = len(ids)
	}

	var (
		mu      sync.Mutex
		next    int
		results = make(map[string]R, len(ids))
		wg      sync.WaitGroup
	)
	pop := func() (string, bool) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(ids) {
			return "", false
		}
		id := ids[next]
		next++
		return id, true
	}

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				id, ok := pop()
				if !ok {
					return
				}
				res := run(id)
				mu.Lock()
				results[id] = res
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return results
}

// runGuarded converts a panicking engine call into a failure entry so one
// broken target can never abort the batch.
func runGuarded[R any](logger *slog.Logger, id string, run func() R, fail func(msg string) R) (res R) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("engine panic recovered", "server", id, "panic", r)
			res = fail(fmt.Sprintf("internal error: %v", r))
		}
	}()
	return run()
}
