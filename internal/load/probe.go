package load

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// DefaultInterval is the probe tick period when none is configured.
const DefaultInterval = 5 * time.Second

// Sink receives completed load snapshots. Implemented by the server state.
type Sink interface {
	// SetLoad replaces the current load snapshot.
	SetLoad(load *protocol.Load)

	// Broadcast fans a message out to every registered session.
	Broadcast(msg protocol.Message)

	// ActiveTransfers reports the number of in-flight transfers.
	ActiveTransfers() int
}

// SampleFunc reads CPU usage percent and free memory in megabytes.
type SampleFunc func(ctx context.Context) (cpuPercent float64, ramFreeMB uint64, err error)

// Probe periodically samples system load and publishes snapshots to a Sink.
type Probe struct {
	sink     Sink
	interval time.Duration
	sample   SampleFunc
}

// NewProbe creates a probe publishing to sink every interval. Non-positive
// intervals fall back to DefaultInterval.
func NewProbe(sink Sink, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Probe{
		sink:     sink,
		interval: interval,
		sample:   systemSample,
	}
}

// Run samples until ctx is cancelled. A failed sample is logged at debug and
// leaves the previous snapshot in place.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Probe) tick(ctx context.Context) {
	cpuPercent, ramFreeMB, err := p.sample(ctx)
	if err != nil {
		logger.Debug("Load sample failed", logger.Err(err))
		return
	}

	snapshot := protocol.NewLoad(cpuPercent, ramFreeMB, cpuPercent > CPUHighThreshold, Hints(cpuPercent, ramFreeMB))

	p.sink.SetLoad(snapshot)
	p.sink.Broadcast(snapshot)

	logger.Debug(fmt.Sprintf("Load: CPU %.1f%%, RAM free %dMB, %d transfers active",
		cpuPercent, ramFreeMB, p.sink.ActiveTransfers()))
}

// systemSample reads aggregate CPU usage since the previous call and current
// available memory.
func systemSample(ctx context.Context) (float64, uint64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("sample cpu: %w", err)
	}
	if len(percents) == 0 {
		return 0, 0, fmt.Errorf("sample cpu: no data")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("sample memory: %w", err)
	}

	return percents[0], vm.Available / 1024 / 1024, nil
}
