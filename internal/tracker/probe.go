package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// Probe reports what the user is doing right now as an activity tag.
type Probe interface {
	Sample(ctx context.Context) (string, error)
}

// CPUProbe tags the machine active when overall CPU utilisation over
// Window exceeds ThresholdPercent.
type CPUProbe struct {
	Window           time.Duration
	ThresholdPercent float64
	ActiveTag        string
	IdleTag          string

	percent func(ctx context.Context, interval time.Duration, perCPU bool) ([]float64, error)
}

// NewCPUProbe returns a CPUProbe backed by gopsutil.
func NewCPUProbe(window time.Duration, thresholdPercent float64, activeTag, idleTag string) *CPUProbe {
	return &CPUProbe{
		Window:           window,
		ThresholdPercent: thresholdPercent,
		ActiveTag:        activeTag,
		IdleTag:          idleTag,
		percent:          cpu.PercentWithContext,
	}
}

// Sample blocks for Window, or until ctx is done.
func (p *CPUProbe) Sample(ctx context.Context) (string, error) {
	pct, err := p.percent(ctx, p.Window, false)
	if err != nil {
		return "", fmt.Errorf("sample cpu: %w", err)
	}
	if len(pct) == 0 {
		return "", fmt.Errorf("sample cpu: no reading")
	}
	if pct[0] > p.ThresholdPercent {
		return p.ActiveTag, nil
	}
	return p.IdleTag, nil
}
