package core

import (
	"context"
	"time"
)

// Pacer is the fixed pause taken after every outbound request, successful
// or not. A zero delay disables it.
type Pacer struct {
	Delay time.Duration
}

func (p Pacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
