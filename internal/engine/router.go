package engine

import (
	"context"
	"sync"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
)

// target is one (placement, module type) pair a channel routes to.
type target struct {
	placementID string
	moduleType  string
}

// buildChannelMap derives the channel handler map for one track: every
// channel with a non-empty method list on a placement routes to that
// placement, in track placement order. The map is cached for the lifetime
// of the activation and cleared on deactivation.
func buildChannelMap(track *config.Track) map[string][]target {
	m := make(map[string][]target)
	for _, p := range track.Placements {
		data := track.Data[p.ID]
		if data == nil {
			continue
		}
		for channel, calls := range data.ChannelMethods {
			if len(calls) == 0 {
				continue
			}
			m[channel] = append(m[channel], target{placementID: p.ID, moduleType: p.ModuleType})
		}
	}
	return m
}

// Trigger routes a numeric trigger channel to its targets on the active
// track and schedules their method batches. The channel identifier is an
// opaque map key; no musical interpretation happens here. Unknown channels
// and triggers with no active track log a warning and settle immediately.
func (e *Engine) Trigger(ctx context.Context, channel string) *Batch {
	logger := ctxlog.FromContext(ctx)

	e.mu.Lock()
	track := e.track
	targets := e.channels[channel]
	e.mu.Unlock()

	if track == nil {
		logger.Warn("Trigger received with no active track.", "channel", channel)
		return completedBatch(nil)
	}
	if len(targets) == 0 {
		logger.Warn("Channel has no mapped targets.", "channel", channel, "track", track.Name)
		e.debugf(ctx, "channel %s: no targets", channel)
		return completedBatch(nil)
	}

	e.debugf(ctx, "channel %s: %d target placement(s)", channel, len(targets))
	return e.submit(ctx, func(ctx context.Context) error {
		var wg sync.WaitGroup
		for _, t := range targets {
			t := t
			p := trackPlacement(track, t.placementID)
			data := track.Data[t.placementID]
			if p == nil || data == nil {
				continue
			}
			calls := data.ChannelMethods[channel]
			wg.Add(1)
			go func() {
				defer wg.Done()
				factory, err := e.reg.Resolve(ctx, t.moduleType)
				if err != nil {
					ctxlog.FromContext(ctx).Warn("Module unavailable for trigger.",
						"placement", t.placementID, "module", t.moduleType, "error", err)
					return
				}
				e.runBatch(ctx, track, p, factory, calls, false)
			}()
		}
		wg.Wait()
		return nil
	})
}

// trackPlacement finds a placement by id within one track.
func trackPlacement(track *config.Track, placementID string) *config.Placement {
	for _, p := range track.Placements {
		if p.ID == placementID {
			return p
		}
	}
	return nil
}
