package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/midibridge"
)

// Run starts the status hub and MIDI bridge, optionally activates the
// initial track, and blocks until ctx is cancelled. Shutdown tears the
// engine down and releases every collaborator.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var statusServer *http.Server
	if a.hub != nil {
		mux := http.NewServeMux()
		mux.Handle("/ws", a.hub)
		statusServer = &http.Server{Addr: a.cfg.StatusAddr, Handler: mux}
		go func() {
			a.logger.Info("Status hub listening.", "addr", a.cfg.StatusAddr)
			if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Status hub server failed.", "error", err)
			}
		}()
	}

	if a.cfg.MIDIPort != "" {
		bridge, err := midibridge.Open(ctx, a.cfg.MIDIPort, a.engine, nil)
		if err != nil {
			a.logger.Error("MIDI bridge unavailable, triggers must come from another surface.", "error", err)
		} else {
			defer bridge.Close()
		}
	}

	if a.cfg.InitialTrack != "" {
		if err := a.engine.ActivateTrack(ctx, a.cfg.InitialTrack).Wait(ctx); err != nil {
			a.logger.Error("Initial track activation failed.", "track", a.cfg.InitialTrack, "error", err)
		}
	}

	<-ctx.Done()
	a.logger.Info("Shutting down.")

	shutdownCtx, cancel := context.WithTimeout(ctxlog.WithLogger(context.Background(), a.logger), 5*time.Second)
	defer cancel()
	if err := a.engine.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Engine shutdown reported an error.", "error", err)
	}
	a.frames.Close()
	if statusServer != nil {
		_ = statusServer.Shutdown(shutdownCtx)
	}
	if a.hub != nil {
		a.hub.Close()
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
