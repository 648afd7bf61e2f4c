// Package midibridge feeds normalized MIDI input events into the engine's
// control surface: note-on events become channel triggers (the note number
// as a decimal string), and notes mapped in the track table become track
// activations. The hardware driver side lives entirely in gomidi; the
// engine never sees a MIDI message.
package midibridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/engine"
)

// Control is the subset of engine operations the bridge drives.
type Control interface {
	Trigger(ctx context.Context, channel string) *engine.Batch
	ActivateTrack(ctx context.Context, name string) *engine.Batch
}

// Bridge is one open MIDI input feeding a Control.
type Bridge struct {
	in   drivers.In
	stop func()
}

// Open finds the input port whose name contains portName (case-insensitive)
// and starts listening. trackNotes maps note numbers to track names; every
// other note-on becomes a channel trigger.
func Open(ctx context.Context, portName string, ctrl Control, trackNotes map[uint8]string) (*Bridge, error) {
	logger := ctxlog.FromContext(ctx)

	var in drivers.In
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), strings.ToLower(portName)) {
			in = port
			break
		}
	}
	if in == nil {
		return nil, fmt.Errorf("no MIDI input port matching %q", portName)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var channel, note, velocity uint8
		if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
			return
		}
		if track, ok := trackNotes[note]; ok {
			logger.Debug("MIDI track select.", "note", note, "track", track)
			ctrl.ActivateTrack(ctx, track)
			return
		}
		ctrl.Trigger(ctx, strconv.Itoa(int(note)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on MIDI port %q: %w", in.String(), err)
	}

	logger.Info("MIDI bridge listening.", "port", in.String(), "trackNotes", len(trackNotes))
	return &Bridge{in: in, stop: stop}, nil
}

// Close stops listening.
func (b *Bridge) Close() {
	if b.stop != nil {
		b.stop()
	}
	midi.CloseDriver()
}
