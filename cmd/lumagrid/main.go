// Command lumagrid runs the live visual-performance runtime: it loads the
// show configuration, registers the built-in renderer modules, and serves
// trigger input until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumagrid/lumagrid/internal/app"
	"github.com/lumagrid/lumagrid/internal/hcl"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &app.Config{}

	cmd := &cobra.Command{
		Use:           "lumagrid",
		Short:         "Live visual-performance runtime",
		Long:          "lumagrid assembles pluggable renderer modules into tracks and animates them from real-time trigger events.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loader := hcl.NewLoader()
			application, err := app.New(os.Stderr, cfg, loader)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.ShowPath, "show", "./show", "path to the show configuration (.hcl files)")
	flags.StringVar(&cfg.InitialTrack, "track", "", "track to activate on startup")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&cfg.LogFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&cfg.StatusAddr, "status-addr", "", "listen address for the websocket status hub (empty disables)")
	flags.StringVar(&cfg.MIDIPort, "midi-port", "", "substring of the MIDI input port to listen on (empty disables)")
	flags.StringVar(&cfg.Policy, "trigger-policy", "last-wins", "overlapping batch policy: last-wins or serialize")
	flags.Int64Var(&cfg.Seed, "seed", 0, "random seed for option randomization (0 uses a time seed)")
	flags.IntVar(&cfg.FPS, "fps", 60, "frame rate for construction batching")

	return cmd
}
