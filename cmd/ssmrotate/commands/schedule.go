package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	telemetry "github.com/systmms/ssmrotate/internal/metrics"
	"github.com/systmms/ssmrotate/pkg/rotation"
)

// NewScheduleCommand rotates a parameter on a fixed interval until interrupted
func NewScheduleCommand(app *App) *cobra.Command {
	var (
		flags       rotationFlags
		every       time.Duration
		runNow      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "schedule [target]",
		Short: "Rotate a parameter on a fixed interval",
		Long: `Run rotations in the foreground at a fixed interval, the local
equivalent of the five minute EventBridge schedule.

Runs never overlap. A failed rotation is logged and counted, then the
scheduler waits for the next tick. Stop with Ctrl-C.

Examples:
  ssmrotate schedule demo
  ssmrotate schedule --parameter /rotation/demo --every 1m --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.target(app, args)
			if err != nil {
				return err
			}

			interval := every
			if interval == 0 {
				if interval, err = r.Interval(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var metrics *rotation.Metrics
			if metricsAddr != "" {
				metrics = rotation.NewMetrics()
				srv := telemetry.NewServer(telemetry.DefaultServerConfig(metricsAddr), app.Logger())
				if err := srv.Start(); err != nil {
					return fmt.Errorf("failed to start metrics server: %w", err)
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Stop(shutdownCtx)
				}()
			}

			handler, err := buildHandler(ctx, app, r, metrics)
			if err != nil {
				return err
			}

			scheduler, err := rotation.NewScheduler(rotation.SchedulerConfig{
				Rotator:        handler,
				Interval:       interval,
				Clock:          app.Clock,
				Logger:         app.Logger(),
				RunImmediately: runNow,
			})
			if err != nil {
				return err
			}

			if err := scheduler.Run(ctx); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%d rotations, %d failed\n", scheduler.Runs(), scheduler.Failures())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&every, "every", 0, "Rotation interval (default from config, else 5m)")
	cmd.Flags().BoolVar(&runNow, "now", false, "Rotate once immediately before the first interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}
