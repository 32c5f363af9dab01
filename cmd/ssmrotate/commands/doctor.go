package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmrotate/internal/providers"
)

// TargetHealth is the doctor result for one rotation target
type TargetHealth struct {
	Name      string
	Parameter string
	Status    string
	Message   string
}

func NewDoctorCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check AWS access and configured rotation targets",
		Long: `Verify that ssmrotate can reach AWS and rotate the configured targets.

This command checks:
- Configuration file validity (when present)
- The identity the credentials resolve to
- Access to Parameter Store
- That every configured target parameter exists`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()
			logger := app.Logger()

			logger.Info("Checking ssmrotate configuration...")
			if err := app.loadConfigIfPresent(); err != nil {
				logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to load config: %w", err)
			}
			if app.Config.Definition != nil {
				printf(out, "✓ Configuration loaded (%d rotation targets)\n", len(app.Config.RotationNames()))
			} else {
				printf(out, "- No configuration file at %s\n", app.Config.Path)
			}

			stsClient, err := app.NewSTS(ctx)
			if err != nil {
				return err
			}
			identity, err := providers.CallerIdentity(ctx, stsClient)
			if err != nil {
				printf(out, "✗ AWS credentials\n")
				return err
			}
			printf(out, "✓ AWS identity %s (account %s)\n", identity.ARN, identity.Account)

			store, err := app.store(ctx, false)
			if err != nil {
				return err
			}
			if err := store.Validate(ctx); err != nil {
				printf(out, "✗ Parameter Store access\n")
				return err
			}
			printf(out, "✓ Parameter Store reachable\n")

			results := checkTargets(ctx, app, store)
			if len(results) == 0 {
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TARGET\tPARAMETER\tSTATUS\tMESSAGE")
			failed := 0
			for _, r := range results {
				if r.Status != "ok" {
					failed++
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.Parameter, r.Status, r.Message)
			}
			_ = w.Flush()

			if failed > 0 {
				return fmt.Errorf("%d of %d rotation targets are not ready", failed, len(results))
			}
			return nil
		},
	}

	return cmd
}

func checkTargets(ctx context.Context, app *App, store *providers.SSMStore) []TargetHealth {
	var results []TargetHealth
	for _, name := range app.Config.RotationNames() {
		r, _ := app.Config.GetRotation(name)
		health := TargetHealth{Name: name, Parameter: r.Parameter}

		meta, err := store.Describe(ctx, r.Parameter)
		switch {
		case err != nil:
			health.Status = "error"
			health.Message = err.Error()
		case !meta.Exists:
			health.Status = "missing"
			health.Message = "parameter does not exist; rotation will fail"
		default:
			health.Status = "ok"
			health.Message = fmt.Sprintf("%s, version %d", meta.Type, meta.Version)
		}
		results = append(results, health)
	}
	return results
}
