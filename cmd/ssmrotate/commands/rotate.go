package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmrotate/internal/config"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/pkg/rotation"
)

// rotationFlags are shared by rotate and schedule
type rotationFlags struct {
	parameter string
	generator string
	length    int
	charset   string
}

func (f *rotationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.parameter, "parameter", "", "Parameter name (instead of a configured target)")
	cmd.Flags().StringVar(&f.generator, "generator", "", "Value generator: timestamp, random or secretsmanager")
	cmd.Flags().IntVar(&f.length, "length", 0, "Length of generated secrets")
	cmd.Flags().StringVar(&f.charset, "charset", "", "Characters used by the random generator")
}

// target resolves a configured target name or the --parameter flag into a
// rotation definition. Flags override the configured values.
func (f *rotationFlags) target(app *App, args []string) (config.Rotation, error) {
	var r config.Rotation

	switch {
	case len(args) == 1:
		if err := app.Config.Load(); err != nil {
			return r, err
		}
		found, err := app.Config.GetRotation(args[0])
		if err != nil {
			return r, err
		}
		r = found
	case f.parameter != "":
		if err := app.loadConfigIfPresent(); err != nil {
			return r, err
		}
		r.Parameter = f.parameter
	default:
		return r, dserrors.UserError{
			Message:    "No rotation target given",
			Suggestion: "Pass a target from ssmrotate.yaml or use --parameter <name>",
		}
	}

	if f.generator != "" {
		r.Generator = f.generator
	}
	if f.length != 0 {
		r.Length = f.length
	}
	if f.charset != "" {
		r.Charset = f.charset
	}
	return r, nil
}

// buildHandler creates a parameter handler for r
func buildHandler(ctx context.Context, app *App, r config.Rotation, metrics *rotation.Metrics) (*rotation.ParameterHandler, error) {
	var passwords rotation.PasswordAPI
	if r.Generator == rotation.GeneratorSecretsManager {
		client, err := app.NewSecretsManager(ctx)
		if err != nil {
			return nil, err
		}
		passwords = client
	}

	gen, err := rotation.NewGenerator(r.GeneratorConfig(), passwords)
	if err != nil {
		return nil, dserrors.ConfigError{
			Field:      "generator",
			Value:      r.Generator,
			Message:    err.Error(),
			Suggestion: "Use one of: timestamp, random, secretsmanager",
		}
	}

	store, err := app.store(ctx, false)
	if err != nil {
		return nil, err
	}

	return rotation.NewParameterHandler(rotation.HandlerConfig{
		Parameter: r.Parameter,
		Store:     store,
		Generator: gen,
		Clock:     app.Clock,
		Logger:    app.Logger(),
		Metrics:   metrics,
	})
}

// NewRotateCommand rotates a parameter once
func NewRotateCommand(app *App) *cobra.Command {
	var flags rotationFlags

	cmd := &cobra.Command{
		Use:   "rotate [target]",
		Short: "Rotate a parameter once",
		Long: `Replace the value of an SSM parameter with a freshly generated value.

The parameter must already exist; rotation never creates it. By default the
new value is the current UTC time (2006-01-02T15:04:05.000Z).

Examples:
  # Rotate a target defined in ssmrotate.yaml
  ssmrotate rotate demo

  # Rotate a parameter directly with a random 48 character value
  ssmrotate rotate --parameter /app/api-key --generator random --length 48`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.target(app, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			handler, err := buildHandler(ctx, app, r, nil)
			if err != nil {
				return err
			}

			result, err := handler.Rotate(ctx)
			if err != nil {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Failed to rotate %s", r.Parameter),
					Details:    err.Error(),
					Suggestion: rotateSuggestion(err),
					Err:        err,
				}
			}

			printf(cmd.OutOrStdout(), "Rotated %s (version %d -> %d) at %s\n",
				result.Target, result.PreviousVersion, result.Version, result.RotatedAt.Format(time.RFC3339))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
