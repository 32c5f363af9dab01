package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/internal/providers"
)

// NewSecretCommand groups Secrets Manager operations
func NewSecretCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage Secrets Manager rotation",
	}
	cmd.AddCommand(newSecretRotateCommand(app))
	return cmd
}

func newSecretRotateCommand(app *App) *cobra.Command {
	var (
		token     string
		scheduled bool
	)

	cmd := &cobra.Command{
		Use:   "rotate <secret-id>",
		Short: "Start rotation of a secret",
		Long: `Ask Secrets Manager to run the secret's rotation function now.

The client request token becomes the id of the new secret version. A random
UUID is used unless --token is given, which makes retries idempotent.

Examples:
  ssmrotate secret rotate app/db-password
  ssmrotate secret rotate app/db-password --token 6f1c1a44-7f55-4b63-9f1f-3d1f9b0c2e11`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := app.loadConfigIfPresent(); err != nil {
				return err
			}

			if token == "" {
				token = uuid.NewString()
			} else if _, err := uuid.Parse(token); err != nil {
				return dserrors.ConfigError{
					Field:      "token",
					Value:      token,
					Message:    "client request token must be a UUID",
					Suggestion: "Omit --token to generate one",
				}
			}

			client, err := app.NewSecretsManager(ctx)
			if err != nil {
				return err
			}

			app.Logger().Debug("Starting rotation of %s with token %s", args[0], token)
			version, err := providers.StartRotation(ctx, client, args[0], token, !scheduled)
			if err != nil {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Failed to start rotation of %s", args[0]),
					Details:    err.Error(),
					Suggestion: "Check that the secret has a rotation function configured and that you may call secretsmanager:RotateSecret",
					Err:        err,
				}
			}

			printf(cmd.OutOrStdout(), "Rotation of %s started (version %s)\n", args[0], version)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Client request token (UUID)")
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "Wait for the next rotation window instead of rotating immediately")
	return cmd
}
