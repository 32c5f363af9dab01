package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

// NewParamCommand groups the publish/resolve helpers
func NewParamCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "param",
		Short: "Read and publish parameters",
		Long: `Publish identifiers into Parameter Store and resolve them by name.

Producers write values such as table ARNs under a well known name and
consumers read them at run time, instead of wiring stack outputs.`,
	}

	cmd.AddCommand(newParamGetCommand(app), newParamPutCommand(app))
	return cmd
}

func newParamGetCommand(app *App) *cobra.Command {
	var (
		decrypt    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print a parameter value",
		Long: `Print the value of a parameter to stdout.

Examples:
  ssmrotate param get /data/table-arn
  export TABLE_ARN=$(ssmrotate param get /data/table-arn)
  ssmrotate param get /rotation/demo --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := app.loadConfigIfPresent(); err != nil {
				return err
			}

			store, err := app.store(ctx, decrypt)
			if err != nil {
				return err
			}

			param, err := store.Get(ctx, args[0])
			if err != nil {
				return paramError("read", args[0], err)
			}

			if !jsonOutput {
				printf(cmd.OutOrStdout(), "%s", param.Value)
				return nil
			}

			output := map[string]interface{}{
				"name":    param.Name,
				"value":   param.Value,
				"type":    param.Type,
				"version": param.Version,
			}
			if !param.LastModified.IsZero() {
				output["last_modified"] = param.LastModified
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(output); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&decrypt, "decrypt", true, "Decrypt SecureString values")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format with metadata")
	return cmd
}

func newParamPutCommand(app *App) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "put <name> <value>",
		Short: "Publish a parameter value",
		Long: `Write a value to a parameter. Without --overwrite the write fails if the
parameter already exists.

Examples:
  ssmrotate param put /data/table-arn arn:aws:dynamodb:eu-west-1:123456789012:table/data
  ssmrotate param put /rotation/demo 2024-01-01T00:00:00.000Z --overwrite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := app.loadConfigIfPresent(); err != nil {
				return err
			}

			store, err := app.store(ctx, false)
			if err != nil {
				return err
			}

			result, err := store.Put(ctx, args[0], args[1], overwrite)
			if err != nil {
				return paramError("write", args[0], err)
			}

			printf(cmd.OutOrStdout(), "Wrote %s (version %d)\n", args[0], result.Version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing value")
	return cmd
}

func paramError(action, name string, err error) error {
	suggestion := rotateSuggestion(err)
	if paramstore.KindOf(err) == "exists" {
		suggestion = "Pass --overwrite to replace the existing value"
	}
	return dserrors.UserError{
		Message:    fmt.Sprintf("Failed to %s parameter %s", action, name),
		Details:    err.Error(),
		Suggestion: suggestion,
		Err:        err,
	}
}
