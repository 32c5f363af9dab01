package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/pkg/vpcendpoint"
)

// NewEndpointIPsCommand prints the private IPs of an interface VPC endpoint
func NewEndpointIPsCommand(app *App) *cobra.Command {
	var (
		publish   string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "endpoint-ips <vpc-endpoint-id>",
		Short: "Print the private IPs of a VPC endpoint",
		Long: `Look up the network interfaces of an interface VPC endpoint and print
their private IP addresses, one per availability zone, comma separated.

With --publish the list is also written to a parameter so other stacks can
resolve it by name.

Examples:
  ssmrotate endpoint-ips vpce-0123456789abcdef0
  ssmrotate endpoint-ips vpce-0123456789abcdef0 --publish /network/api-endpoint-ips`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := app.loadConfigIfPresent(); err != nil {
				return err
			}

			client, err := app.NewEC2(ctx)
			if err != nil {
				return err
			}

			ips, err := vpcendpoint.NewResolver(client, app.Logger()).PrivateIPs(ctx, args[0])
			if err != nil {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Failed to resolve %s", args[0]),
					Details:    err.Error(),
					Suggestion: "Check the endpoint id and that it is an Interface endpoint. Requires ec2:DescribeVpcEndpoints and ec2:DescribeNetworkInterfaces",
					Err:        err,
				}
			}

			joined := strings.Join(ips, ",")
			printf(cmd.OutOrStdout(), "%s\n", joined)

			if publish == "" {
				return nil
			}

			store, err := app.store(ctx, false)
			if err != nil {
				return err
			}
			result, err := store.Put(ctx, publish, joined, overwrite)
			if err != nil {
				return paramError("write", publish, err)
			}
			app.Logger().Info("Published %d addresses to %s (version %d)", len(ips), publish, result.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&publish, "publish", "", "Write the address list to this parameter")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Replace an existing published value")
	return cmd
}
