package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmrotate/internal/config"
	"github.com/systmms/ssmrotate/internal/logging"
)

// BuildInfo is stamped at link time
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand assembles the ssmrotate command tree around app
func NewRootCommand(app *App, info BuildInfo) *cobra.Command {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	if app.Config == nil {
		app.Config = &config.Config{}
	}

	rootCmd := &cobra.Command{
		Use:   "ssmrotate",
		Short: "Rotate SSM parameters and Secrets Manager secrets",
		Long: `ssmrotate replaces Parameter Store values with freshly generated ones,
drives Secrets Manager rotation, and publishes infrastructure identifiers
such as VPC endpoint addresses into Parameter Store.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.Config.Path = configFile
			if app.Config.Logger == nil {
				app.Config.Logger = logging.New(debug, noColor)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&app.Region, "region", "", "AWS region (overrides config and environment)")
	rootCmd.PersistentFlags().StringVar(&app.Profile, "profile", "", "AWS shared config profile")

	rootCmd.AddCommand(
		NewRotateCommand(app),
		NewScheduleCommand(app),
		NewParamCommand(app),
		NewSecretCommand(app),
		NewEndpointIPsCommand(app),
		NewDoctorCommand(app),
		NewCompletionCommand(),
	)

	return rootCmd
}
