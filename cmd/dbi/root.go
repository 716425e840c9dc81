package cmd

import (
	"fmt"
	"os"
	"strings"

	// Subcommands
	"github.com/cozy-creator/dbi/cmd/dbi/health"
	"github.com/cozy-creator/dbi/cmd/dbi/predict"
	"github.com/cozy-creator/dbi/cmd/dbi/proxy"
	"github.com/cozy-creator/dbi/internal/config"
	"github.com/cozy-creator/dbi/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dbiPrefix = "DBI"

var Cmd = &cobra.Command{
	Use:   "dbi",
	Short: "Image prediction client",
	Long:  "Classify images with the dbi prediction service, from a URL or a local file, and run the local development proxy",

	SilenceUsage: true,

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(dbiPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(
			`-`, `_`, // convert hyphens to underscores
			`.`, `_`, // convert dots to underscores
		))
		viper.AutomaticEnv()

		if err := config.LoadEnvAndConfigFiles(); err != nil {
			return err
		}

		if _, err := logger.InitLogger(config.GetConfig()); err != nil {
			return fmt.Errorf("error initializing logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func GetRootCmd() *cobra.Command {
	return Cmd
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")
	pflags.String("environment", "", "Environment: production, development or test")
	pflags.String("base-url", "", "Prediction service base URL; overrides the environment default")
	pflags.Bool("strict", false, "Reject responses that are not complete envelopes")

	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))
	viper.BindPFlag("environment", pflags.Lookup("environment"))
	viper.BindPFlag("base_url", pflags.Lookup("base-url"))
	viper.BindPFlag("strict", pflags.Lookup("strict"))

	Cmd.AddCommand(health.Cmd, predict.Cmd, proxy.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
