package predict

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
)

var Cmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify images from URLs or local files",
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.StringP("output", "o", OutputTable, "Output format: table or json")
	pflags.Int("concurrency", 4, "Number of predictions running at once")
	pflags.Bool("no-progress", false, "Do not draw a progress bar for multiple inputs")

	viper.BindPFlag("concurrency", pflags.Lookup("concurrency"))

	Cmd.AddCommand(urlCmd, fileCmd)
}

func outputFormat(cmd *cobra.Command) (string, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}

	switch output {
	case OutputTable, OutputJSON:
		return output, nil
	default:
		return "", fmt.Errorf("unknown output format %q, expected %q or %q", output, OutputTable, OutputJSON)
	}
}
