package health

import (
	"encoding/json"
	"fmt"

	"github.com/cozy-creator/dbi/internal/app"
	"github.com/cozy-creator/dbi/internal/config"
	"github.com/cozy-creator/dbi/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the prediction service is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(config.GetConfig(), app.WithContext(cmd.Context()), app.WithLogger(logger.GetLogger()))
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Client().CheckHealth(a.Context())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	a.Logger.Debug("health check",
		zap.Int("status", resp.Status),
		zap.Bool("success", resp.Success))

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
