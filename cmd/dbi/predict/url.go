package predict

import (
	"context"
	"fmt"
	"strings"

	"github.com/cozy-creator/dbi/internal/app"
	"github.com/cozy-creator/dbi/internal/batch"
	"github.com/cozy-creator/dbi/pkg/dbi"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url <image-url>...",
	Short: "Classify images by URL",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runURL,
}

func init() {
	urlCmd.Flags().Bool("skip-validation", false, "Send URLs even if they do not look like image links")
}

func runURL(cmd *cobra.Command, args []string) error {
	skipValidation, err := cmd.Flags().GetBool("skip-validation")
	if err != nil {
		return err
	}

	if !skipValidation {
		invalid := lo.Filter(args, func(u string, _ int) bool {
			return !dbi.ValidateImageURL(u)
		})
		if len(invalid) > 0 {
			return fmt.Errorf("not an image url: %s", strings.Join(invalid, ", "))
		}
	}

	return runPredictions(cmd, args, func(app *app.App, imageURL string) batch.Job[*dbi.CommonResponse[dbi.PredictionResponse]] {
		return batch.Job[*dbi.CommonResponse[dbi.PredictionResponse]]{
			Name: imageURL,
			Do: func(ctx context.Context) (*dbi.CommonResponse[dbi.PredictionResponse], error) {
				return app.Client().PredictFromURL(ctx, imageURL)
			},
		}
	})
}
