package predict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cozy-creator/dbi/internal/app"
	"github.com/cozy-creator/dbi/internal/batch"
	"github.com/cozy-creator/dbi/internal/imageprep"
	"github.com/cozy-creator/dbi/internal/utils/hashutil"
	"github.com/cozy-creator/dbi/internal/utils/pathutil"
	"github.com/cozy-creator/dbi/pkg/dbi"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var fileCmd = &cobra.Command{
	Use:   "file <path>...",
	Short: "Upload local images for classification",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFile,
}

func init() {
	fileCmd.Flags().Int("max-image-size", 0, "Downscale images so neither side exceeds this many pixels (0 keeps the original)")

	viper.BindPFlag("max_image_size", fileCmd.Flags().Lookup("max-image-size"))
}

func runFile(cmd *cobra.Command, args []string) error {
	return runPredictions(cmd, args, func(app *app.App, path string) batch.Job[*dbi.CommonResponse[dbi.PredictionResponse]] {
		return batch.Job[*dbi.CommonResponse[dbi.PredictionResponse]]{
			Name: path,
			Do: func(ctx context.Context) (*dbi.CommonResponse[dbi.PredictionResponse], error) {
				file, err := loadImage(app.Logger, path, app.Config().MaxImageSize)
				if err != nil {
					return nil, err
				}
				return app.Client().PredictFromFile(ctx, file)
			},
		}
	})
}

func loadImage(log *zap.Logger, path string, maxImageSize int) (dbi.ImageFile, error) {
	expanded, err := pathutil.ExpandPath(path)
	if err != nil {
		return dbi.ImageFile{}, fmt.Errorf("failed to expand path %s: %w", path, err)
	}

	content, err := os.ReadFile(expanded)
	if err != nil {
		return dbi.ImageFile{}, fmt.Errorf("failed to read image: %w", err)
	}

	file, err := imageprep.Prepare(dbi.NewImageFile(filepath.Base(expanded), content), maxImageSize)
	if err != nil {
		return dbi.ImageFile{}, err
	}

	log.Debug("loaded image",
		zap.String("path", expanded),
		zap.String("digest", hashutil.ShortDigest(content)),
		zap.String("mime", imageprep.DetectMIME(file.Content)),
		zap.Int("original_bytes", len(content)),
		zap.Int("upload_bytes", len(file.Content)))

	return file, nil
}
