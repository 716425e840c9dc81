package predict

import (
	"fmt"

	"github.com/cozy-creator/dbi/internal/app"
	"github.com/cozy-creator/dbi/internal/batch"
	"github.com/cozy-creator/dbi/internal/config"
	"github.com/cozy-creator/dbi/pkg/dbi"
	"github.com/cozy-creator/dbi/pkg/logger"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type prediction = *dbi.CommonResponse[dbi.PredictionResponse]

type jobFactory func(app *app.App, input string) batch.Job[prediction]

func runPredictions(cmd *cobra.Command, inputs []string, newJob jobFactory) error {
	output, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	noProgress, err := cmd.Flags().GetBool("no-progress")
	if err != nil {
		return err
	}

	options := []app.OptionFunc{
		app.WithContext(cmd.Context()),
		app.WithLogger(logger.GetLogger()),
	}
	if len(inputs) > 1 && !noProgress {
		options = append(options, app.WithProgress(cmd.ErrOrStderr()))
	}

	a, err := app.NewApp(config.GetConfig(), options...)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs := lo.Map(inputs, func(input string, _ int) batch.Job[prediction] {
		return newJob(a, input)
	})

	results := batch.Run(a.Context(), a.Runner(), jobs)

	switch output {
	case OutputJSON:
		err = renderJSON(cmd.OutOrStdout(), results)
	default:
		renderTable(cmd.OutOrStdout(), results)
	}
	if err != nil {
		return err
	}

	failed := lo.CountBy(results, func(r batch.Result[prediction]) bool {
		return r.Err != nil
	})
	if failed > 0 {
		return fmt.Errorf("%d of %d predictions failed", failed, len(results))
	}

	return nil
}
