package ai

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetlens/internal/app"
	"github.com/klytics/sheetlens/internal/progress"
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Summarize trends, insights and anomalies in a workbook",
		Long:  "Sends every sheet of the workbook (capped at preview.analyze_rows data rows each) to the model and prints its analysis. Pass '-' to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			data, err := readWorkbook(args[0])
			if err != nil {
				return err
			}

			a, err := app.FromCommand(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			spin := progress.NewSpinner("Waiting for "+a.Provider.Name(), jsonFlag)
			spin.Start()
			res, err := a.Service.Analyze(cmd.Context(), data)
			spin.Stop("")
			if err != nil {
				return err
			}

			return writeResult(os.Stdout, jsonFlag, "analysis", res, nil)
		},
	}

	return cmd
}
