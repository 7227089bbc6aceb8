package ai

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetlens/internal/app"
	"github.com/klytics/sheetlens/internal/progress"
)

func newAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question> <file>",
		Short: "Ask a question about a workbook",
		Long:  "Sends the question along with the workbook preview (capped at preview.ask_rows data rows per sheet) and prints the model's answer.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			question := args[0]

			data, err := readWorkbook(args[1])
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
			res, err := a.Service.Ask(cmd.Context(), data, question)
			spin.Stop("")
			if err != nil {
				return err
			}

			return writeResult(os.Stdout, jsonFlag, "answer", res, map[string]any{"question": question})
		},
	}

	return cmd
}
