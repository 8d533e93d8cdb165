package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/recruit"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals of clients, requirements and résumés",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()

		startFlag, _ := cmd.Flags().GetString("start")
		endFlag, _ := cmd.Flags().GetString("end")

		start, err := recruit.ParseDate(startFlag)
		if err != nil {
			d.fail("parsing --start", err)
		}
		end, err := recruit.ParseDate(endFlag)
		if err != nil {
			d.fail("parsing --end", err)
		}

		summary, err := d.backend.SummaryCounts(cmd.Context(), start, end)
		if err != nil {
			d.fail("getting summary", err, zap.String("start", startFlag), zap.String("end", endFlag))
		}

		if err := renderSummary(cmd.OutOrStdout(), summary); err != nil {
			d.fail("printing summary", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().String("start", "", "count records created on or after this date (YYYY-MM-DD)")
	summaryCmd.Flags().String("end", "", "count records created on or before this date (YYYY-MM-DD)")
}
