package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Manage résumé statuses",
}

var statusSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Assign a status to a résumé",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		ctx := cmd.Context()

		clientID, _ := cmd.Flags().GetString("client")
		requirementID, _ := cmd.Flags().GetString("requirement")
		resumeID, _ := cmd.Flags().GetString("resume")
		statusInput, _ := cmd.Flags().GetString("status")

		session := d.newSession()

		if err := openRequirement(ctx, session, clientID, requirementID); err != nil {
			d.fail("opening requirement", err)
		}

		if _, ok := session.Resume(resumeID); !ok {
			d.fail("setting status", fmt.Errorf("resume %q is not listed under requirement %q", resumeID, requirementID))
		}

		statusID := statusInput
		if status, ok := statusByInput(session.Statuses(), statusInput); ok {
			statusID = status.ID
		}

		if err := session.UpdateStatus(ctx, resumeID, statusID); err != nil {
			d.fail("setting status", err, zap.String("resume_id", resumeID), zap.String("status_id", statusID))
		}

		updated, _ := session.Resume(resumeID)
		d.logger.Info("status updated",
			zap.String("resume_id", resumeID),
			zap.String("status", updated.StatusName),
			zap.String("state", session.UpdateState(resumeID).String()),
		)

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", updated.Filename, updated.StatusName)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(statusSetCmd)

	statusSetCmd.Flags().StringP("client", "c", "", "client id")
	statusSetCmd.Flags().StringP("requirement", "r", "", "requirement id")
	statusSetCmd.Flags().String("resume", "", "résumé id")
	statusSetCmd.Flags().StringP("status", "s", "", "status id or name")
	statusSetCmd.MarkFlagRequired("client")
	statusSetCmd.MarkFlagRequired("requirement")
	statusSetCmd.MarkFlagRequired("resume")
}

