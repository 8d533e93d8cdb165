package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/workflow"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		ctx := cmd.Context()

		clients, err := d.backend.Clients(ctx)
		if err != nil {
			d.fail("getting clients", err)
		}

		d.logger.Debug("getting clients", zap.Int("count", len(clients)))

		if err := renderClients(cmd.OutOrStdout(), clients); err != nil {
			d.fail("printing clients", err)
		}
	},
}

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "List the résumé status vocabulary",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()

		statuses, err := d.backend.Statuses(cmd.Context())
		if err != nil {
			d.fail("getting statuses", err)
		}

		if err := renderStatuses(cmd.OutOrStdout(), statuses); err != nil {
			d.fail("printing statuses", err)
		}
	},
}

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "List the requirements of a client",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		clientID, _ := cmd.Flags().GetString("client")

		requirements, err := d.backend.Requirements(cmd.Context(), clientID)
		if err != nil {
			d.fail("getting requirements", err, zap.String("client_id", clientID))
		}

		if err := renderRequirements(cmd.OutOrStdout(), requirements); err != nil {
			d.fail("printing requirements", err)
		}
	},
}

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "List the résumés of a requirement",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		ctx := cmd.Context()

		clientID, _ := cmd.Flags().GetString("client")
		requirementID, _ := cmd.Flags().GetString("requirement")
		sortFlag, _ := cmd.Flags().GetString("sort")
		statusFlag, _ := cmd.Flags().GetString("status")
		filename, _ := cmd.Flags().GetString("filename")

		session := d.newSession()
		defer session.Close(context.Background())

		if err := openRequirement(ctx, session, clientID, requirementID); err != nil {
			d.fail("opening requirement", err)
		}

		if statusFlag != "" {
			statusID := statusFlag
			if statusFlag != filtering.Unassigned {
				status, ok := statusByInput(session.Statuses(), statusFlag)
				if !ok {
					d.fail("selecting status filter", workflow.ErrUnknownStatus, zap.String("status", statusFlag))
				}
				statusID = status.ID
			}
			if err := session.SelectStatusFilter(statusID); err != nil {
				d.fail("selecting status filter", err)
			}
		}

		if sortFlag != "" {
			direction, err := workflow.ParseDirection(sortFlag)
			if err != nil {
				d.fail("sorting resumes", err)
			}
			if err := session.Sort(direction); err != nil {
				d.fail("sorting resumes", err)
			}
		}

		byFilename := filtering.NewByFilename(filename)
		for _, f := range filtering.Describe(session.Filters(byFilename)) {
			d.logger.Debug("resume filter",
				zap.String("name", f.Name),
				zap.Bool("enabled", f.Enabled),
				zap.String("reason", f.Reason),
				zap.Any("details", f.Details),
			)
		}

		resumes, err := session.Resumes(ctx, byFilename)
		if err != nil {
			d.fail("filtering resumes", err)
		}

		d.logger.Info("current list of resumes",
			zap.Int("count", len(resumes)),
			zap.Int("total", len(session.AllResumes())),
		)

		if err := renderResumes(cmd.OutOrStdout(), resumes); err != nil {
			d.fail("printing resumes", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd, statusesCmd, requirementsCmd, resumesCmd)

	requirementsCmd.Flags().StringP("client", "c", "", "client id")
	requirementsCmd.MarkFlagRequired("client")

	resumesCmd.Flags().StringP("client", "c", "", "client id")
	resumesCmd.Flags().StringP("requirement", "r", "", "requirement id")
	resumesCmd.Flags().String("sort", "", "order by upload time: asc or desc")
	resumesCmd.Flags().StringP("status", "s", "", "show only résumés with this status id or name ('"+filtering.Unassigned+"' for none)")
	resumesCmd.Flags().StringP("filename", "f", "", "show only résumés whose filename contains this text")
	resumesCmd.MarkFlagRequired("client")
	resumesCmd.MarkFlagRequired("requirement")
}

// openRequirement starts the session and walks the selection down to one requirement.
func openRequirement(ctx context.Context, session *workflow.Session, clientID, requirementID string) error {
	if err := session.Start(ctx); err != nil {
		return err
	}
	if err := session.SelectClient(ctx, clientID); err != nil {
		return err
	}
	return session.SelectRequirement(ctx, requirementID)
}

// fail logs the error with its user-facing message and exits.
func (d *deps) fail(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("message", workflow.UserMessage(err)))
	d.logger.Error(msg, fields...)
	_ = d.logger.Sync()
	os.Exit(1)
}
