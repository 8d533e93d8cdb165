package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/recruit"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload résumés and job descriptions",
}

var uploadResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Upload a résumé for a requirement",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		ctx := cmd.Context()

		clientID, _ := cmd.Flags().GetString("client")
		requirementID, _ := cmd.Flags().GetString("requirement")
		path, _ := cmd.Flags().GetString("file")

		file, err := readUpload(path)
		if err != nil {
			d.fail("reading file", err, zap.String("file", path))
		}

		client, requirement, err := uploadTarget(ctx, d.backend, clientID, requirementID)
		if err != nil {
			d.fail("resolving upload target", err)
		}

		result, err := d.backend.UploadResume(ctx, client.Name, requirement.Name(), file)
		if err != nil {
			d.fail("uploading resume", err, zap.String("file", file.Filename))
		}

		d.logger.Info("resume uploaded", zap.String("file", result.Filename), zap.String("requirement_id", requirement.ID))
		printUploaded(cmd, result)
	},
}

var uploadRequirementCmd = &cobra.Command{
	Use:     "jd",
	Aliases: []string{"requirement"},
	Short:   "Upload a job description for a client",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		ctx := cmd.Context()

		clientID, _ := cmd.Flags().GetString("client")
		path, _ := cmd.Flags().GetString("file")

		file, err := readUpload(path)
		if err != nil {
			d.fail("reading file", err, zap.String("file", path))
		}

		client, _, err := uploadTarget(ctx, d.backend, clientID, "")
		if err != nil {
			d.fail("resolving upload target", err)
		}

		result, err := d.backend.UploadRequirement(ctx, client.Name, file)
		if err != nil {
			d.fail("uploading job description", err, zap.String("file", file.Filename))
		}

		d.logger.Info("job description uploaded", zap.String("file", result.Filename), zap.String("client_id", client.ID))
		printUploaded(cmd, result)
	},
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Add or remove clients",
}

var clientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a client",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		name, _ := cmd.Flags().GetString("name")

		id, err := d.backend.CreateClient(cmd.Context(), name)
		if err != nil {
			d.fail("creating client", err, zap.String("name", name))
		}

		d.logger.Info("client created", zap.String("name", name), zap.String("client_id", id))
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, name)
	},
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a client",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		id, _ := cmd.Flags().GetString("client")

		if err := d.backend.DeleteClient(cmd.Context(), id); err != nil {
			d.fail("deleting client", err, zap.String("client_id", id))
		}

		d.logger.Info("client deleted", zap.String("client_id", id))
	},
}

var requirementCmd = &cobra.Command{
	Use:   "requirement",
	Short: "Manage requirements",
}

var requirementDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a requirement",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		id, _ := cmd.Flags().GetString("requirement")

		if err := d.backend.DeleteRequirement(cmd.Context(), id); err != nil {
			d.fail("deleting requirement", err, zap.String("requirement_id", id))
		}

		d.logger.Info("requirement deleted", zap.String("requirement_id", id))
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd, clientCmd, requirementCmd)
	uploadCmd.AddCommand(uploadResumeCmd, uploadRequirementCmd)
	clientCmd.AddCommand(clientCreateCmd, clientDeleteCmd)
	requirementCmd.AddCommand(requirementDeleteCmd)

	uploadResumeCmd.Flags().StringP("client", "c", "", "client id")
	uploadResumeCmd.Flags().StringP("requirement", "r", "", "requirement id")
	uploadResumeCmd.Flags().StringP("file", "f", "", "PDF or Word file to upload")
	uploadResumeCmd.MarkFlagRequired("client")
	uploadResumeCmd.MarkFlagRequired("requirement")
	uploadResumeCmd.MarkFlagRequired("file")

	uploadRequirementCmd.Flags().StringP("client", "c", "", "client id")
	uploadRequirementCmd.Flags().StringP("file", "f", "", "PDF or Word file to upload")
	uploadRequirementCmd.MarkFlagRequired("client")
	uploadRequirementCmd.MarkFlagRequired("file")

	clientCreateCmd.Flags().StringP("name", "n", "", "client name")
	clientCreateCmd.MarkFlagRequired("name")

	clientDeleteCmd.Flags().StringP("client", "c", "", "client id")
	clientDeleteCmd.MarkFlagRequired("client")

	requirementDeleteCmd.Flags().StringP("requirement", "r", "", "requirement id")
	requirementDeleteCmd.MarkFlagRequired("requirement")
}

type directory interface {
	Clients(ctx context.Context) (recruit.Clients, error)
	Requirements(ctx context.Context, clientID string) (recruit.Requirements, error)
}

// uploadTarget resolves ids to the client name and job description filename the upload
// endpoints expect. An empty requirementID resolves only the client.
func uploadTarget(ctx context.Context, dir directory, clientID, requirementID string) (recruit.Client, recruit.Requirement, error) {
	clients, err := dir.Clients(ctx)
	if err != nil {
		return recruit.Client{}, recruit.Requirement{}, err
	}

	client, ok := clients.FindByID(clientID)
	if !ok {
		return recruit.Client{}, recruit.Requirement{}, fmt.Errorf("client %q not found", clientID)
	}

	if requirementID == "" {
		return client, recruit.Requirement{}, nil
	}

	requirements, err := dir.Requirements(ctx, client.ID)
	if err != nil {
		return recruit.Client{}, recruit.Requirement{}, err
	}

	requirement, ok := requirements.FindByID(requirementID)
	if !ok {
		return recruit.Client{}, recruit.Requirement{}, fmt.Errorf("requirement %q not found for client %q", requirementID, client.Name)
	}

	return client, requirement, nil
}

// readUpload reads the file and checks its type before anything is sent.
func readUpload(path string) (recruit.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recruit.Upload{}, err
	}

	file := recruit.Upload{Filename: filepath.Base(path), Data: data}
	if _, err := recruit.CheckUpload(file); err != nil {
		return recruit.Upload{}, err
	}

	return file, nil
}

func printUploaded(cmd *cobra.Command, result *recruit.UploadResult) {
	if result.Message != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Filename, result.Message)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: uploaded\n", result.Filename)
}
