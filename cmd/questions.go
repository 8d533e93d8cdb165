package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/ai"
	"github.com/spigell/recruitdesk/internal/recruit"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions from a job description or a résumé",
	Run: func(cmd *cobra.Command, _ []string) {
		d := setup()
		ctx := cmd.Context()

		clientID, _ := cmd.Flags().GetString("client")
		requirementID, _ := cmd.Flags().GetString("requirement")
		resumeID, _ := cmd.Flags().GetString("resume")
		count, _ := cmd.Flags().GetInt("count")

		if err := ai.ValidateCount(count); err != nil {
			d.fail("checking --count", err)
		}

		questioner, err := d.newQuestioner(ctx)
		if err != nil {
			d.fail("building questioner", err)
		}

		session := d.newSession()
		if err := openRequirement(ctx, session, clientID, requirementID); err != nil {
			d.fail("opening requirement", err)
		}

		var pairs []ai.QA
		if resumeID != "" {
			resume, ok := session.AllResumes().FindByID(resumeID)
			if !ok {
				d.fail("generating questions", fmt.Errorf("resume %q is not listed under requirement %q", resumeID, requirementID))
			}
			pairs, err = resumeQuestions(ctx, d.backend, questioner, resume, count)
		} else {
			requirement, _ := session.Requirements().FindByID(requirementID)
			pairs, err = requirementQuestions(ctx, d.backend, questioner, requirement, count)
		}
		if err != nil {
			d.fail("generating questions", err)
		}

		d.logger.Info("questions generated", zap.Int("count", len(pairs)))
		renderQuestions(cmd.OutOrStdout(), pairs)
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)

	questionsCmd.Flags().StringP("client", "c", "", "client id")
	questionsCmd.Flags().StringP("requirement", "r", "", "requirement id")
	questionsCmd.Flags().String("resume", "", "résumé id; questions are based on the job description when unset")
	questionsCmd.Flags().IntP("count", "n", ai.DefaultQuestions, fmt.Sprintf("number of questions (%d-%d)", ai.MinQuestions, ai.MaxQuestions))
	questionsCmd.MarkFlagRequired("client")
	questionsCmd.MarkFlagRequired("requirement")
}

type documentDownloader interface {
	DownloadResume(ctx context.Context, resumeID string) (*recruit.Document, error)
	DownloadRequirement(ctx context.Context, requirementID string) (*recruit.Document, error)
}

func resumeQuestions(ctx context.Context, backend documentDownloader, questioner ai.Questioner, resume recruit.Resume, count int) ([]ai.QA, error) {
	doc, err := backend.DownloadResume(ctx, resume.ID)
	if err != nil {
		return nil, fmt.Errorf("downloading resume %s: %w", resume.ID, err)
	}

	return questioner.Generate(ctx, ai.Document{Kind: ai.KindResume, Name: documentName(doc, resume.Filename), Data: doc.Data}, count)
}

func requirementQuestions(ctx context.Context, backend documentDownloader, questioner ai.Questioner, requirement recruit.Requirement, count int) ([]ai.QA, error) {
	doc, err := backend.DownloadRequirement(ctx, requirement.ID)
	if err != nil {
		return nil, fmt.Errorf("downloading job description %s: %w", requirement.ID, err)
	}

	return questioner.Generate(ctx, ai.Document{Kind: ai.KindRequirement, Name: documentName(doc, requirement.Name()), Data: doc.Data}, count)
}

func documentName(doc *recruit.Document, fallback string) string {
	if doc.Filename != "" {
		return doc.Filename
	}
	return fallback
}
