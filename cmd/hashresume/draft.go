package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/hash-resume/internal/types"
)

var (
	draftSection string
	draftContext string
	draftCurrent string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft content for a resume section",
	Long: "Asks the assistant to write or improve one section. The suggestion is printed " +
		"and never written into the saved document.",
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().StringVarP(&draftSection, "section", "s", "", "Section to draft: summary, experience, education, skills, projects (required)")
	draftCmd.Flags().StringVar(&draftContext, "context", "", "Hint for the assistant, such as the role or achievement")
	draftCmd.Flags().StringVar(&draftCurrent, "current", "", "Existing text to improve")

	_ = draftCmd.MarkFlagRequired("section")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(_ *cobra.Command, _ []string) error {
	req := types.DraftRequest{
		Section: types.SectionType(draftSection),
		Context: draftContext,
		Current: draftCurrent,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid draft request: %w", err)
	}

	cfg, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	sess, closeSession, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSession()

	text, err := sess.Draft(ctx, string(req.Section), req.Context, req.Current)
	if err != nil {
		return fmt.Errorf("failed to draft %s: %w", req.Section, err)
	}
	_, _ = fmt.Fprintln(os.Stdout, text)
	return nil
}
