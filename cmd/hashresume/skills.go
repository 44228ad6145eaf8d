package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hash-resume/internal/observability"
)

var (
	skillsJobFile string
	skillsJobURL  string
	skillsMerge   bool
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List the skills a job description asks for",
	Long:  "Extracts skills from a job description and optionally merges them into the saved resume.",
	RunE:  runSkills,
}

func init() {
	skillsCmd.Flags().StringVarP(&skillsJobFile, "job", "j", "", "Path to job description text file")
	skillsCmd.Flags().StringVar(&skillsJobURL, "job-url", "", "URL of a job posting to fetch")
	skillsCmd.Flags().BoolVar(&skillsMerge, "merge", false, "Add the extracted skills to the saved resume")

	skillsCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	skillsCmd.MarkFlagsOneRequired("job", "job-url")
	rootCmd.AddCommand(skillsCmd)
}

func runSkills(_ *cobra.Command, _ []string) error {
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

	if _, err := readJobDescription(ctx, sess, skillsJobFile, skillsJobURL); err != nil {
		return err
	}

	skills, err := sess.ExtractJobSkills(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract skills: %w", err)
	}
	observability.NewPrinter(os.Stdout).PrintJobSkills(skills)

	if skillsMerge && len(skills) > 0 {
		before := len(sess.Document().Document.Skills)
		snap := sess.MergeSkills(strings.Join(skills, ", "))
		_, _ = fmt.Fprintf(os.Stdout, "Added %d skills to the resume\n", len(snap.Document.Skills)-before)
	}
	return nil
}
