package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hash-resume/internal/config"
	"github.com/jonathan/hash-resume/internal/observability"
)

var (
	scoreResumeFile string
	scoreJobFile    string
	scoreJobURL     string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the resume for ATS compatibility and job fit",
	Long: "Runs the ATS check and, when a job description is given, the job match. " +
		"Both analyses run concurrently.",
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreResumeFile, "resume", "r", "", "Resume JSON or YAML file (default: the saved document)")
	scoreCmd.Flags().StringVarP(&scoreJobFile, "job", "j", "", "Path to job description text file")
	scoreCmd.Flags().StringVar(&scoreJobURL, "job-url", "", "URL of a job posting to fetch")

	scoreCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	if scoreResumeFile != "" {
		// scoring a file must not overwrite the saved document
		cfg.StorageBackend = config.BackendMemory
	}

	ctx := context.Background()
	sess, closeSession, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSession()

	if scoreResumeFile != "" {
		doc, err := readDocumentFile(scoreResumeFile)
		if err != nil {
			return err
		}
		sess.Replace(doc)
	}

	job, err := readJobDescription(ctx, sess, scoreJobFile, scoreJobURL)
	if err != nil {
		return err
	}

	analyses, err := sess.AnalyzeAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintDocumentSummary(sess.Document().Document)
	if analyses.ATS != nil {
		printer.PrintATSAnalysis(*analyses.ATS)
	}
	if strings.TrimSpace(job) != "" && analyses.JobMatch != nil {
		printer.PrintJobMatch(*analyses.JobMatch)
	}
	return nil
}
