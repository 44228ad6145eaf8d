package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/hash-resume/internal/observability"
	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/rendering"
	"github.com/jonathan/hash-resume/internal/session"
)

var (
	exportFormat    string
	exportOutput    string
	exportTemplate  string
	exportReference string
	exportWait      time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved resume after payment confirmation",
	Long: "Registers a payment reference number, waits until the payment is confirmed " +
		"and writes the resume as HTML, LaTeX or PDF.",
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", session.FormatHTML, "Output format: html, latex or pdf")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Path to output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Custom LaTeX template (latex format only)")
	exportCmd.Flags().StringVarP(&exportReference, "reference", "r", "", "Payment reference number (required)")
	exportCmd.Flags().DurationVar(&exportWait, "wait", 10*time.Minute, "How long to wait for payment confirmation")

	_ = exportCmd.MarkFlagRequired("reference")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	if exportTemplate != "" && exportFormat != session.FormatLaTeX {
		return fmt.Errorf("--template requires --format latex")
	}

	cfg, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.PaymentEndpoint == "" {
		return fmt.Errorf("PAYMENT_ENDPOINT (or payment_endpoint in the config file) is required to export")
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportWait)
	defer cancel()

	sess, closeSession, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSession()

	printer := observability.NewPrinter(os.Stderr)
	if err := confirmPayment(ctx, sess, exportReference, printer); err != nil {
		return err
	}

	var data []byte
	if exportTemplate != "" {
		latex, err := rendering.RenderLaTeXFile(sess.Document().Document, exportTemplate)
		if err != nil {
			return fmt.Errorf("failed to render LaTeX: %w", err)
		}
		data = []byte(latex)
	} else {
		export, err := sess.Export(ctx, exportFormat)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		data = export.Data
	}

	if err := writeOutput(exportOutput, data); err != nil {
		return err
	}
	if exportOutput != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Output: %s\n", exportOutput)
	}
	return nil
}

// confirmPayment submits reference and blocks until the session unlocks
// export, the flow fails or ctx ends.
func confirmPayment(ctx context.Context, sess *session.Session, reference string, printer *observability.Printer) error {
	updates, stop := sess.SubscribePayment()
	defer stop()

	sess.OpenPayment()
	if _, err := sess.SetReference(reference); err != nil {
		return err
	}
	view, err := sess.SubmitPayment(ctx)
	if err != nil {
		printer.PrintPaymentStatus(view.Status)
		return err
	}

	last := view.State
	for {
		if sess.Unlocked() {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("payment was not confirmed in time")
			}
			return ctx.Err()
		case view, ok := <-updates:
			if !ok {
				return fmt.Errorf("payment status stream closed")
			}
			if view.Unlocked {
				printer.PrintPaymentStatus(view.Status)
				return nil
			}
			if view.State == payment.StateError && view.Error != "" {
				printer.PrintPaymentStatus(view.Status)
				return errors.New(view.Error)
			}
			if view.State != last {
				printer.PrintPaymentStatus(view.Status)
				last = view.State
			}
		}
	}
}
