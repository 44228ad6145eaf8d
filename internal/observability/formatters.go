// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// writeList appends up to maxItemsToShow bulleted items.
func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// scoreBar renders a 0-100 score as a 20-cell bar.
func scoreBar(score int) string {
	score = max(0, min(100, score))
	filled := score / 5
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 20-filled) + "]"
}

// PrintATSAnalysis outputs the ATS score and improvement tips.
func (p *Printer) PrintATSAnalysis(analysis types.ATSAnalysis) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %3d/100 %s\n", analysis.Score, scoreBar(analysis.Score)))
	if len(analysis.Tips) > 0 {
		sb.WriteString("\nTips:\n")
		writeList(&sb, analysis.Tips)
	}
	p.printBox("ATS COMPATIBILITY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobMatch outputs the job match percentage, missing keywords and advice.
func (p *Printer) PrintJobMatch(analysis types.JobMatchAnalysis) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match: %3d%%    %s\n", analysis.MatchPercentage, scoreBar(analysis.MatchPercentage)))
	if len(analysis.MissingKeywords) > 0 {
		sb.WriteString("\nMissing keywords:\n")
		writeList(&sb, analysis.MissingKeywords)
	}
	if analysis.Advice != "" {
		sb.WriteString("\nAdvice:\n")
		for _, line := range wrap(analysis.Advice, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
	}
	p.printBox("JOB MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobSkills outputs the skills extracted from a job description.
func (p *Printer) PrintJobSkills(skills []string) {
	if len(skills) == 0 {
		p.printBox("JOB SKILLS", "No skills found")
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d skills requested:\n", len(skills)))
	writeList(&sb, skills)
	p.printBox("JOB SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocumentSummary outputs a short overview of a resume document.
func (p *Printer) PrintDocumentSummary(doc types.ResumeDocument) {
	var sb strings.Builder

	name := doc.PersonalInfo.FullName
	if name == "" {
		name = "(no name)"
	}
	sb.WriteString(fmt.Sprintf("Name:       %s\n", name))
	if doc.PersonalInfo.JobTitle != "" {
		sb.WriteString(fmt.Sprintf("Title:      %s\n", doc.PersonalInfo.JobTitle))
	}
	sb.WriteString(fmt.Sprintf("Summary:    %d words\n", len(strings.Fields(doc.Summary))))
	sb.WriteString(fmt.Sprintf("Experience: %d\n", len(doc.Experience)))
	sb.WriteString(fmt.Sprintf("Education:  %d\n", len(doc.Education)))
	sb.WriteString(fmt.Sprintf("Projects:   %d\n", len(doc.Projects)))
	sb.WriteString(fmt.Sprintf("Skills:     %d", len(doc.Skills)))

	p.printBox("RESUME", sb.String())
}

// PrintPaymentStatus outputs the state of the payment flow.
func (p *Printer) PrintPaymentStatus(status payment.Status) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:     %s\n", status.State))
	if status.Reference != "" {
		sb.WriteString(fmt.Sprintf("Reference: %s\n", status.Reference))
	}
	if status.Message != "" {
		sb.WriteString(status.Message + "\n")
	}
	if status.Error != "" {
		sb.WriteString("❌ " + status.Error + "\n")
	}
	p.printBox("PAYMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
