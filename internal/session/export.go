package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/rendering"
)

// Export formats
const (
	FormatHTML  = "html"
	FormatLaTeX = "latex"
	FormatPDF   = "pdf"
)

// PaymentView is the payment flow status plus the export gate.
type PaymentView struct {
	payment.Status
	Unlocked bool `json:"unlocked"`
}

// Export is a rendered résumé ready for download.
type Export struct {
	Format      string
	ContentType string
	Filename    string
	Data        []byte
}

// Unlocked reports whether export is allowed.
func (s *Session) Unlocked() bool {
	return s.unlocked.Load()
}

// Payment returns the payment flow status.
func (s *Session) Payment() PaymentView {
	return s.view(s.flow.Status())
}

// OpenPayment opens the payment flow.
func (s *Session) OpenPayment() PaymentView {
	return s.view(s.flow.Open())
}

// SetReference records the reference number being typed.
func (s *Session) SetReference(reference string) (PaymentView, error) {
	st, err := s.flow.SetReference(reference)
	return s.view(st), err
}

// SubmitPayment validates and registers the reference, then starts polling.
func (s *Session) SubmitPayment(ctx context.Context) (PaymentView, error) {
	st, err := s.flow.Submit(ctx)
	return s.view(st), err
}

// ClosePayment stops polling and closes the flow. Export stays unlocked if a
// payment was already confirmed.
func (s *Session) ClosePayment() PaymentView {
	return s.view(s.flow.Close())
}

// SubscribePayment streams payment status changes. Call the returned func to stop.
func (s *Session) SubscribePayment() (<-chan PaymentView, func()) {
	statuses, unsubscribe := s.flow.Subscribe()
	out := make(chan PaymentView, 1)
	stop := make(chan struct{})
	go func() {
		defer close(out)
		for st := range statuses {
			select {
			case out <- s.view(st):
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(stop)
			unsubscribe()
		})
	}
}

// RequestExport is what the download button does: when export is locked it
// opens the payment flow and returns false.
func (s *Session) RequestExport() (PaymentView, bool) {
	if s.Unlocked() {
		return s.Payment(), true
	}
	return s.OpenPayment(), false
}

// Export renders the current document. It fails with ErrExportLocked until a
// payment has been confirmed.
func (s *Session) Export(ctx context.Context, format string) (*Export, error) {
	if !s.Unlocked() {
		return nil, ErrExportLocked
	}

	doc := s.Document().Document
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatHTML
	}

	switch format {
	case FormatHTML:
		html, err := rendering.RenderHTML(doc)
		if err != nil {
			return nil, err
		}
		return &Export{Format: format, ContentType: "text/html; charset=utf-8", Filename: "resume.html", Data: []byte(html)}, nil
	case FormatLaTeX:
		tex, err := rendering.RenderLaTeX(doc)
		if err != nil {
			return nil, err
		}
		return &Export{Format: format, ContentType: "application/x-tex; charset=utf-8", Filename: "resume.tex", Data: []byte(tex)}, nil
	case FormatPDF:
		html, err := rendering.RenderHTML(doc)
		if err != nil {
			return nil, err
		}
		pdf, err := s.printPDF(ctx, html)
		if err != nil {
			return nil, fmt.Errorf("failed to export PDF: %w", err)
		}
		return &Export{Format: format, ContentType: "application/pdf", Filename: "resume.pdf", Data: pdf}, nil
	default:
		return nil, &rendering.UnsupportedFormatError{Format: format}
	}
}

func (s *Session) view(st payment.Status) PaymentView {
	return PaymentView{Status: st, Unlocked: s.Unlocked()}
}
