package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/hash-resume/internal/session"
	"github.com/jonathan/hash-resume/internal/types"
)

// PaymentErrorResponse reports a failed payment action together with the
// resulting flow status, so the client can show the message in place.
type PaymentErrorResponse struct {
	Error   string              `json:"error"`
	Payment session.PaymentView `json:"payment"`
}

// ExportRequestResponse is the result of pressing the download button.
type ExportRequestResponse struct {
	Allowed bool                `json:"allowed"`
	Payment session.PaymentView `json:"payment"`
}

func (s *Server) paymentResponse(w http.ResponseWriter, view session.PaymentView, err error) {
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), PaymentErrorResponse{Error: err.Error(), Payment: view})
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, _ *http.Request) {
	s.paymentResponse(w, s.session.Payment(), nil)
}

func (s *Server) handleOpenPayment(w http.ResponseWriter, _ *http.Request) {
	s.paymentResponse(w, s.session.OpenPayment(), nil)
}

func (s *Server) handleSetReference(w http.ResponseWriter, r *http.Request) {
	var req types.ReferenceRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	view, err := s.session.SetReference(req.Reference)
	s.paymentResponse(w, view, err)
}

func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	view, err := s.session.SubmitPayment(r.Context())
	s.paymentResponse(w, view, err)
}

func (s *Server) handleClosePayment(w http.ResponseWriter, _ *http.Request) {
	s.paymentResponse(w, s.session.ClosePayment(), nil)
}

// handlePaymentEvents streams payment status snapshots until the client goes away.
func (s *Server) handlePaymentEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	updates, cancel := s.session.SubscribePayment()
	defer cancel()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			sse.WriteError("server shutting down")
			return
		case <-keepAlive.C:
			if err := sse.WriteComment("ping"); err != nil {
				return
			}
		case view, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.WriteEvent("payment", view); err != nil {
				log.Printf("[SERVER] Error writing SSE event: %v", err)
				return
			}
		}
	}
}

// handleRequestExport mirrors the download button: it reports whether export
// is allowed and opens the payment flow when it is not.
func (s *Server) handleRequestExport(w http.ResponseWriter, _ *http.Request) {
	view, allowed := s.session.RequestExport()
	s.jsonResponse(w, http.StatusOK, ExportRequestResponse{Allowed: allowed, Payment: view})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.session.Export(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		s.failure(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		log.Printf("[SERVER] Error writing export: %v", err)
	}
}
