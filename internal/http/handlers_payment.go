package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"consultify/internal/export"
	"consultify/internal/log"
)

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r, s.pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.payments.ListPayments(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPage(page, toPaymentResponse))
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := s.payments.CreatePayment(r.Context(), body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields := log.NewFields().
		WithOperation(log.OpCreate).
		WithPayment(p.ID, string(p.Type), p.Amount, p.Version)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Payment created", fields.ToSlice()...)

	w.Header().Set("Location", "/api/payments/"+p.ID)
	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.payments.GetPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	p, err := s.payments.UpdatePayment(r.Context(), mux.Vars(r)["id"], body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.payments.DeletePayment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Payment deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldPaymentID, id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExportLedger streams the whole ledger and the summary for the month
// of ?date= as an XLSX workbook.
func (s *Server) handleExportLedger(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := s.payments.AllPayments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.payments.Summary(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Buffered so a failed render can still be reported as a 500.
	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, records, sum.Summary); err != nil {
		writeError(w, r, err)
		return
	}

	fileName := fmt.Sprintf("pagamentos_%s.xlsx", ref.Format("2006-01"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Export interrupted",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
	}
}
