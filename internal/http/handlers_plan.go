package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consultify/internal/log"
	"consultify/internal/services"
)

// handlePreviewPlan runs the planner without saving anything.
func (s *Server) handlePreviewPlan(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	plan, err := s.payments.PreviewPlan(body.request())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (s *Server) handleCommitPlan(w http.ResponseWriter, r *http.Request) {
	var body commitPlanRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}

	stored, payments, err := s.payments.CommitPlan(r.Context(), services.CommitPlanInput{
		Plan:        body.request(),
		Type:        body.Type,
		Description: body.Description,
		CustomerID:  body.CustomerID,
		ProjectID:   body.ProjectID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Installment plan committed",
		log.FieldOperation, log.OpCommit,
		log.FieldPlanID, stored.ID,
		log.FieldAmount, stored.Plan.Total.String(),
		"installments", len(payments))

	resp := commitPlanResponse{
		Plan:     toStoredPlanResponse(stored),
		Payments: make([]paymentResponse, len(payments)),
	}
	for i, p := range payments {
		resp.Payments[i] = toPaymentResponse(p)
	}
	w.Header().Set("Location", "/api/plans/"+stored.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.payments.GetPlan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoredPlanResponse(plan))
}
