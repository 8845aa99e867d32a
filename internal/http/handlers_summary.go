package http

import (
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.payments.Summary(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(res))
}
