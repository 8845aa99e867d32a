package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consultify/internal/log"
	"consultify/internal/services"
)

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r, s.pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.customers.ListCustomers(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPage(page, toCustomerResponse))
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var body customerRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := s.customers.CreateCustomer(r.Context(), services.CustomerInput{
		TradeName: body.TradeName,
		CNPJ:      body.CNPJ,
		Email:     body.Email,
		Contact:   body.Contact,
		Address:   body.Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Customer created",
		log.FieldOperation, log.OpCreate,
		log.FieldCustomerID, c.ID)
	w.Header().Set("Location", "/api/customers/"+c.ID)
	writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.customers.GetCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	req, err := parsePageRequest(r, s.pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.projects.ListProjects(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPage(page, toProjectResponse))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body projectRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.projects.CreateProject(r.Context(), body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Project created",
		log.FieldOperation, log.OpCreate,
		log.FieldProjectID, p.ID,
		log.FieldCustomerID, p.CustomerID)
	w.Header().Set("Location", "/api/projects/"+p.ID)
	writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.GetProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var body projectRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.projects.UpdateProject(r.Context(), mux.Vars(r)["id"], body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}
