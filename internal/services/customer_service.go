package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"consultify/internal/core"
	"consultify/internal/ports"
)

type CustomerInput struct {
	TradeName string
	CNPJ      string
	Email     string
	Contact   string
	Address   string
}

type CustomerService struct {
	customers ports.CustomerStore
}

func NewCustomerService(customers ports.CustomerStore) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer requires every field and a CNPJ with valid check digits.
// The CNPJ is stored as digits only.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerInput) (core.Customer, error) {
	c := core.Customer{
		TradeName: strings.TrimSpace(in.TradeName),
		CNPJ:      strings.TrimSpace(in.CNPJ),
		Email:     strings.TrimSpace(in.Email),
		Contact:   strings.TrimSpace(in.Contact),
		Address:   strings.TrimSpace(in.Address),
	}
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	c.CNPJ = core.NormalizeCNPJ(c.CNPJ)

	saved, err := s.customers.CreateCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("save customer: %w", err)
	}
	return saved, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (core.Customer, error) {
	return s.customers.GetCustomer(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, req core.PageRequest) (core.Page[core.Customer], error) {
	return s.customers.ListCustomers(ctx, req)
}

type ProjectInput struct {
	CustomerID   string
	CustomerName string
	Subject      string
	Value        string
	Status       string
	Notes        string
}

type ProjectService struct {
	projects  ports.ProjectStore
	customers ports.CustomerStore
}

func NewProjectService(projects ports.ProjectStore, customers ports.CustomerStore) *ProjectService {
	return &ProjectService{projects: projects, customers: customers}
}

func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (core.Project, error) {
	p, err := s.project(ctx, in)
	if err != nil {
		return core.Project{}, err
	}
	saved, err := s.projects.CreateProject(ctx, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("save project: %w", err)
	}
	return saved, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, in ProjectInput) (core.Project, error) {
	if _, err := s.projects.GetProject(ctx, id); err != nil {
		return core.Project{}, err
	}
	p, err := s.project(ctx, in)
	if err != nil {
		return core.Project{}, err
	}
	p.ID = id
	saved, err := s.projects.UpdateProject(ctx, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("update project: %w", err)
	}
	return saved, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (core.Project, error) {
	return s.projects.GetProject(ctx, id)
}

func (s *ProjectService) ListProjects(ctx context.Context, req core.PageRequest) (core.Page[core.Project], error) {
	return s.projects.ListProjects(ctx, req)
}

func (s *ProjectService) project(ctx context.Context, in ProjectInput) (core.Project, error) {
	value, err := core.ParseMoney(in.Value)
	if err != nil {
		return core.Project{}, core.NewInvalidInputError("value", "must be a positive amount", err)
	}
	status, err := core.ParseProjectStatus(in.Status)
	if err != nil {
		return core.Project{}, core.NewInvalidInputError("status", "must be Aberto, Progresso or Atendido", err)
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = core.DefaultSubject
	}

	customerID, customerName, err := s.resolveCustomer(ctx, strings.TrimSpace(in.CustomerID), strings.TrimSpace(in.CustomerName))
	if err != nil {
		return core.Project{}, err
	}

	p := core.Project{
		CustomerID:   customerID,
		CustomerName: customerName,
		Subject:      subject,
		Value:        value,
		Status:       status,
		Notes:        strings.TrimSpace(in.Notes),
	}
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}
	return p, nil
}

// resolveCustomer prefers a registered customer. With no customers at all a
// project is booked as freelance work.
func (s *ProjectService) resolveCustomer(ctx context.Context, id, name string) (string, string, error) {
	if id != "" {
		c, err := s.customers.GetCustomer(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			return "", "", core.NewInvalidInputError("customer_id", "unknown customer", err)
		}
		if err != nil {
			return "", "", fmt.Errorf("get customer: %w", err)
		}
		return c.ID, c.TradeName, nil
	}
	if name != "" {
		return "", name, nil
	}

	n, err := s.customers.CountCustomers(ctx)
	if err != nil {
		return "", "", fmt.Errorf("count customers: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No customers registered, booking project as freelance")
		return "", core.FreelanceCustomer, nil
	}
	return "", "", core.NewInvalidInputError("customer", "is required", core.ErrEmptyField)
}
