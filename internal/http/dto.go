package http

import (
	"time"

	"consultify/internal/core"
	"consultify/internal/services"
)

type pageResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func toPage[S, T any](p core.Page[S], conv func(S) T) pageResponse[T] {
	items := make([]T, len(p.Items))
	for i, it := range p.Items {
		items[i] = conv(it)
	}
	return pageResponse[T]{Items: items, NextCursor: p.NextCursor}
}

type paymentRequest struct {
	Type        string     `json:"type"`
	Amount      amountText `json:"amount"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Frequency   string     `json:"frequency"`
	CustomerID  string     `json:"customer_id"`
	ProjectID   string     `json:"project_id"`
}

func (p paymentRequest) input() services.PaymentInput {
	return services.PaymentInput{
		Type:        p.Type,
		Amount:      string(p.Amount),
		Date:        p.Date,
		Description: p.Description,
		Frequency:   p.Frequency,
		CustomerID:  p.CustomerID,
		ProjectID:   p.ProjectID,
	}
}

type paymentResponse struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Amount            string    `json:"amount"`
	AmountDisplay     string    `json:"amount_display,omitempty"`
	Date              string    `json:"date"`
	Description       string    `json:"description"`
	Frequency         string    `json:"frequency,omitempty"`
	CustomerID        string    `json:"customer_id,omitempty"`
	ProjectID         string    `json:"project_id,omitempty"`
	PlanID            string    `json:"plan_id,omitempty"`
	InstallmentNumber int       `json:"installment_number,omitempty"`
	Version           int64     `json:"version"`
	SyncStatus        string    `json:"sync_status"`
	SheetRef          string    `json:"sheet_ref,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toPaymentResponse(p core.PaymentRecord) paymentResponse {
	resp := paymentResponse{
		ID:                p.ID,
		Type:              string(p.Type),
		Amount:            p.Amount,
		Date:              p.Date.String(),
		Description:       p.Description,
		Frequency:         p.Frequency,
		CustomerID:        p.CustomerID,
		ProjectID:         p.ProjectID,
		PlanID:            p.PlanID,
		InstallmentNumber: p.InstallmentNumber,
		Version:           p.Version,
		SyncStatus:        string(p.SyncStatus),
		SheetRef:          p.SheetRef,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if m, err := p.Money(); err == nil {
		resp.AmountDisplay = core.FormatBRL(m)
	}
	return resp
}

type planRequest struct {
	TotalValue amountText `json:"total_value"`
	Count      int        `json:"count"`
	StartDate  string     `json:"start_date"`
	Interval   string     `json:"interval"`
}

func (p planRequest) request() services.PlanRequest {
	return services.PlanRequest{
		TotalValue: string(p.TotalValue),
		Count:      p.Count,
		StartDate:  p.StartDate,
		Interval:   p.Interval,
	}
}

type commitPlanRequest struct {
	planRequest
	Type        string `json:"type"`
	Description string `json:"description"`
	CustomerID  string `json:"customer_id"`
	ProjectID   string `json:"project_id"`
}

type installmentResponse struct {
	Number  int    `json:"number"`
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
}

type planResponse struct {
	Total        string                `json:"total"`
	Interval     string                `json:"interval"`
	StartDate    string                `json:"start_date"`
	Installments []installmentResponse `json:"installments"`
}

func toPlanResponse(p core.InstallmentPlan) planResponse {
	resp := planResponse{
		Total:        p.Total.String(),
		Interval:     string(p.Interval),
		StartDate:    p.StartDate.String(),
		Installments: make([]installmentResponse, len(p.Installments)),
	}
	for i, inst := range p.Installments {
		resp.Installments[i] = installmentResponse{
			Number:  inst.Number,
			DueDate: inst.DueDate.String(),
			Amount:  inst.Amount.String(),
		}
	}
	return resp
}

type storedPlanResponse struct {
	planResponse
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CustomerID  string    `json:"customer_id,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toStoredPlanResponse(p core.StoredPlan) storedPlanResponse {
	return storedPlanResponse{
		planResponse: toPlanResponse(p.Plan),
		ID:           p.ID,
		Type:         string(p.Type),
		Description:  p.Description,
		CustomerID:   p.CustomerID,
		ProjectID:    p.ProjectID,
		CreatedAt:    p.CreatedAt,
	}
}

type commitPlanResponse struct {
	Plan     storedPlanResponse `json:"plan"`
	Payments []paymentResponse  `json:"payments"`
}

type warningResponse struct {
	RecordID string `json:"record_id"`
	Reason   string `json:"reason"`
}

type summaryResponse struct {
	PeriodStart     string            `json:"period_start"`
	PeriodEnd       string            `json:"period_end"`
	PeriodReceived  string            `json:"period_received"`
	PeriodPaid      string            `json:"period_paid"`
	PeriodProfit    string            `json:"period_profit"`
	AllTimeReceived string            `json:"all_time_received"`
	AllTimePaid     string            `json:"all_time_paid"`
	AllTimeBalance  string            `json:"all_time_balance"`
	RecordCount     int               `json:"record_count"`
	Warnings        []warningResponse `json:"warnings"`
}

func toSummaryResponse(res core.SummaryResult) summaryResponse {
	s := res.Summary
	resp := summaryResponse{
		PeriodStart:     s.PeriodStart.String(),
		PeriodEnd:       s.PeriodEnd.String(),
		PeriodReceived:  s.PeriodReceived.String(),
		PeriodPaid:      s.PeriodPaid.String(),
		PeriodProfit:    s.PeriodProfit.String(),
		AllTimeReceived: s.AllTimeReceived.String(),
		AllTimePaid:     s.AllTimePaid.String(),
		AllTimeBalance:  s.AllTimeBalance.String(),
		RecordCount:     s.RecordCount,
		Warnings:        make([]warningResponse, len(res.Warnings)),
	}
	for i, w := range res.Warnings {
		resp.Warnings[i] = warningResponse{RecordID: w.RecordID, Reason: w.Reason}
	}
	return resp
}

type customerRequest struct {
	TradeName string `json:"trade_name"`
	CNPJ      string `json:"cnpj"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	Address   string `json:"address"`
}

type customerResponse struct {
	ID        string    `json:"id"`
	TradeName string    `json:"trade_name"`
	CNPJ      string    `json:"cnpj"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(c core.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		TradeName: c.TradeName,
		CNPJ:      core.FormatCNPJ(c.CNPJ),
		Email:     c.Email,
		Contact:   c.Contact,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

type projectRequest struct {
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	Subject      string     `json:"subject"`
	Value        amountText `json:"value"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
}

func (p projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		CustomerID:   p.CustomerID,
		CustomerName: p.CustomerName,
		Subject:      p.Subject,
		Value:        string(p.Value),
		Status:       p.Status,
		Notes:        p.Notes,
	}
}

type projectResponse struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name"`
	Subject      string    `json:"subject"`
	Value        string    `json:"value"`
	ValueDisplay string    `json:"value_display"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProjectResponse(p core.Project) projectResponse {
	return projectResponse{
		ID:           p.ID,
		CustomerID:   p.CustomerID,
		CustomerName: p.CustomerName,
		Subject:      p.Subject,
		Value:        p.Value.String(),
		ValueDisplay: core.FormatBRL(p.Value),
		Status:       string(p.Status),
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
