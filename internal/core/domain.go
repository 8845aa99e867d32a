package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	IntervalWeekly   InstallmentInterval = "weekly"
	IntervalBiweekly InstallmentInterval = "biweekly"
	IntervalMonthly  InstallmentInterval = "monthly"
)

const (
	Income  PaymentType = "income"
	Expense PaymentType = "expense"
)

const (
	SyncPending SyncStatus = "pending"
	SyncDone    SyncStatus = "synced"
	SyncFailed  SyncStatus = "error"
)

const (
	StatusOpen       ProjectStatus = "Aberto"
	StatusInProgress ProjectStatus = "Progresso"
	StatusDone       ProjectStatus = "Atendido"
)

// DefaultSubject and FreelanceCustomer mirror what the project form falls
// back to when nothing is selected.
const (
	DefaultSubject    = "Consultoria"
	FreelanceCustomer = "FREELA"
)

const maxDescriptionLen = 200

type (
	InstallmentInterval string
	PaymentType         string
	SyncStatus          string
	ProjectStatus       string

	Money struct {
		Cents int64
	}

	Installment struct {
		Number  int // 1-based
		DueDate Date
		Amount  Money
	}

	// InstallmentPlan is the output of the planner. The amounts always sum to
	// Total exactly and due dates never decrease.
	InstallmentPlan struct {
		Total        Money
		Interval     InstallmentInterval
		StartDate    Date
		Installments []Installment
	}

	// StoredPlan is a committed plan together with the ledger context it was
	// created for.
	StoredPlan struct {
		ID          string
		Type        PaymentType
		Description string
		CustomerID  string
		ProjectID   string
		Plan        InstallmentPlan
		CreatedAt   time.Time
	}

	// PaymentRecord is one ledger entry. Amount holds the decimal text exactly
	// as it was persisted so that rows imported from elsewhere can be reported
	// rather than rejected wholesale.
	PaymentRecord struct {
		ID                string
		Type              PaymentType
		Amount            string
		Date              Date
		Description       string
		Frequency         string
		CustomerID        string
		ProjectID         string
		PlanID            string
		InstallmentNumber int
		Version           int64
		SyncStatus        SyncStatus
		SheetRef          string
		CreatedAt         time.Time
		UpdatedAt         time.Time
	}

	Customer struct {
		ID        string
		TradeName string
		CNPJ      string // digits only
		Email     string
		Contact   string
		Address   string
		CreatedAt time.Time
	}

	Project struct {
		ID           string
		CustomerID   string
		CustomerName string
		Subject      string
		Value        Money
		Status       ProjectStatus
		Notes        string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

var intervalAliases = map[string]InstallmentInterval{
	"weekly":    IntervalWeekly,
	"semanal":   IntervalWeekly,
	"biweekly":  IntervalBiweekly,
	"quinzenal": IntervalBiweekly,
	"monthly":   IntervalMonthly,
	"mensal":    IntervalMonthly,
}

// ParseInstallmentInterval accepts the English names and the labels the
// original client stored.
func ParseInstallmentInterval(s string) (InstallmentInterval, error) {
	if i, ok := intervalAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return i, nil
	}
	return "", ErrInvalidInterval
}

func (i InstallmentInterval) Valid() bool {
	switch i {
	case IntervalWeekly, IntervalBiweekly, IntervalMonthly:
		return true
	}
	return false
}

// Label returns the Portuguese name shown on exports.
func (i InstallmentInterval) Label() string {
	switch i {
	case IntervalWeekly:
		return "semanal"
	case IntervalBiweekly:
		return "quinzenal"
	case IntervalMonthly:
		return "mensal"
	}
	return string(i)
}

var paymentTypeAliases = map[string]PaymentType{
	"income":      Income,
	"receita":     Income,
	"recebimento": Income,
	"expense":     Expense,
	"despesa":     Expense,
	"pagamento":   Expense,
}

func ParsePaymentType(s string) (PaymentType, error) {
	if t, ok := paymentTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", ErrInvalidPaymentType
}

func (t PaymentType) Valid() bool {
	return t == Income || t == Expense
}

func (t PaymentType) Label() string {
	switch t {
	case Income:
		return "Receita"
	case Expense:
		return "Despesa"
	}
	return string(t)
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch ProjectStatus(strings.TrimSpace(s)) {
	case "":
		return StatusOpen, nil
	case StatusOpen, StatusInProgress, StatusDone:
		return ProjectStatus(strings.TrimSpace(s)), nil
	}
	return "", ErrInvalidStatus
}

// Money returns the parsed amount. A malformed or negative stored amount
// yields ErrInvalidAmount.
func (p PaymentRecord) Money() (Money, error) {
	return ParseAmount(p.Amount)
}

// Validate checks a record about to be written. Stored amounts must be
// strictly positive.
func (p PaymentRecord) Validate() error {
	if !p.Type.Valid() {
		return NewInvalidInputError("type", "must be income or expense", ErrInvalidPaymentType)
	}
	if _, err := ParseMoney(p.Amount); err != nil {
		return NewInvalidInputError("amount", "must be a positive amount", err)
	}
	if p.Date.IsZero() {
		return NewInvalidInputError("date", "is required", ErrInvalidDate)
	}
	if strings.TrimSpace(p.Description) == "" {
		return NewInvalidInputError("description", "is required", ErrEmptyField)
	}
	if len(p.Description) > maxDescriptionLen {
		return NewInvalidInputError("description", "too long (max 200 characters)", nil)
	}
	return nil
}

func (c Customer) Validate() error {
	required := []struct{ field, value string }{
		{"trade_name", c.TradeName},
		{"cnpj", c.CNPJ},
		{"email", c.Email},
		{"contact", c.Contact},
		{"address", c.Address},
	}
	var errs []error
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, NewInvalidInputError(r.field, "is required", ErrEmptyField))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if !ValidateCNPJ(c.CNPJ) {
		return NewInvalidInputError("cnpj", "check digits do not match", ErrInvalidCNPJ)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return NewInvalidInputError("email", "is not a valid address", err)
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.CustomerName) == "" {
		return NewInvalidInputError("customer", "is required", ErrEmptyField)
	}
	if strings.TrimSpace(p.Subject) == "" {
		return NewInvalidInputError("subject", "is required", ErrEmptyField)
	}
	if err := p.Value.Validate(); err != nil {
		return NewInvalidInputError("value", "must be a positive amount", err)
	}
	if _, err := ParseProjectStatus(string(p.Status)); err != nil {
		return NewInvalidInputError("status", "must be Aberto, Progresso or Atendido", err)
	}
	return nil
}
