package services

import (
	"fmt"
	"strings"

	"consultify/internal/core"
)

// PlanRequest is the text form of a plan as it arrives from forms, JSON
// bodies and command-line flags.
type PlanRequest struct {
	TotalValue string
	Count      int
	StartDate  string
	Interval   string
}

// MaxInstallments caps a plan at thirty years of monthly payments.
const MaxInstallments = 360

// GenerateInstallments splits total into count installments.
//
// Every installment gets total/count truncated to the cent, the remainder
// goes to the last one, so the amounts always add up to total. Due dates
// follow the interval's DueDateStrategy starting at start.
func GenerateInstallments(total core.Money, count int, start core.Date, interval core.InstallmentInterval) (core.InstallmentPlan, error) {
	if total.Cents <= 0 {
		return core.InstallmentPlan{}, core.NewInvalidInputError("total_value", "must be greater than zero", core.ErrInvalidAmount)
	}
	if count < 1 {
		return core.InstallmentPlan{}, core.NewInvalidInputError("count", "must be at least 1", core.ErrInvalidCount)
	}
	if count > MaxInstallments {
		return core.InstallmentPlan{}, core.NewInvalidInputError("count", fmt.Sprintf("must be at most %d", MaxInstallments), core.ErrInvalidCount)
	}
	if int64(count) > total.Cents {
		return core.InstallmentPlan{}, core.NewInvalidInputError("count", "must not exceed the total in cents, every installment needs at least R$ 0,01", core.ErrInvalidCount)
	}
	if start.IsZero() {
		return core.InstallmentPlan{}, core.NewInvalidInputError("start_date", "is required", core.ErrInvalidDate)
	}
	strategy, err := GetDueDateStrategy(interval)
	if err != nil {
		return core.InstallmentPlan{}, core.NewInvalidInputError("interval", "must be weekly, biweekly or monthly", err)
	}

	n := int64(count)
	base := total.Cents / n
	remainder := total.Cents - base*n

	installments := make([]core.Installment, count)
	for i := range installments {
		amount := base
		if i == count-1 {
			amount += remainder
		}
		installments[i] = core.Installment{
			Number:  i + 1,
			DueDate: strategy.DueDate(start, i),
			Amount:  core.Money{Cents: amount},
		}
	}

	return core.InstallmentPlan{
		Total:        total,
		Interval:     interval,
		StartDate:    start,
		Installments: installments,
	}, nil
}

// PlanFromRequest parses req and generates the plan. Parse failures are
// reported as InvalidInputError naming the offending field.
func PlanFromRequest(req PlanRequest) (core.InstallmentPlan, error) {
	total, err := core.ParseMoney(req.TotalValue)
	if err != nil {
		return core.InstallmentPlan{}, core.NewInvalidInputError("total_value", "must be a positive amount", err)
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.InstallmentPlan{}, core.NewInvalidInputError("start_date", "must be YYYY-MM-DD", err)
	}
	interval := core.IntervalMonthly
	if strings.TrimSpace(req.Interval) != "" {
		interval, err = core.ParseInstallmentInterval(req.Interval)
		if err != nil {
			return core.InstallmentPlan{}, core.NewInvalidInputError("interval", "must be weekly, biweekly or monthly", err)
		}
	}
	return GenerateInstallments(total, req.Count, start, interval)
}
