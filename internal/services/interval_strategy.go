// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for installment due dates.
// Each interval (weekly, biweekly, monthly) has its own strategy that
// encapsulates how far from the start date the n-th installment falls.

package services

import (
	"fmt"

	"consultify/internal/core"
)

// DueDateStrategy computes the due date of the installment at a 0-based
// index. Implementations must be pure and return dates that never decrease
// as the index grows.
type DueDateStrategy interface {
	DueDate(start core.Date, index int) core.Date
}

// DayStepStrategy offsets every installment by a fixed number of days.
type DayStepStrategy struct {
	Days int
}

func (s DayStepStrategy) DueDate(start core.Date, index int) core.Date {
	return start.AddDays(s.Days * index)
}

// MonthlyStrategy adds calendar months to the start date. Each date is
// computed from the start, so a plan starting on the 31st returns to the
// 31st whenever the month allows it.
type MonthlyStrategy struct{}

func (MonthlyStrategy) DueDate(start core.Date, index int) core.Date {
	return start.AddMonthsClamped(index)
}

var dueDateStrategies = map[core.InstallmentInterval]DueDateStrategy{
	core.IntervalWeekly:   DayStepStrategy{Days: 7},
	core.IntervalBiweekly: DayStepStrategy{Days: 15},
	core.IntervalMonthly:  MonthlyStrategy{},
}

// GetDueDateStrategy returns the strategy for an interval.
func GetDueDateStrategy(interval core.InstallmentInterval) (DueDateStrategy, error) {
	s, ok := dueDateStrategies[interval]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidInterval, interval)
	}
	return s, nil
}
