// Package core provides the domain types of the ledger and the money and
// date parsing used at every text boundary.
//
// Amounts are kept as integer centavos. Text coming from users, sheets or
// imports is parsed once here and never handled as a binary float.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds any single amount to the NUMERIC(14,2) range of the
// database columns.
const MaxCents int64 = 99_999_999_999_999

var maxCents = decimal.NewFromInt(MaxCents)

// ParseMoney converts user input into a strictly positive amount.
//
// It accepts dot or comma decimal separators, pt-BR grouping and an optional
// "R$" prefix. Values are rounded half-up on the third decimal place.
//
// A dot is read as pt-BR grouping when the text carries "R$" or when it is
// followed by exactly three digits ("1.500" is 1500). Plain "1234.56" stays
// a decimal point.
//
// Examples:
//
//	ParseMoney("1234.56")     -> 123456
//	ParseMoney("1234,56")     -> 123456
//	ParseMoney("R$ 1.234,56") -> 123456
//	ParseMoney("R$ 1.500")    -> 150000
//	ParseMoney("1.500")       -> 150000
//	ParseMoney("12,345")      -> 1235
func ParseMoney(s string) (Money, error) {
	m, err := parseMoney(s, false)
	if err != nil {
		return Money{}, err
	}
	if m.Cents <= 0 {
		return Money{}, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidAmount, s)
	}
	return m, nil
}

// ParseAmount reads a stored amount. Zero is accepted, negatives are not.
func ParseAmount(s string) (Money, error) {
	return parseMoney(s, false)
}

// ParseSignedAmount reads a derived value such as a profit or balance.
func ParseSignedAmount(s string) (Money, error) {
	return parseMoney(s, true)
}

func parseMoney(s string, allowNegative bool) (Money, error) {
	raw := s
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	brl := strings.HasPrefix(s, "R$")
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if strings.HasPrefix(s, "-") && !neg {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	if neg && !allowNegative {
		return Money{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, raw)
	}

	norm, ok := normalizeDecimal(s, brl)
	if !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(norm)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) {
		return Money{}, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, raw)
	}

	v := cents.IntPart()
	if neg {
		v = -v
	}
	return Money{Cents: v}, nil
}

// normalizeDecimal rewrites a pt-BR or plain decimal string to the form
// "1234.56". When both separators appear the last one is the decimal point.
// Dots alone are grouping when brl is set or the text is in pt-BR form.
func normalizeDecimal(s string, brl bool) (string, bool) {
	if s == "" {
		return "", false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			if strings.Count(s, ",") > 1 || !validGroups(s[:lastComma], ".") {
				return "", false
			}
			s = strings.ReplaceAll(s[:lastComma], ".", "") + "." + s[lastComma+1:]
		} else {
			if strings.Count(s, ".") > 1 || !validGroups(s[:lastDot], ",") {
				return "", false
			}
			s = strings.ReplaceAll(s[:lastDot], ",", "") + "." + s[lastDot+1:]
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return "", false
		}
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1, brl && lastDot >= 0, ptBRGrouped(s):
		if !validGroups(s, ".") {
			return "", false
		}
		s = strings.ReplaceAll(s, ".", "")
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return "", false
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return "", false
	}
	if intPart == "" {
		intPart = "0"
	}
	if fracPart == "" {
		return intPart, true
	}
	return intPart + "." + fracPart, true
}

// ptBRGrouped reports whether s looks like "1.500" or "12.345": one to three
// leading digits, not a lone zero, then a single dot and three digits.
func ptBRGrouped(s string) bool {
	head, tail, ok := strings.Cut(s, ".")
	if !ok || strings.Contains(tail, ".") {
		return false
	}
	return len(head) >= 1 && len(head) <= 3 && head[0] != '0' &&
		len(tail) == 3 && allDigits(head) && allDigits(tail)
}

// validGroups reports whether every group after the first has three digits.
func validGroups(s, sep string) bool {
	groups := strings.Split(s, sep)
	if groups[0] == "" && len(groups) > 1 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the canonical persisted form, e.g. "1234.56" or "-10.00".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}

// FormatBRL renders an amount for people: "R$ 1.234,56", "-R$ 10,00".
func FormatBRL(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}

	digits := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	s := "R$ " + b.String() + "," + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// CheckedAdd adds o to m and reports false instead of wrapping on overflow.
func (m Money) CheckedAdd(o Money) (Money, bool) {
	sum := m.Cents + o.Cents
	if (o.Cents > 0 && sum < m.Cents) || (o.Cents < 0 && sum > m.Cents) {
		return m, false
	}
	return Money{Cents: sum}, true
}

func (m Money) IsZero() bool { return m.Cents == 0 }

// Decimal returns the exact decimal value, for exports that need a number cell.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
