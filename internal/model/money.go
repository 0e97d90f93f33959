package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an annual currency amount.
type Money = decimal.Decimal

// ErrBlankAmount is returned by ParseMoney for empty input.
var ErrBlankAmount = errors.New("blank amount")

// Amount returns a whole-unit Money value.
func Amount(v int64) Money {
	return decimal.NewFromInt(v)
}

// ParseMoney accepts user-formatted amounts such as "$1,250,000" or " 35000.50 ".
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrBlankAmount
	}
	return decimal.NewFromString(s)
}

// MoneyOrZero is ParseMoney with a zero fallback for unreadable input.
func MoneyOrZero(s string) (Money, bool) {
	v, err := ParseMoney(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
