// Package domain contains the wallet models served by the sandbox
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidMoney = errors.New("invalid money amount")

// Money is an amount in hundredths (dirham) of the wallet currency
type Money int64

// ParseMoney reads a decimal string such as "12", "12.5" or "12.50".
// Negative amounts and more than two decimals are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if !digits(whole) || (hasFrac && (!digits(frac) || len(frac) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if units > (1<<62)/100 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidMoney, s)
	}

	return Money(units*100 + cents), nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the amount with two decimals, the way GPay sends amounts
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Wallet is a GPay wallet known to the sandbox
type Wallet struct {
	GatewayID       string `json:"wallet_gateway_id"`
	Name            string `json:"wallet_name"`
	AccountName     string `json:"user_account_name"`
	CanReceiveMoney bool   `json:"can_receive_money"`
	Balance         Money  `json:"-"`
}

// PaymentRequest is a request for money created by the merchant
type PaymentRequest struct {
	ID                string
	RequesterUsername string
	Amount            Money
	ReferenceNo       string
	Description       string
	CreatedAt         time.Time
	Paid              bool
	TransactionID     string
	PaidAt            time.Time
}

// OpType identifies the kind of wallet movement
type OpType int

const (
	OpTypePaymentReceived OpType = 1
	OpTypeMoneySent       OpType = 2
	OpTypeSenderFee       OpType = 3
)

// TransactionStatus represents transaction state
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
)

// Transaction is one movement on the merchant wallet. Amount is positive
// for credits and negative for debits.
type Transaction struct {
	ID           string
	OpType       OpType
	Status       TransactionStatus
	Amount       Money
	BalanceAfter Money
	Description  string
	ReferenceNo  string
	CreatedAt    time.Time
	CompletedAt  time.Time
}

// Credit reports whether the transaction adds money
func (t *Transaction) Credit() bool {
	return t.Amount > 0
}

// Pending reports whether the transaction still awaits settlement
func (t *Transaction) Pending() bool {
	return t.Status == TxStatusPending
}
