package gpay

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Amount is a decimal money value as sent by the API. It accepts JSON
// strings and numbers and keeps the server's text.
type Amount string

// UnmarshalJSON accepts a string, a number or null
func (a *Amount) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return errors.Wrap(err, "amount")
	}
	*a = Amount(s)
	return nil
}

// Float64 parses the amount; it is meant for display, not arithmetic
func (a Amount) Float64() (float64, error) {
	return strconv.ParseFloat(string(a), 64)
}

func (a Amount) String() string { return string(a) }

// ID is an identifier the API may send as a string or a number
type ID string

// UnmarshalJSON accepts a string, a number or null
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return errors.Wrap(err, "id")
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// Timestamp is a point in time sent as milliseconds since the epoch.
// A null or empty value leaves the zero time. Any other text the server
// sends is kept in Raw with the zero time, since the field was already
// covered by the verified signature.
type Timestamp struct {
	time.Time
	Raw string
}

// UnmarshalJSON accepts milliseconds as a number or a numeric string
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := scalarText(data)
	if err != nil {
		return errors.Wrap(err, "timestamp")
	}
	t.Raw = s
	t.Time = time.Time{}
	if s == "" {
		return nil
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}

// MarshalJSON writes the timestamp back as milliseconds, or as the raw
// text when it was not a millisecond value
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		if t.Raw != "" {
			return json.Marshal(t.Raw)
		}
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// Flag is a boolean the API may send as true/false, 1/0 or "1"/"0"
type Flag bool

// UnmarshalJSON accepts booleans, 0/1 and their string forms. Null is false.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	s, err := scalarText(data)
	if err != nil {
		return errors.Wrap(err, "flag")
	}
	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	case "false", "0", "":
		*f = false
	default:
		return errors.Errorf("flag: unexpected value %q", s)
	}
	return nil
}

// Bool returns the flag as a bool
func (f Flag) Bool() bool { return bool(f) }

func scalarText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Balance is the result of GetBalance
type Balance struct {
	Balance      Amount    `json:"balance"`
	ResponseTime Timestamp `json:"response_timestamp"`
}

// PaymentRequest is the result of CreatePaymentRequest
type PaymentRequest struct {
	RequesterUsername string    `json:"requester_username"`
	RequestID         ID        `json:"request_id"`
	RequestTime       Timestamp `json:"request_time"`
	Amount            Amount    `json:"amount"`
	ReferenceNo       string    `json:"reference_no"`
	ResponseTime      Timestamp `json:"response_timestamp"`
}

// PaymentStatus is the result of CheckPaymentStatus.
// TransactionID and PaymentTime are empty until the request is paid.
type PaymentStatus struct {
	RequestID     ID        `json:"request_id"`
	TransactionID ID        `json:"transaction_id"`
	Amount        Amount    `json:"amount"`
	PaymentTime   Timestamp `json:"payment_timestamp"`
	ReferenceNo   string    `json:"reference_no"`
	Description   string    `json:"description"`
	IsPaid        Flag      `json:"is_paid"`
	ResponseTime  Timestamp `json:"response_timestamp"`
}

// SendMoneyResult is the result of SendMoney
type SendMoneyResult struct {
	Amount        Amount    `json:"amount"`
	SenderFee     Amount    `json:"sender_fee"`
	TransactionID ID        `json:"transaction_id"`
	OldBalance    Amount    `json:"old_balance"`
	NewBalance    Amount    `json:"new_balance"`
	Timestamp     Timestamp `json:"timestamp"`
	ReferenceNo   string    `json:"reference_no"`
	ResponseTime  Timestamp `json:"response_timestamp"`
}

// Transaction is one wallet movement in a statement or outstanding list
type Transaction struct {
	TransactionID ID        `json:"transaction_id"`
	Datetime      string    `json:"datetime"`
	Timestamp     Timestamp `json:"timestamp"`
	Description   string    `json:"description"`
	Amount        Amount    `json:"amount"`
	Balance       Amount    `json:"balance"`
	ReferenceNo   string    `json:"reference_no"`
	OpTypeID      ID        `json:"op_type_id"`
	Status        ID        `json:"status"`
	CreatedAt     string    `json:"created_at"`
}

// Statement is the result of GetDayStatement.
// The totals are signed by the server; the transaction list is not.
type Statement struct {
	AvailableBalance  Amount        `json:"available_balance"`
	OutstandingCredit Amount        `json:"outstanding_credit"`
	OutstandingDebit  Amount        `json:"outstanding_debit"`
	DayBalance        Amount        `json:"day_balance"`
	DayTotalIn        Amount        `json:"day_total_in"`
	DayTotalOut       Amount        `json:"day_total_out"`
	ResponseTime      Timestamp     `json:"response_timestamp"`
	DayStatement      []Transaction `json:"day_statement"`
}

// WalletCheck is the result of CheckWallet
type WalletCheck struct {
	Exists          Flag      `json:"exists"`
	WalletGatewayID ID        `json:"wallet_gateway_id"`
	WalletName      string    `json:"wallet_name"`
	UserAccountName string    `json:"user_account_name"`
	CanReceiveMoney Flag      `json:"can_receive_money"`
	ResponseTime    Timestamp `json:"response_timestamp"`
}

// OutstandingTransactions is the result of GetOutstandingTransactions.
// The totals are signed by the server; the transaction list is not.
type OutstandingTransactions struct {
	OutstandingCredit       Amount        `json:"outstanding_credit"`
	OutstandingDebit        Amount        `json:"outstanding_debit"`
	ResponseTime            Timestamp     `json:"response_timestamp"`
	OutstandingTransactions []Transaction `json:"outstanding_transactions"`
}
