package gpay

import (
	"context"
	"time"

	"github.com/alexbotov/gpay/pkg/gpay/signing"
)

// StatementDateLayout is the date format of GetDayStatement
const StatementDateLayout = "2006-01-02"

// The operations of the GPay wallet API and the response fields GPay signs for each
var (
	OpGetBalance = Operation{
		Name:         "get_balance",
		Path:         "/info/balance",
		VerifyFields: []string{"balance", "response_timestamp"},
	}
	OpCreatePaymentRequest = Operation{
		Name: "create_payment_request",
		Path: "/payment/create-payment-request",
		VerifyFields: []string{
			"requester_username", "request_id", "request_time",
			"amount", "reference_no", "response_timestamp",
		},
	}
	OpCheckPaymentStatus = Operation{
		Name: "check_payment_status",
		Path: "/payment/check-payment-status",
		VerifyFields: []string{
			"request_id", "transaction_id", "amount", "payment_timestamp",
			"reference_no", "description", "is_paid", "response_timestamp",
		},
	}
	OpSendMoney = Operation{
		Name: "send_money",
		Path: "/payment/send-money",
		VerifyFields: []string{
			"amount", "sender_fee", "transaction_id", "old_balance",
			"new_balance", "timestamp", "reference_no", "response_timestamp",
		},
	}
	OpGetDayStatement = Operation{
		Name: "get_day_statement",
		Path: "/info/statement",
		VerifyFields: []string{
			"available_balance", "outstanding_credit", "outstanding_debit",
			"day_balance", "day_total_in", "day_total_out", "response_timestamp",
		},
	}
	OpCheckWallet = Operation{
		Name: "check_wallet",
		Path: "/info/check-wallet",
		VerifyFields: []string{
			"exists", "wallet_gateway_id", "wallet_name",
			"user_account_name", "can_receive_money", "response_timestamp",
		},
	}
	OpGetOutstandingTransactions = Operation{
		Name:         "get_outstanding_transactions",
		Path:         "/info/outstanding-transactions",
		VerifyFields: []string{"outstanding_credit", "outstanding_debit", "response_timestamp"},
	}
)

// Operations lists every wrapped endpoint
func Operations() []Operation {
	return []Operation{
		OpGetBalance,
		OpCreatePaymentRequest,
		OpCheckPaymentStatus,
		OpSendMoney,
		OpGetDayStatement,
		OpCheckWallet,
		OpGetOutstandingTransactions,
	}
}

// GetBalance retrieves the current wallet balance
func (c *Client) GetBalance(ctx context.Context) (*Balance, error) {
	var result Balance
	if err := c.Do(ctx, OpGetBalance, signing.Params{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePaymentRequest asks for a payment of amount. referenceNo and
// description may be empty.
func (c *Client) CreatePaymentRequest(ctx context.Context, amount, referenceNo, description string) (*PaymentRequest, error) {
	params := signing.Params{
		"amount":       signing.String(amount),
		"reference_no": signing.String(referenceNo),
		"description":  signing.String(description),
	}

	var result PaymentRequest
	if err := c.Do(ctx, OpCreatePaymentRequest, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckPaymentStatus reports whether a payment request has been paid
func (c *Client) CheckPaymentStatus(ctx context.Context, requestID string) (*PaymentStatus, error) {
	params := signing.Params{
		"request_id": signing.String(requestID),
	}

	var result PaymentStatus
	if err := c.Do(ctx, OpCheckPaymentStatus, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMoney transfers amount to another wallet
func (c *Client) SendMoney(ctx context.Context, amount, walletGatewayID, description, referenceNo string) (*SendMoneyResult, error) {
	params := signing.Params{
		"amount":            signing.String(amount),
		"wallet_gateway_id": signing.String(walletGatewayID),
		"description":       signing.String(description),
		"reference_no":      signing.String(referenceNo),
	}

	var result SendMoneyResult
	if err := c.Do(ctx, OpSendMoney, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDayStatement retrieves the transactions and balances of one day
func (c *Client) GetDayStatement(ctx context.Context, date time.Time) (*Statement, error) {
	params := signing.Params{
		"date": signing.String(date.Format(StatementDateLayout)),
	}

	var result Statement
	if err := c.Do(ctx, OpGetDayStatement, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckWallet looks up another wallet before sending money to it
func (c *Client) CheckWallet(ctx context.Context, walletGatewayID string) (*WalletCheck, error) {
	params := signing.Params{
		"wallet_gateway_id": signing.String(walletGatewayID),
	}

	var result WalletCheck
	if err := c.Do(ctx, OpCheckWallet, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOutstandingTransactions lists transactions that are not settled yet
func (c *Client) GetOutstandingTransactions(ctx context.Context) (*OutstandingTransactions, error) {
	var result OutstandingTransactions
	if err := c.Do(ctx, OpGetOutstandingTransactions, signing.Params{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
