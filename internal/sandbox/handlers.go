package sandbox

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexbotov/gpay/internal/domain"
	"github.com/alexbotov/gpay/internal/wallet"
	"github.com/alexbotov/gpay/pkg/gpay"
	"github.com/alexbotov/gpay/pkg/gpay/signing"
	"github.com/gorilla/mux"
)

const datetimeLayout = "2006-01-02 15:04:05"

// param returns the wire form of a request field; absent fields are ""
func param(p signing.Params, key string) string {
	return strings.TrimSpace(p[key].String())
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func (s *Server) responseTimestamp() int64 {
	return millis(s.now())
}

// respondLedgerError maps ledger errors to HTTP statuses
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidMoney):
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive decimal with at most two places")
	case errors.Is(err, wallet.ErrSelfTransfer):
		respondError(w, http.StatusBadRequest, "SELF_TRANSFER", err.Error())
	case errors.Is(err, wallet.ErrWalletNotFound):
		respondError(w, http.StatusNotFound, "WALLET_NOT_FOUND", err.Error())
	case errors.Is(err, wallet.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, "REQUEST_NOT_FOUND", err.Error())
	case errors.Is(err, wallet.ErrTxNotFound):
		respondError(w, http.StatusNotFound, "TRANSACTION_NOT_FOUND", err.Error())
	case errors.Is(err, wallet.ErrWalletExists):
		respondError(w, http.StatusConflict, "WALLET_EXISTS", err.Error())
	case errors.Is(err, wallet.ErrInsufficientFunds):
		respondError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, wallet.ErrCannotReceive),
		errors.Is(err, wallet.ErrAlreadyPaid),
		errors.Is(err, wallet.ErrNotPending):
		respondError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func transactionData(tx domain.Transaction) map[string]interface{} {
	balance := ""
	if !tx.Pending() {
		balance = tx.BalanceAfter.String()
	}
	return map[string]interface{}{
		"transaction_id": tx.ID,
		"datetime":       tx.CreatedAt.Format(datetimeLayout),
		"timestamp":      millis(tx.CreatedAt),
		"description":    tx.Description,
		"amount":         tx.Amount.String(),
		"balance":        balance,
		"reference_no":   tx.ReferenceNo,
		"op_type_id":     int(tx.OpType),
		"status":         string(tx.Status),
		"created_at":     tx.CreatedAt.Format(time.RFC3339),
	}
}

func transactionList(txs []domain.Transaction) []interface{} {
	list := make([]interface{}, 0, len(txs))
	for _, tx := range txs {
		list = append(list, transactionData(tx))
	}
	return list
}

// === GPay API ===

// GetBalance handles POST /info/balance
func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	s.respondSigned(w, gpay.OpGetBalance, map[string]interface{}{
		"balance":            s.ledger.Balance().String(),
		"response_timestamp": s.responseTimestamp(),
	})
}

// CreatePaymentRequest handles POST /payment/create-payment-request
func (s *Server) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	p := paramsFrom(r.Context())

	amount, err := domain.ParseMoney(param(p, "amount"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	req, err := s.ledger.CreatePaymentRequest(amount, param(p, "reference_no"), param(p, "description"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	s.respondSigned(w, gpay.OpCreatePaymentRequest, map[string]interface{}{
		"requester_username": req.RequesterUsername,
		"request_id":         req.ID,
		"request_time":       millis(req.CreatedAt),
		"amount":             req.Amount.String(),
		"reference_no":       req.ReferenceNo,
		"response_timestamp": s.responseTimestamp(),
	})
}

// CheckPaymentStatus handles POST /payment/check-payment-status
func (s *Server) CheckPaymentStatus(w http.ResponseWriter, r *http.Request) {
	p := paramsFrom(r.Context())

	id := param(p, "request_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request_id is required")
		return
	}

	req, err := s.ledger.PaymentRequest(id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	var transactionID, paidAt interface{}
	if req.Paid {
		transactionID = req.TransactionID
		paidAt = millis(req.PaidAt)
	}

	s.respondSigned(w, gpay.OpCheckPaymentStatus, map[string]interface{}{
		"request_id":         req.ID,
		"transaction_id":     transactionID,
		"amount":             req.Amount.String(),
		"payment_timestamp":  paidAt,
		"reference_no":       req.ReferenceNo,
		"description":        req.Description,
		"is_paid":            req.Paid,
		"response_timestamp": s.responseTimestamp(),
	})
}

// SendMoney handles POST /payment/send-money
func (s *Server) SendMoney(w http.ResponseWriter, r *http.Request) {
	p := paramsFrom(r.Context())

	amount, err := domain.ParseMoney(param(p, "amount"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	to := param(p, "wallet_gateway_id")
	if to == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "wallet_gateway_id is required")
		return
	}

	transfer, err := s.ledger.SendMoney(amount, to, param(p, "description"), param(p, "reference_no"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	s.respondSigned(w, gpay.OpSendMoney, map[string]interface{}{
		"amount":             transfer.Amount.String(),
		"sender_fee":         transfer.SenderFee.String(),
		"transaction_id":     transfer.Transaction.ID,
		"old_balance":        transfer.OldBalance.String(),
		"new_balance":        transfer.NewBalance.String(),
		"timestamp":          millis(transfer.Transaction.CreatedAt),
		"reference_no":       transfer.Transaction.ReferenceNo,
		"response_timestamp": s.responseTimestamp(),
	})
}

// GetDayStatement handles POST /info/statement
func (s *Server) GetDayStatement(w http.ResponseWriter, r *http.Request) {
	p := paramsFrom(r.Context())

	date, err := time.ParseInLocation(gpay.StatementDateLayout, param(p, "date"), time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}

	st := s.ledger.Statement(date)
	s.respondSigned(w, gpay.OpGetDayStatement, map[string]interface{}{
		"available_balance":  st.AvailableBalance.String(),
		"outstanding_credit": st.OutstandingCredit.String(),
		"outstanding_debit":  st.OutstandingDebit.String(),
		"day_balance":        st.DayBalance.String(),
		"day_total_in":       st.TotalIn.String(),
		"day_total_out":      st.TotalOut.String(),
		"response_timestamp": s.responseTimestamp(),
		"day_statement":      transactionList(st.Transactions),
	})
}

// CheckWallet handles POST /info/check-wallet
func (s *Server) CheckWallet(w http.ResponseWriter, r *http.Request) {
	p := paramsFrom(r.Context())

	id := param(p, "wallet_gateway_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "wallet_gateway_id is required")
		return
	}

	data := map[string]interface{}{
		"exists":             false,
		"wallet_gateway_id":  id,
		"wallet_name":        "",
		"user_account_name":  "",
		"can_receive_money":  false,
		"response_timestamp": s.responseTimestamp(),
	}
	if found, err := s.ledger.Wallet(id); err == nil {
		data["exists"] = true
		data["wallet_name"] = found.Name
		data["user_account_name"] = found.AccountName
		data["can_receive_money"] = found.CanReceiveMoney
	}

	s.respondSigned(w, gpay.OpCheckWallet, data)
}

// GetOutstandingTransactions handles POST /info/outstanding-transactions
func (s *Server) GetOutstandingTransactions(w http.ResponseWriter, r *http.Request) {
	out := s.ledger.Outstanding()
	s.respondSigned(w, gpay.OpGetOutstandingTransactions, map[string]interface{}{
		"outstanding_credit":       out.Credit.String(),
		"outstanding_debit":        out.Debit.String(),
		"response_timestamp":       s.responseTimestamp(),
		"outstanding_transactions": transactionList(out.Transactions),
	})
}

// === Sandbox administration ===

// PayRequest handles POST /sandbox/payment-requests/{id}/pay. A body of
// {"pending": true} leaves the payment outstanding.
func (s *Server) PayRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pending bool `json:"pending"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	tx, err := s.ledger.PayRequest(mux.Vars(r)["id"], body.Pending)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactionData(tx))
}

// SettleTransaction handles POST /sandbox/transactions/{id}/settle
func (s *Server) SettleTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.SettleTransaction(mux.Vars(r)["id"])
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transactionData(tx))
}

// AddWallet handles POST /sandbox/wallets
func (s *Server) AddWallet(w http.ResponseWriter, r *http.Request) {
	var req domain.Wallet
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.GatewayID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "wallet_gateway_id is required")
		return
	}

	if err := s.ledger.AddWallet(req); err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, req)
}

// === Health ===

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	rngHealth, _ := s.rng.HealthCheck()

	status, code := "healthy", http.StatusOK
	if rngHealth == nil || !rngHealth.Healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	respondJSON(w, code, map[string]interface{}{
		"status":     status,
		"rng_status": rngHealth,
		"balance":    s.ledger.Balance().String(),
	})
}
