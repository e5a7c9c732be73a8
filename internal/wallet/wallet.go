// Package wallet keeps the in-memory merchant ledger behind the sandbox
package wallet

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/alexbotov/gpay/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("wallet already exists")
	ErrCannotReceive     = errors.New("wallet cannot receive money")
	ErrSelfTransfer      = errors.New("cannot send money to own wallet")
	ErrRequestNotFound   = errors.New("payment request not found")
	ErrAlreadyPaid       = errors.New("payment request already paid")
	ErrTxNotFound        = errors.New("transaction not found")
	ErrNotPending        = errors.New("transaction is not pending")
)

// Config describes the merchant wallet a ledger starts with
type Config struct {
	Username       string
	Wallet         domain.Wallet
	OpeningBalance domain.Money
	SenderFee      domain.Money
}

// Ledger is the merchant wallet, its payment requests and the other wallets
// it can send to. It is safe for concurrent use.
type Ledger struct {
	mu sync.RWMutex

	username  string
	merchant  domain.Wallet
	opening   domain.Money
	senderFee domain.Money

	wallets      map[string]*domain.Wallet
	requests     map[string]*domain.PaymentRequest
	transactions []*domain.Transaction

	now   func() time.Time
	newID func() string
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock sets the ledger clock
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces uuid generation for requests and transactions
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// New creates a ledger holding cfg.OpeningBalance
func New(cfg Config, opts ...Option) *Ledger {
	l := &Ledger{
		username:  cfg.Username,
		merchant:  cfg.Wallet,
		opening:   cfg.OpeningBalance,
		senderFee: cfg.SenderFee,
		wallets:   make(map[string]*domain.Wallet),
		requests:  make(map[string]*domain.PaymentRequest),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	l.merchant.Balance = cfg.OpeningBalance
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Username returns the merchant username
func (l *Ledger) Username() string {
	return l.username
}

// Balance returns the available merchant balance
func (l *Ledger) Balance() domain.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.merchant.Balance
}

// AddWallet registers another wallet the merchant can send money to
func (l *Ledger) AddWallet(w domain.Wallet) error {
	if w.GatewayID == "" {
		return ErrWalletNotFound
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.wallets[w.GatewayID]; ok || w.GatewayID == l.merchant.GatewayID {
		return ErrWalletExists
	}
	l.wallets[w.GatewayID] = &w
	return nil
}

// Wallet looks a wallet up by gateway id, the merchant's own included
func (l *Ledger) Wallet(gatewayID string) (domain.Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if gatewayID == l.merchant.GatewayID {
		return l.merchant, nil
	}
	w, ok := l.wallets[gatewayID]
	if !ok {
		return domain.Wallet{}, ErrWalletNotFound
	}
	return *w, nil
}

// CreatePaymentRequest records a request for amount
func (l *Ledger) CreatePaymentRequest(amount domain.Money, referenceNo, description string) (domain.PaymentRequest, error) {
	if amount <= 0 {
		return domain.PaymentRequest{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req := &domain.PaymentRequest{
		ID:                l.newID(),
		RequesterUsername: l.username,
		Amount:            amount,
		ReferenceNo:       referenceNo,
		Description:       description,
		CreatedAt:         l.now().UTC(),
	}
	l.requests[req.ID] = req
	return *req, nil
}

// PaymentRequest returns a payment request by id
func (l *Ledger) PaymentRequest(id string) (domain.PaymentRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	req, ok := l.requests[id]
	if !ok {
		return domain.PaymentRequest{}, ErrRequestNotFound
	}
	return *req, nil
}

// PayRequest simulates a customer paying a request. A pending payment shows
// up as outstanding credit until SettleTransaction is called.
func (l *Ledger) PayRequest(id string, pending bool) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return domain.Transaction{}, ErrRequestNotFound
	}
	if req.Paid {
		return domain.Transaction{}, ErrAlreadyPaid
	}

	now := l.now().UTC()
	tx := &domain.Transaction{
		ID:          l.newID(),
		OpType:      domain.OpTypePaymentReceived,
		Status:      domain.TxStatusPending,
		Amount:      req.Amount,
		Description: paymentDescription(req),
		ReferenceNo: req.ReferenceNo,
		CreatedAt:   now,
	}
	if !pending {
		l.complete(tx, now)
	}
	l.transactions = append(l.transactions, tx)

	req.Paid = true
	req.TransactionID = tx.ID
	req.PaidAt = now
	return *tx, nil
}

func paymentDescription(req *domain.PaymentRequest) string {
	if req.Description != "" {
		return req.Description
	}
	return "Payment request " + req.ID
}

// SettleTransaction completes a pending transaction
func (l *Ledger) SettleTransaction(id string) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, tx := range l.transactions {
		if tx.ID != id {
			continue
		}
		if !tx.Pending() {
			return domain.Transaction{}, ErrNotPending
		}
		if tx.Amount < 0 && l.merchant.Balance+tx.Amount < 0 {
			return domain.Transaction{}, ErrInsufficientFunds
		}
		l.complete(tx, l.now().UTC())
		return *tx, nil
	}
	return domain.Transaction{}, ErrTxNotFound
}

// complete applies tx to the merchant balance; callers hold the lock
func (l *Ledger) complete(tx *domain.Transaction, at time.Time) {
	l.merchant.Balance += tx.Amount
	tx.Status = domain.TxStatusCompleted
	tx.BalanceAfter = l.merchant.Balance
	tx.CompletedAt = at
}

// Transfer is the result of SendMoney
type Transfer struct {
	Transaction domain.Transaction
	Amount      domain.Money
	SenderFee   domain.Money
	OldBalance  domain.Money
	NewBalance  domain.Money
}

// SendMoney moves amount plus the sender fee out of the merchant wallet
func (l *Ledger) SendMoney(amount domain.Money, walletGatewayID, description, referenceNo string) (*Transfer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if walletGatewayID == l.merchant.GatewayID {
		return nil, ErrSelfTransfer
	}
	to, ok := l.wallets[walletGatewayID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	if !to.CanReceiveMoney {
		return nil, ErrCannotReceive
	}

	old := l.merchant.Balance
	if old < amount+l.senderFee {
		return nil, ErrInsufficientFunds
	}

	now := l.now().UTC()
	if description == "" {
		description = "Transfer to " + to.GatewayID
	}
	tx := &domain.Transaction{
		ID:          l.newID(),
		OpType:      domain.OpTypeMoneySent,
		Amount:      -amount,
		Description: description,
		ReferenceNo: referenceNo,
		CreatedAt:   now,
	}
	l.complete(tx, now)
	l.transactions = append(l.transactions, tx)

	if l.senderFee > 0 {
		fee := &domain.Transaction{
			ID:          l.newID(),
			OpType:      domain.OpTypeSenderFee,
			Amount:      -l.senderFee,
			Description: "Sender fee",
			ReferenceNo: referenceNo,
			CreatedAt:   now,
		}
		l.complete(fee, now)
		l.transactions = append(l.transactions, fee)
	}

	to.Balance += amount

	return &Transfer{
		Transaction: *tx,
		Amount:      amount,
		SenderFee:   l.senderFee,
		OldBalance:  old,
		NewBalance:  l.merchant.Balance,
	}, nil
}

// DayStatement summarizes one calendar day
type DayStatement struct {
	AvailableBalance  domain.Money
	OutstandingCredit domain.Money
	OutstandingDebit  domain.Money
	DayBalance        domain.Money
	TotalIn           domain.Money
	TotalOut          domain.Money
	Transactions      []domain.Transaction
}

// Statement returns the completed transactions of the day containing date
// (in date's location) and the balance at its end.
func (l *Ledger) Statement(date time.Time) *DayStatement {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	l.mu.RLock()
	defer l.mu.RUnlock()

	st := &DayStatement{
		AvailableBalance: l.merchant.Balance,
		DayBalance:       l.opening,
	}
	st.OutstandingCredit, st.OutstandingDebit = l.outstandingTotals()

	for _, tx := range l.completedByTime() {
		if !tx.CompletedAt.Before(end) {
			break
		}
		st.DayBalance = tx.BalanceAfter
		if tx.CompletedAt.Before(start) {
			continue
		}
		if tx.Credit() {
			st.TotalIn += tx.Amount
		} else {
			st.TotalOut -= tx.Amount
		}
		st.Transactions = append(st.Transactions, *tx)
	}

	return st
}

// Outstanding lists pending transactions
type Outstanding struct {
	Credit       domain.Money
	Debit        domain.Money
	Transactions []domain.Transaction
}

// Outstanding returns the transactions not settled yet
func (l *Ledger) Outstanding() *Outstanding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := &Outstanding{}
	out.Credit, out.Debit = l.outstandingTotals()
	for _, tx := range l.transactions {
		if tx.Pending() {
			out.Transactions = append(out.Transactions, *tx)
		}
	}
	return out
}

func (l *Ledger) outstandingTotals() (credit, debit domain.Money) {
	for _, tx := range l.transactions {
		if !tx.Pending() {
			continue
		}
		if tx.Credit() {
			credit += tx.Amount
		} else {
			debit -= tx.Amount
		}
	}
	return credit, debit
}

func (l *Ledger) completedByTime() []*domain.Transaction {
	var done []*domain.Transaction
	for _, tx := range l.transactions {
		if !tx.Pending() {
			done = append(done, tx)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].CompletedAt.Before(done[j].CompletedAt)
	})
	return done
}
