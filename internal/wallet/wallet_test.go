package wallet

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alexbotov/gpay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func setupTestLedger(t *testing.T, fee domain.Money) (*Ledger, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	seq := 0
	l := New(Config{
		Username: "merchant",
		Wallet: domain.Wallet{
			GatewayID:       "W-1001",
			Name:            "Merchant",
			AccountName:     "Merchant LLC",
			CanReceiveMoney: true,
		},
		OpeningBalance: 100000,
		SenderFee:      fee,
	}, WithClock(clock.Now), WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}))

	require.NoError(t, l.AddWallet(domain.Wallet{GatewayID: "W-2002", Name: "Shop", CanReceiveMoney: true}))
	require.NoError(t, l.AddWallet(domain.Wallet{GatewayID: "W-3003", Name: "Frozen", CanReceiveMoney: false}))
	return l, clock
}

func TestBalance(t *testing.T) {
	l, _ := setupTestLedger(t, 0)
	assert.Equal(t, domain.Money(100000), l.Balance())
	assert.Equal(t, "merchant", l.Username())
}

func TestWallet(t *testing.T) {
	l, _ := setupTestLedger(t, 0)

	w, err := l.Wallet("W-2002")
	require.NoError(t, err)
	assert.Equal(t, "Shop", w.Name)

	own, err := l.Wallet("W-1001")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(100000), own.Balance)

	_, err = l.Wallet("W-9999")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestAddWallet(t *testing.T) {
	l, _ := setupTestLedger(t, 0)

	assert.ErrorIs(t, l.AddWallet(domain.Wallet{GatewayID: "W-2002"}), ErrWalletExists)
	assert.ErrorIs(t, l.AddWallet(domain.Wallet{GatewayID: "W-1001"}), ErrWalletExists)
	assert.ErrorIs(t, l.AddWallet(domain.Wallet{}), ErrWalletNotFound)
}

func TestPaymentRequestLifecycle(t *testing.T) {
	l, clock := setupTestLedger(t, 0)

	req, err := l.CreatePaymentRequest(5000, "INV-1", "")
	require.NoError(t, err)
	assert.Equal(t, "id-1", req.ID)
	assert.Equal(t, "merchant", req.RequesterUsername)
	assert.False(t, req.Paid)

	clock.Set(clock.Now().Add(time.Hour))
	tx, err := l.PayRequest(req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OpTypePaymentReceived, tx.OpType)
	assert.Equal(t, domain.TxStatusCompleted, tx.Status)
	assert.Equal(t, domain.Money(105000), tx.BalanceAfter)
	assert.Equal(t, "Payment request id-1", tx.Description)

	got, err := l.PaymentRequest(req.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, tx.ID, got.TransactionID)
	assert.Equal(t, clock.Now(), got.PaidAt)

	_, err = l.PayRequest(req.ID, false)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = l.PayRequest("missing", false)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	_, err = l.PaymentRequest("missing")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestCreatePaymentRequest_InvalidAmount(t *testing.T) {
	l, _ := setupTestLedger(t, 0)

	_, err := l.CreatePaymentRequest(0, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPendingPaymentAndSettle(t *testing.T) {
	l, _ := setupTestLedger(t, 0)

	req, err := l.CreatePaymentRequest(2500, "", "deposit")
	require.NoError(t, err)

	tx, err := l.PayRequest(req.ID, true)
	require.NoError(t, err)
	assert.True(t, tx.Pending())
	assert.Equal(t, domain.Money(100000), l.Balance())

	out := l.Outstanding()
	assert.Equal(t, domain.Money(2500), out.Credit)
	assert.Equal(t, domain.Money(0), out.Debit)
	require.Len(t, out.Transactions, 1)

	settled, err := l.SettleTransaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusCompleted, settled.Status)
	assert.Equal(t, domain.Money(102500), l.Balance())
	assert.Empty(t, l.Outstanding().Transactions)

	_, err = l.SettleTransaction(tx.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = l.SettleTransaction("missing")
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestSendMoney(t *testing.T) {
	l, _ := setupTestLedger(t, 50)

	transfer, err := l.SendMoney(2500, "W-2002", "", "REF-1")
	require.NoError(t, err)

	assert.Equal(t, domain.Money(2500), transfer.Amount)
	assert.Equal(t, domain.Money(50), transfer.SenderFee)
	assert.Equal(t, domain.Money(100000), transfer.OldBalance)
	assert.Equal(t, domain.Money(97450), transfer.NewBalance)
	assert.Equal(t, domain.Money(-2500), transfer.Transaction.Amount)
	assert.Equal(t, "Transfer to W-2002", transfer.Transaction.Description)
	assert.Equal(t, domain.Money(97450), l.Balance())

	to, err := l.Wallet("W-2002")
	require.NoError(t, err)
	assert.Equal(t, domain.Money(2500), to.Balance)
}

func TestSendMoney_Errors(t *testing.T) {
	l, _ := setupTestLedger(t, 100)

	tests := []struct {
		name   string
		amount domain.Money
		to     string
		err    error
	}{
		{"ZeroAmount", 0, "W-2002", ErrInvalidAmount},
		{"UnknownWallet", 100, "W-9999", ErrWalletNotFound},
		{"CannotReceive", 100, "W-3003", ErrCannotReceive},
		{"OwnWallet", 100, "W-1001", ErrSelfTransfer},
		{"FeeExceedsBalance", 99950, "W-2002", ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.SendMoney(tt.amount, tt.to, "", "")
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, domain.Money(100000), l.Balance())
		})
	}
}

func TestStatement(t *testing.T) {
	l, clock := setupTestLedger(t, 0)
	day1 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	req, err := l.CreatePaymentRequest(10000, "", "top up")
	require.NoError(t, err)
	clock.Set(day1.Add(10 * time.Hour))
	_, err = l.PayRequest(req.ID, false)
	require.NoError(t, err)

	clock.Set(day1.Add(11 * time.Hour))
	_, err = l.SendMoney(3000, "W-2002", "rent", "")
	require.NoError(t, err)

	pending, err := l.CreatePaymentRequest(700, "", "")
	require.NoError(t, err)
	_, err = l.PayRequest(pending.ID, true)
	require.NoError(t, err)

	clock.Set(day1.Add(30 * time.Hour))
	req2, err := l.CreatePaymentRequest(500, "", "next day")
	require.NoError(t, err)
	_, err = l.PayRequest(req2.ID, false)
	require.NoError(t, err)

	st := l.Statement(day1.Add(15 * time.Hour))
	assert.Equal(t, domain.Money(107500), st.AvailableBalance)
	assert.Equal(t, domain.Money(107000), st.DayBalance)
	assert.Equal(t, domain.Money(10000), st.TotalIn)
	assert.Equal(t, domain.Money(3000), st.TotalOut)
	assert.Equal(t, domain.Money(700), st.OutstandingCredit)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, "top up", st.Transactions[0].Description)
	assert.Equal(t, "rent", st.Transactions[1].Description)

	before := l.Statement(day1.AddDate(0, 0, -1))
	assert.Equal(t, domain.Money(100000), before.DayBalance)
	assert.Empty(t, before.Transactions)

	next := l.Statement(day1.AddDate(0, 0, 1))
	assert.Equal(t, domain.Money(107500), next.DayBalance)
	assert.Equal(t, domain.Money(500), next.TotalIn)
}

func TestConcurrentSendMoney(t *testing.T) {
	l, _ := setupTestLedger(t, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.SendMoney(1000, "W-2002", "", ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, succeeded)
	assert.Equal(t, domain.Money(0), l.Balance())
}
