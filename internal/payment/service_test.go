package payment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/common/money"
)

func newTestService(store *MockStore, pub *MockPublisher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(testEngine(), store, pub, logger)
}

func TestService_CreateAllocation(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	svc := newTestService(store, pub)

	store.On("CreateAllocation", mock.Anything, mock.AnythingOfType("*payment.Allocation")).Return(nil)

	a, err := svc.CreateAllocation(context.Background(), "tenant-1", "sess-1", "C100",
		money.New(50000, money.AED), MethodCreditCard)
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Len(t, a.Lines, 1)
	require.Equal(t, int64(50000), a.Lines[0].Amount.AmountMinor)

	store.AssertExpectations(t)
	require.Len(t, pub.ByType(EventAllocationCreated), 1)
}

func TestService_CreateAllocation_UnknownMethod(t *testing.T) {
	svc := newTestService(&MockStore{}, &MockPublisher{})

	_, err := svc.CreateAllocation(context.Background(), "tenant-1", "", "",
		money.New(50000, money.AED), Method("barter"))
	require.Error(t, err)
}

func TestService_UpdateLineAmount_Persists(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	svc := newTestService(store, pub)

	existing := testEngine().NewAllocation("alloc-1", "tenant-1", "sess-1", "C100",
		money.New(50000, money.AED), MethodCreditCard)

	store.On("GetAllocation", mock.Anything, "tenant-1", "alloc-1").Return(&existing, nil)
	store.On("UpdateAllocation", mock.Anything, mock.MatchedBy(func(a *Allocation) bool {
		return a.Lines[0].Amount.AmountMinor == 30000
	})).Return(nil)

	a, err := svc.UpdateLineAmount(context.Background(), "tenant-1", "alloc-1", 0,
		money.New(30000, money.AED))
	require.NoError(t, err)
	require.Equal(t, int64(30000), a.Lines[0].Amount.AmountMinor)

	store.AssertExpectations(t)
}

func TestService_Submit(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	svc := newTestService(store, pub)

	existing := testEngine().NewAllocation("alloc-1", "tenant-1", "sess-1", "C100",
		money.New(50000, money.AED), MethodCustomerWallet)

	store.On("GetAllocation", mock.Anything, "tenant-1", "alloc-1").Return(&existing, nil)
	store.On("GetProfile", mock.Anything, "tenant-1", "C100").Return(&Profile{
		CustomerID:      "C100",
		WalletBalance:   money.New(60000, money.AED),
		LoyaltyPoints:   0,
		CreditAvailable: money.New(0, money.AED),
	}, nil)
	store.On("UpdateAllocation", mock.Anything, mock.MatchedBy(func(a *Allocation) bool {
		return a.Submitted() && a.Lines[0].TransactionRef != ""
	})).Return(nil)

	submitted, requests, err := svc.Submit(context.Background(), "tenant-1", "alloc-1")
	require.NoError(t, err)
	require.True(t, submitted.Submitted())

	require.Len(t, requests, 1)
	require.Equal(t, MethodCustomerWallet, requests[0].Method)
	require.NotEmpty(t, requests[0].TransactionRef)

	// A wallet line carries the balance movement in its detail.
	require.NotNil(t, submitted.Lines[0].Detail)
	require.NotNil(t, submitted.Lines[0].Detail.Wallet)
	require.Equal(t, int64(10000), submitted.Lines[0].Detail.Wallet.BalanceAfter.AmountMinor)

	require.Len(t, pub.ByType(EventLineSettled), 1)
	require.Len(t, pub.ByType(EventAllocationSubmitted), 1)
	store.AssertExpectations(t)
}

func TestService_Submit_RefusalDoesNotPersist(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	svc := newTestService(store, pub)

	existing := testEngine().NewAllocation("alloc-1", "tenant-1", "sess-1", "C100",
		money.New(50000, money.AED), MethodCustomerWallet)

	store.On("GetAllocation", mock.Anything, "tenant-1", "alloc-1").Return(&existing, nil)
	// Wallet holds less than the line needs: the gate refuses.
	store.On("GetProfile", mock.Anything, "tenant-1", "C100").Return(&Profile{
		CustomerID:    "C100",
		WalletBalance: money.New(10000, money.AED),
	}, nil)

	_, _, err := svc.Submit(context.Background(), "tenant-1", "alloc-1")
	require.Error(t, err)

	store.AssertNotCalled(t, "UpdateAllocation", mock.Anything, mock.Anything)
	require.Empty(t, pub.Events)
}

func TestService_Submit_NoProfileOnRecord(t *testing.T) {
	store := &MockStore{}
	pub := &MockPublisher{}
	svc := newTestService(store, pub)

	// Cash needs no profile; a missing profile row must not block it.
	existing := testEngine().NewAllocation("alloc-1", "tenant-1", "", "C200",
		money.New(50000, money.AED), MethodCash)

	store.On("GetAllocation", mock.Anything, "tenant-1", "alloc-1").Return(&existing, nil)
	store.On("GetProfile", mock.Anything, "tenant-1", "C200").Return(nil, nil)
	store.On("UpdateAllocation", mock.Anything, mock.Anything).Return(nil)

	_, requests, err := svc.Submit(context.Background(), "tenant-1", "alloc-1")
	require.NoError(t, err)
	require.Len(t, requests, 1)
}
