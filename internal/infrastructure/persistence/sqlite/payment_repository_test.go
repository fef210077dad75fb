package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/payflow-labs/payflow/internal/domain/payment"
	"github.com/payflow-labs/payflow/internal/infrastructure/persistence/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// a second pool connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)

	if err := sqlite.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedPayment(id string) *payment.Payment {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &payment.Payment{
		ID:         id,
		Amount:     decimal.RequireFromString("250.50"),
		Currency:   "EUR",
		Status:     payment.StatusPending,
		Method:     payment.MethodBankTransfer,
		CustomerID: "cust-1",
		MerchantID: "merch-1",
		Metadata:   map[string]string{"order": "o-1"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateAndFind_RoundTrip(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))

	require.NoError(t, repo.Create(seedPayment("pay-1")))

	found, err := repo.FindByID("pay-1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("250.50").Equal(found.Amount))
	assert.Equal(t, "EUR", found.Currency)
	assert.Equal(t, payment.StatusPending, found.Status)
	assert.Equal(t, payment.MethodBankTransfer, found.Method)
	assert.Equal(t, "o-1", found.Metadata["order"])
	assert.Nil(t, found.ProcessedAt)
	assert.Empty(t, found.TransactionID)
}

func TestFind_NotFound(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))

	_, err := repo.FindByID("missing")
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)

	_, err = repo.FindByTransactionID("TXN-missing")
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestCreate_DuplicateTransactionID(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))

	a := seedPayment("pay-1")
	a.TransactionID = "TXN-1"
	require.NoError(t, repo.Create(a))

	b := seedPayment("pay-2")
	b.TransactionID = "TXN-1"
	require.ErrorIs(t, repo.Create(b), payment.ErrDuplicatePayment)

	// two rows without transaction ids are fine
	require.NoError(t, repo.Create(seedPayment("pay-3")))
	require.NoError(t, repo.Create(seedPayment("pay-4")))
}

func TestUpdate_PersistsFields(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))
	require.NoError(t, repo.Create(seedPayment("pay-1")))

	status := payment.StatusFailed
	reason := "declined"
	processed := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := repo.Update("pay-1", payment.UpdateFields{
		Status:        &status,
		FailureReason: &reason,
		ProcessedAt:   &processed,
		Metadata:      map[string]string{"attempt": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, updated.Status)

	found, err := repo.FindByID("pay-1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, found.Status)
	assert.Equal(t, "declined", found.FailureReason)
	require.NotNil(t, found.ProcessedAt)
	assert.Equal(t, "1", found.Metadata["attempt"])
	assert.Equal(t, "o-1", found.Metadata["order"], "existing metadata keys survive")
	assert.True(t, found.UpdatedAt.After(found.CreatedAt))
}

func TestUpdate_NotFound(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))

	status := payment.StatusProcessing
	_, err := repo.Update("missing", payment.UpdateFields{Status: &status})
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestFindByTransactionID(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))
	p := seedPayment("pay-1")
	p.TransactionID = "TXN-42"
	require.NoError(t, repo.Create(p))

	found, err := repo.FindByTransactionID("TXN-42")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", found.ID)
}

func TestDelete(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))
	require.NoError(t, repo.Create(seedPayment("pay-1")))

	require.NoError(t, repo.Delete("pay-1"))
	require.ErrorIs(t, repo.Delete("pay-1"), payment.ErrPaymentNotFound)

	_, err := repo.FindByID("pay-1")
	require.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestList_OrderedByCreation(t *testing.T) {
	repo := sqlite.NewPaymentRepository(setupTestDB(t))

	first := seedPayment("pay-1")
	second := seedPayment("pay-2")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	second.UpdatedAt = second.CreatedAt

	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	payments, err := repo.List()
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "pay-1", payments[0].ID)
	assert.Equal(t, "pay-2", payments[1].ID)
}
