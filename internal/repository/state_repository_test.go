package repository

import (
	"testing"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateInitIsIdempotent(t *testing.T) {
	db := newTestDB(t, 100, 10)
	repo := NewSQLiteBankStateRepository(db)

	// The test database already carries a state row; Init must keep it.
	require.NoError(t, repo.Init(999, 999))

	value, err := repo.GetBankCap()
	require.NoError(t, err)
	assert.Equal(t, int64(100), value)
}

func TestSetBankCap(t *testing.T) {
	db := newTestDB(t, 100, 10)
	repo := NewSQLiteBankStateRepository(db)

	event, err := repo.SetBankCap("r1", 250)
	require.NoError(t, err)
	assert.Equal(t, entity.EventBankCapChanged, event.Kind)
	assert.Equal(t, int64(250), event.Amount)

	value, err := repo.GetBankCap()
	require.NoError(t, err)
	assert.Equal(t, int64(250), value)
}

func TestSetWithdrawLimit(t *testing.T) {
	db := newTestDB(t, 100, 10)
	repo := NewSQLiteBankStateRepository(db)

	event, err := repo.SetWithdrawLimit("r1", 3)
	require.NoError(t, err)
	assert.Equal(t, entity.EventWithdrawLimitChanged, event.Kind)

	value, err := repo.GetWithdrawLimit()
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)
}

func TestSetRejectsNegativeValues(t *testing.T) {
	db := newTestDB(t, 100, 10)
	repo := NewSQLiteBankStateRepository(db)

	_, err := repo.SetBankCap("r1", -1)
	require.ErrorIs(t, err, entity.ErrBadValue)

	value, err := repo.GetBankCap()
	require.NoError(t, err)
	assert.Equal(t, int64(100), value)
}

// A manager may set the cap below what is already held; deposits then start
// failing but nothing is confiscated.
func TestCapBelowHoldingsIsAllowed(t *testing.T) {
	db := newTestDB(t, 100, 10)
	stateRepo := NewSQLiteBankStateRepository(db)
	ledgerRepo := NewSQLiteLedgerRepository(db)

	_, _, err := ledgerRepo.Deposit("r1", alice, 80)
	require.NoError(t, err)

	_, err = stateRepo.SetBankCap("r2", 50)
	require.NoError(t, err)

	account, err := ledgerRepo.GetAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(80), account.Balance)

	_, _, err = ledgerRepo.Deposit("r3", alice, 1)
	require.ErrorIs(t, err, entity.ErrCapacityExceeded)
}

// The limit is read fresh at withdrawal time, so a change applies to the very
// next call.
func TestWithdrawUsesCurrentLimit(t *testing.T) {
	db := newTestDB(t, 100, 10)
	stateRepo := NewSQLiteBankStateRepository(db)
	ledgerRepo := NewSQLiteLedgerRepository(db)

	_, _, err := ledgerRepo.Deposit("r1", alice, 50)
	require.NoError(t, err)

	_, _, err = ledgerRepo.Withdraw("r2", alice, 20, acceptAll)
	require.ErrorIs(t, err, entity.ErrLimitExceeded)

	_, err = stateRepo.SetWithdrawLimit("r3", 25)
	require.NoError(t, err)

	_, _, err = ledgerRepo.Withdraw("r4", alice, 20, acceptAll)
	require.NoError(t, err)
}
