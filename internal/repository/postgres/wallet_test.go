package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/vedawell/vedawell/internal/config"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/logger"
	pgclient "github.com/vedawell/vedawell/internal/postgres"
)

func setupWalletMock(t *testing.T) (wallet.Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	log, err := logger.NewLogger(config.GetDefaultConfig())
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	client := pgclient.NewClient(sqlxDB, log)
	repo := NewWalletRepository(client, log)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func walletRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "balance", "status", "created_at", "updated_at", "created_by", "updated_by",
	}).AddRow("wallet_01", "user-1", int64(5000), "active", now, now, "system", "system")
}

func TestGetWalletByUserID(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectQuery(`SELECT \* FROM wallets WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(walletRows())

	w, err := repo.GetWalletByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "wallet_01", w.ID)
	require.Equal(t, int64(5000), w.Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWalletByUserIDNotFound(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectQuery(`SELECT \* FROM wallets WHERE user_id = \$1`).
		WithArgs("user-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetWalletByUserID(context.Background(), "user-missing")
	require.Error(t, err)
	require.True(t, ierr.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWallet(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectExec(`INSERT INTO wallets`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateWallet(context.Background(), &wallet.Wallet{
		ID:     "wallet_01",
		UserID: "user-1",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWalletBalance(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectExec(`UPDATE wallets SET balance = \$1`).
		WithArgs(int64(7500), sqlmock.AnyArg(), "wallet_01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateWalletBalance(context.Background(), "wallet_01", 7500)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWalletBalanceMissingWallet(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectExec(`UPDATE wallets SET balance = \$1`).
		WithArgs(int64(7500), sqlmock.AnyArg(), "wallet_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateWalletBalance(context.Background(), "wallet_missing", 7500)
	require.Error(t, err)
	require.True(t, ierr.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeCreditsDrawsLotsInOrder(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	// First lot is drained to zero, second lot partially.
	mock.ExpectExec(`UPDATE wallet_transactions SET credits_available = \$1`).
		WithArgs(int64(0), sqlmock.AnyArg(), "wtxn_01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE wallet_transactions SET credits_available = \$1`).
		WithArgs(int64(500), sqlmock.AnyArg(), "wtxn_02").
		WillReturnResult(sqlmock.NewResult(0, 1))

	credits := []*wallet.Transaction{
		{ID: "wtxn_01", CreditsAvailable: 1000},
		{ID: "wtxn_02", CreditsAvailable: 2000},
	}
	err := repo.ConsumeCredits(context.Background(), credits, 2500)
	require.NoError(t, err)
	require.Equal(t, int64(0), credits[0].CreditsAvailable)
	require.Equal(t, int64(500), credits[1].CreditsAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeCreditsInsufficient(t *testing.T) {
	repo, mock, closer := setupWalletMock(t)
	defer closer()

	mock.ExpectExec(`UPDATE wallet_transactions SET credits_available = \$1`).
		WithArgs(int64(0), sqlmock.AnyArg(), "wtxn_01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	credits := []*wallet.Transaction{
		{ID: "wtxn_01", CreditsAvailable: 1000},
	}
	err := repo.ConsumeCredits(context.Background(), credits, 2500)
	require.Error(t, err)
	require.True(t, ierr.IsInsufficientBalance(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
